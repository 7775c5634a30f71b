package main

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	registry *prometheus.Registry

	transactions *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	indexed      *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "asset_service",
			Name:      "chaincode_transactions_total",
			Help:      "Chaincode transactions sent through the gateway.",
		}, []string{"transaction", "mode", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "asset_service",
			Name:      "chaincode_transaction_seconds",
			Help:      "Gateway round-trip time per chaincode transaction.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"transaction", "mode"}),
		indexed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "asset_service",
			Name:      "events_indexed_total",
			Help:      "Chaincode events written to the off-chain index.",
		}, []string{"event", "outcome"}),
	}
	m.registry.MustRegister(m.transactions, m.latency, m.indexed)
	return m
}

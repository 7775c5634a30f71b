package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dewprince2005/Private-Blockchain-Implementation/backend/pkg/common"
	"github.com/dewprince2005/Private-Blockchain-Implementation/backend/pkg/common/api"
	"github.com/dewprince2005/Private-Blockchain-Implementation/backend/services/asset-service/models"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RoleOperator may change world state.
const RoleOperator = "operator"

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
	maxQueryBody      = 64 << 10
)

var errInvalidPageSize = errors.New("page_size must be a positive integer")

// Gateway is the part of the Fabric client the service calls.
type Gateway interface {
	SubmitTransaction(name string, args ...string) ([]byte, error)
	EvaluateTransaction(name string, args ...string) ([]byte, error)
}

type Service struct {
	fabric  Gateway
	events  EventStore
	logger  *zap.Logger
	metrics *metrics
}

func NewService(fabric Gateway, events EventStore, logger *zap.Logger) *Service {
	return &Service{
		fabric:  fabric,
		events:  events,
		logger:  logger,
		metrics: newMetrics(),
	}
}

// Router wires every route; all but /health and /metrics require a bearer token.
func (s *Service) Router(jwtSecret []byte) *mux.Router {
	r := mux.NewRouter()
	r.Use(common.RequestID)

	r.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	authed := r.NewRoute().Subrouter()
	authed.Use(common.AuthMiddleware(jwtSecret))

	authed.HandleFunc("/ledger/init", common.RequireRole(RoleOperator, s.InitLedgerHandler)).Methods(http.MethodPost)
	authed.HandleFunc("/assets", common.RequireRole(RoleOperator, s.CreateAssetHandler)).Methods(http.MethodPost)
	authed.HandleFunc("/assets", s.ListAssetsHandler).Methods(http.MethodGet)
	authed.HandleFunc("/assets/query", s.QueryAssetsHandler).Methods(http.MethodPost)
	authed.HandleFunc("/assets/{id}", s.GetAssetHandler).Methods(http.MethodGet)
	authed.HandleFunc("/assets/{id}", s.AssetExistsHandler).Methods(http.MethodHead)
	authed.HandleFunc("/assets/{id}", common.RequireRole(RoleOperator, s.UpdateAssetHandler)).Methods(http.MethodPut)
	authed.HandleFunc("/assets/{id}", common.RequireRole(RoleOperator, s.DeleteAssetHandler)).Methods(http.MethodDelete)
	authed.HandleFunc("/assets/{id}/transfer", common.RequireRole(RoleOperator, s.TransferAssetHandler)).Methods(http.MethodPost)
	authed.HandleFunc("/assets/{id}/history", s.HistoryHandler).Methods(http.MethodGet)
	authed.HandleFunc("/events", s.ListEventsHandler).Methods(http.MethodGet)

	return r
}

func (s *Service) submit(r *http.Request, name string, args ...string) ([]byte, error) {
	return s.call(r, "submit", s.fabric.SubmitTransaction, name, args...)
}

func (s *Service) evaluate(r *http.Request, name string, args ...string) ([]byte, error) {
	return s.call(r, "evaluate", s.fabric.EvaluateTransaction, name, args...)
}

func (s *Service) call(r *http.Request, mode string, fn func(string, ...string) ([]byte, error), name string, args ...string) ([]byte, error) {
	start := time.Now()
	result, err := fn(name, args...)
	s.metrics.latency.WithLabelValues(name, mode).Observe(time.Since(start).Seconds())

	outcome := "ok"
	if err != nil {
		outcome = "error"
		s.logger.Warn("chaincode transaction failed",
			zap.String("transaction", name),
			zap.String("mode", mode),
			zap.String("request_id", common.RequestIDFromContext(r.Context())),
			zap.Error(err))
	}
	s.metrics.transactions.WithLabelValues(name, mode, outcome).Inc()
	return result, err
}

func traceID(r *http.Request) string {
	return common.RequestIDFromContext(r.Context())
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	api.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) InitLedgerHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := s.submit(r, "InitLedger"); err != nil {
		api.WriteChaincodeError(w, err, traceID(r))
		return
	}
	api.WriteSuccess(w, http.StatusOK, models.MessageResponse{Message: "ledger initialized"})
}

func (s *Service) CreateAssetHandler(w http.ResponseWriter, r *http.Request) {
	var req models.AssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", traceID(r))
		return
	}
	if req.ID == "" {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "id is required", traceID(r))
		return
	}

	result, err := s.submit(r, "CreateAsset", assetArgs(req.ID, req)...)
	if err != nil {
		api.WriteChaincodeError(w, err, traceID(r))
		return
	}
	api.WriteRaw(w, http.StatusCreated, result)
}

func (s *Service) GetAssetHandler(w http.ResponseWriter, r *http.Request) {
	result, err := s.evaluate(r, "ReadAsset", mux.Vars(r)["id"])
	if err != nil {
		api.WriteChaincodeError(w, err, traceID(r))
		return
	}
	api.WriteRaw(w, http.StatusOK, result)
}

func (s *Service) AssetExistsHandler(w http.ResponseWriter, r *http.Request) {
	result, err := s.evaluate(r, "AssetExists", mux.Vars(r)["id"])
	if err != nil {
		status, _ := api.ChaincodeErrorStatus(err)
		w.WriteHeader(status)
		return
	}

	exists, err := strconv.ParseBool(string(result))
	if err != nil || !exists {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Service) UpdateAssetHandler(w http.ResponseWriter, r *http.Request) {
	var req models.AssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", traceID(r))
		return
	}

	result, err := s.submit(r, "UpdateAsset", assetArgs(mux.Vars(r)["id"], req)...)
	if err != nil {
		api.WriteChaincodeError(w, err, traceID(r))
		return
	}
	api.WriteRaw(w, http.StatusOK, result)
}

func (s *Service) DeleteAssetHandler(w http.ResponseWriter, r *http.Request) {
	result, err := s.submit(r, "DeleteAsset", mux.Vars(r)["id"])
	if err != nil {
		api.WriteChaincodeError(w, err, traceID(r))
		return
	}
	api.WriteSuccess(w, http.StatusOK, models.MessageResponse{Message: string(result)})
}

func (s *Service) TransferAssetHandler(w http.ResponseWriter, r *http.Request) {
	var req models.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewOwner == "" {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "new_owner is required", traceID(r))
		return
	}

	id := mux.Vars(r)["id"]
	result, err := s.submit(r, "TransferAsset", id, req.NewOwner)
	if err != nil {
		api.WriteChaincodeError(w, err, traceID(r))
		return
	}
	api.WriteSuccess(w, http.StatusOK, models.TransferResponse{
		ID:            id,
		PreviousOwner: string(result),
		NewOwner:      req.NewOwner,
	})
}

func (s *Service) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	result, err := s.evaluate(r, "GetAssetHistory", mux.Vars(r)["id"])
	if err != nil {
		api.WriteChaincodeError(w, err, traceID(r))
		return
	}
	api.WriteRaw(w, http.StatusOK, result)
}

// ListAssetsHandler picks the contract query from the parameters: owner, a
// start/end range, or every record. page_size and bookmark paginate ranges.
func (s *Service) ListAssetsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		result []byte
		err    error
	)
	switch {
	case q.Get("owner") != "":
		result, err = s.evaluate(r, "QueryAssetsByOwner", q.Get("owner"))
	case q.Get("page_size") != "":
		pageSize, perr := parsePageSize(q.Get("page_size"))
		if perr != nil {
			api.WriteError(w, http.StatusBadRequest, "invalid_request", perr.Error(), traceID(r))
			return
		}
		result, err = s.evaluate(r, "GetAssetsByRangeWithPagination", q.Get("start"), q.Get("end"), pageSize, q.Get("bookmark"))
	case q.Get("start") != "" || q.Get("end") != "":
		result, err = s.evaluate(r, "GetAssetsByRange", q.Get("start"), q.Get("end"))
	default:
		result, err = s.evaluate(r, "GetAllAssets")
	}
	if err != nil {
		api.WriteChaincodeError(w, err, traceID(r))
		return
	}
	api.WriteRaw(w, http.StatusOK, result)
}

// QueryAssetsHandler forwards the request body as a rich-query selector document.
func (s *Service) QueryAssetsHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxQueryBody))
	if err != nil || !json.Valid(body) {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Query must be a JSON document", traceID(r))
		return
	}

	var result []byte
	if ps := r.URL.Query().Get("page_size"); ps != "" {
		pageSize, perr := parsePageSize(ps)
		if perr != nil {
			api.WriteError(w, http.StatusBadRequest, "invalid_request", perr.Error(), traceID(r))
			return
		}
		result, err = s.evaluate(r, "QueryAssetsWithPagination", string(body), pageSize, r.URL.Query().Get("bookmark"))
	} else {
		result, err = s.evaluate(r, "QueryAssets", string(body))
	}
	if err != nil {
		api.WriteChaincodeError(w, err, traceID(r))
		return
	}
	api.WriteRaw(w, http.StatusOK, result)
}

func (s *Service) ListEventsHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 || n > maxEventLimit {
			api.WriteError(w, http.StatusBadRequest, "invalid_request", "limit must be between 1 and 500", traceID(r))
			return
		}
		limit = n
	}

	events, err := s.events.List(r.Context(), r.URL.Query().Get("asset_id"), limit)
	if err != nil {
		s.logger.Error("failed to list events", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to list events", traceID(r))
		return
	}
	api.WriteSuccess(w, http.StatusOK, events)
}

func assetArgs(id string, req models.AssetRequest) []string {
	return []string{id, req.Color, strconv.Itoa(req.Size), req.Owner, strconv.Itoa(req.AppraisedValue)}
}

func parsePageSize(raw string) (string, error) {
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || n <= 0 {
		return "", errInvalidPageSize
	}
	return strconv.FormatInt(n, 10), nil
}

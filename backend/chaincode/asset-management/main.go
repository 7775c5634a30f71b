package main

import (
	"log"

	"github.com/dewprince2005/Private-Blockchain-Implementation/backend/chaincode/asset-management/chaincode"
	"github.com/dewprince2005/Private-Blockchain-Implementation/backend/pkg/common"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"go.uber.org/zap"
)

func main() {
	cfg := common.LoadChaincodeConfig()

	logger, err := common.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Panicf("Error creating logger: %v", err)
	}
	defer logger.Sync()

	assetChaincode, err := contractapi.NewChaincode(chaincode.NewSmartContract(logger))
	if err != nil {
		log.Panicf("Error creating asset-management chaincode: %v", err)
	}

	if cfg.ServerAddress == "" {
		if err := assetChaincode.Start(); err != nil {
			log.Panicf("Error starting asset-management chaincode: %v", err)
		}
		return
	}

	tlsProps, err := cfg.TLSProperties()
	if err != nil {
		log.Panicf("Error loading chaincode TLS material: %v", err)
	}

	server := &shim.ChaincodeServer{
		CCID:     cfg.ChaincodeID,
		Address:  cfg.ServerAddress,
		CC:       assetChaincode,
		TLSProps: tlsProps,
	}

	logger.Info("starting chaincode server",
		zap.String("address", cfg.ServerAddress),
		zap.String("ccid", cfg.ChaincodeID),
		zap.Bool("tls", !tlsProps.Disabled))

	if err := server.Start(); err != nil {
		log.Panicf("Error starting asset-management chaincode server: %v", err)
	}
}

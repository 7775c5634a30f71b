package chaincode

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric-contract-api-go/metadata"
	"go.uber.org/zap"
)

// SmartContract provides functions for managing assets in world state.
type SmartContract struct {
	contractapi.Contract

	logger *zap.Logger
}

// NewSmartContract returns a contract that logs through logger. The
// lower-case initLedger transaction name is routed to InitLedger.
func NewSmartContract(logger *zap.Logger) *SmartContract {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SmartContract{logger: logger.Named("asset-contract")}
	s.Info = metadata.InfoMetadata{
		Title:       "Asset Management",
		Description: "Create, transfer, query and audit assets held in world state",
		Version:     "1.0.0",
		License:     &metadata.LicenseMetadata{Name: "Apache-2.0"},
	}
	s.UnknownTransaction = s.unknownTransaction
	return s
}

func (s *SmartContract) log() *zap.Logger {
	if s.logger == nil {
		return zap.NewNop()
	}
	return s.logger
}

// unknownTransaction handles invocations of functions the contract does not export.
func (s *SmartContract) unknownTransaction(ctx contractapi.TransactionContextInterface) error {
	fn, _ := ctx.GetStub().GetFunctionAndParameters()
	if i := strings.LastIndex(fn, ":"); i >= 0 {
		fn = fn[i+1:]
	}
	if fn == "initLedger" {
		return s.InitLedger(ctx)
	}
	return fmt.Errorf("%w: %s", ErrUnknownTransaction, fn)
}

// InitLedger adds a base set of assets to the ledger. Existing keys are overwritten.
func (s *SmartContract) InitLedger(ctx contractapi.TransactionContextInterface) error {
	s.log().Info("initializing ledger")

	for _, asset := range seedAssets() {
		if _, err := putAsset(ctx.GetStub(), asset.ID, asset); err != nil {
			return err
		}
		s.log().Info("asset initialized", zap.String("id", asset.ID))
	}

	s.log().Info("ledger initialized")
	return nil
}

func seedAssets() []*Asset {
	return []*Asset{
		{ID: "asset1", Color: "blue", Size: 5, Owner: "Tomoko", AppraisedValue: 300},
		{ID: "asset2", Color: "red", Size: 5, Owner: "Brad", AppraisedValue: 400},
		{ID: "asset3", Color: "green", Size: 10, Owner: "Jin Soo", AppraisedValue: 500},
		{ID: "asset4", Color: "yellow", Size: 10, Owner: "Max", AppraisedValue: 600},
		{ID: "asset5", Color: "black", Size: 15, Owner: "Adriana", AppraisedValue: 700},
		{ID: "asset6", Color: "white", Size: 15, Owner: "Michel", AppraisedValue: 800},
	}
}

// CreateAsset issues a new asset to the world state with given details.
func (s *SmartContract) CreateAsset(ctx contractapi.TransactionContextInterface, id string, color string, size string, owner string, appraisedValue string) (string, error) {
	stub := ctx.GetStub()

	exists, err := assetExists(stub, id)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("the asset %s %w", id, ErrAssetExists)
	}

	asset := &Asset{ID: id, Color: color, Owner: owner}
	if err := setNumbers(asset, size, appraisedValue); err != nil {
		return "", err
	}

	assetJSON, err := putAsset(stub, id, asset)
	if err != nil {
		return "", err
	}
	if err := stub.SetEvent(EventAssetCreated, assetJSON); err != nil {
		return "", fmt.Errorf("failed to set event %s: %w", EventAssetCreated, err)
	}

	return string(assetJSON), nil
}

// ReadAsset returns the asset stored in the world state with given id, verbatim.
func (s *SmartContract) ReadAsset(ctx contractapi.TransactionContextInterface, id string) (string, error) {
	assetJSON, err := readState(ctx.GetStub(), id)
	if err != nil {
		return "", err
	}
	return string(assetJSON), nil
}

// UpdateAsset updates an existing asset in the world state with provided parameters.
func (s *SmartContract) UpdateAsset(ctx contractapi.TransactionContextInterface, id string, color string, size string, owner string, appraisedValue string) (string, error) {
	stub := ctx.GetStub()

	exists, err := assetExists(stub, id)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("the asset %s %w", id, ErrAssetNotFound)
	}

	asset, err := readAsset(stub, id)
	if err != nil {
		return "", err
	}
	asset.Color = color
	asset.Owner = owner
	if err := setNumbers(asset, size, appraisedValue); err != nil {
		return "", err
	}

	assetJSON, err := putAsset(stub, id, asset)
	if err != nil {
		return "", err
	}
	if err := stub.SetEvent(EventAssetUpdated, assetJSON); err != nil {
		return "", fmt.Errorf("failed to set event %s: %w", EventAssetUpdated, err)
	}

	return string(assetJSON), nil
}

// DeleteAsset deletes a given asset from the world state.
func (s *SmartContract) DeleteAsset(ctx contractapi.TransactionContextInterface, id string) (string, error) {
	stub := ctx.GetStub()

	exists, err := assetExists(stub, id)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("the asset %s %w", id, ErrAssetNotFound)
	}

	if err := stub.DelState(id); err != nil {
		return "", fmt.Errorf("failed to delete from world state: %w", err)
	}

	payload, err := json.Marshal(AssetDeletedEvent{ID: id})
	if err != nil {
		return "", err
	}
	if err := stub.SetEvent(EventAssetDeleted, payload); err != nil {
		return "", fmt.Errorf("failed to set event %s: %w", EventAssetDeleted, err)
	}

	return fmt.Sprintf("Asset %s deleted successfully", id), nil
}

// AssetExists returns true when asset with given ID exists in world state.
func (s *SmartContract) AssetExists(ctx contractapi.TransactionContextInterface, id string) (bool, error) {
	return assetExists(ctx.GetStub(), id)
}

// TransferAsset updates the owner field of asset with given id in world state,
// and returns the old owner.
func (s *SmartContract) TransferAsset(ctx contractapi.TransactionContextInterface, id string, newOwner string) (string, error) {
	stub := ctx.GetStub()

	asset, err := readAsset(stub, id)
	if err != nil {
		return "", err
	}

	oldOwner := asset.Owner
	asset.Owner = newOwner

	if _, err := putAsset(stub, id, asset); err != nil {
		return "", err
	}

	payload, err := json.Marshal(AssetTransferredEvent{ID: id, OldOwner: oldOwner, NewOwner: newOwner})
	if err != nil {
		return "", err
	}
	if err := stub.SetEvent(EventAssetTransferred, payload); err != nil {
		return "", fmt.Errorf("failed to set event %s: %w", EventAssetTransferred, err)
	}

	return oldOwner, nil
}

func assetExists(ledger Ledger, id string) (bool, error) {
	assetJSON, err := ledger.GetState(id)
	if err != nil {
		return false, fmt.Errorf("failed to read from world state: %w", err)
	}
	return len(assetJSON) > 0, nil
}

func readState(ledger Ledger, id string) ([]byte, error) {
	assetJSON, err := ledger.GetState(id)
	if err != nil {
		return nil, fmt.Errorf("failed to read from world state: %w", err)
	}
	if len(assetJSON) == 0 {
		return nil, fmt.Errorf("the asset %s %w", id, ErrAssetNotFound)
	}
	return assetJSON, nil
}

func readAsset(ledger Ledger, id string) (*Asset, error) {
	assetJSON, err := readState(ledger, id)
	if err != nil {
		return nil, err
	}
	return unmarshalAsset(assetJSON)
}

// putAsset writes the asset under id, stamping id and the discriminator into
// the document so its ID field always names the key it lives at.
func putAsset(ledger Ledger, id string, asset *Asset) ([]byte, error) {
	asset.ID = id
	asset.DocType = DocTypeAsset

	assetJSON, err := json.Marshal(asset)
	if err != nil {
		return nil, err
	}
	if err := ledger.PutState(id, assetJSON); err != nil {
		return nil, fmt.Errorf("failed to put to world state: %w", err)
	}
	return assetJSON, nil
}

func setNumbers(asset *Asset, size, appraisedValue string) error {
	n, err := strconv.Atoi(size)
	if err != nil {
		return fmt.Errorf("%w: size %q is not an integer", ErrInvalidArgument, size)
	}
	v, err := strconv.Atoi(appraisedValue)
	if err != nil {
		return fmt.Errorf("%w: appraised value %q is not an integer", ErrInvalidArgument, appraisedValue)
	}
	asset.Size = n
	asset.AppraisedValue = v
	return nil
}

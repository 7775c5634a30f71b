package chaincode

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*SmartContract, *contractapi.TransactionContext, *memStub) {
	t.Helper()
	stub := newMemStub()
	return NewSmartContract(nil), newTransactionContext(stub), stub
}

func decodeAsset(t *testing.T, s string) Asset {
	t.Helper()
	var asset Asset
	require.NoError(t, json.Unmarshal([]byte(s), &asset))
	return asset
}

func decodeResults(t *testing.T, s string) []QueryResult {
	t.Helper()
	var results []QueryResult
	require.NoError(t, json.Unmarshal([]byte(s), &results))
	return results
}

func resultKeys(results []QueryResult) []string {
	keys := make([]string, 0, len(results))
	for _, r := range results {
		keys = append(keys, r.Key)
	}
	return keys
}

func TestNewChaincodeAcceptsContract(t *testing.T) {
	_, err := contractapi.NewChaincode(NewSmartContract(nil))
	require.NoError(t, err)
}

func TestCreateAndReadAsset(t *testing.T) {
	sc, ctx, stub := setup(t)

	created, err := sc.CreateAsset(ctx, "asset7", "purple", "20", "Wu", "900")
	require.NoError(t, err)

	read, err := sc.ReadAsset(ctx, "asset7")
	require.NoError(t, err)
	assert.Equal(t, created, read)
	assert.JSONEq(t, `{"ID":"asset7","Color":"purple","Size":20,"Owner":"Wu","AppraisedValue":900,"docType":"asset"}`, read)

	require.Len(t, stub.events, 1)
	assert.Equal(t, EventAssetCreated, stub.events[0].name)
	assert.JSONEq(t, created, string(stub.events[0].payload))
}

func TestCreateAssetAlreadyExists(t *testing.T) {
	sc, ctx, stub := setup(t)

	_, err := sc.CreateAsset(ctx, "asset7", "purple", "20", "Wu", "900")
	require.NoError(t, err)
	before := string(stub.state["asset7"])

	_, err = sc.CreateAsset(ctx, "asset7", "green", "1", "Mei", "1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAssetExists))
	assert.EqualError(t, err, "the asset asset7 already exists")
	assert.Equal(t, before, string(stub.state["asset7"]))
	assert.Len(t, stub.events, 1)
}

func TestCreateAssetRejectsNonIntegers(t *testing.T) {
	tests := []struct {
		name           string
		size           string
		appraisedValue string
	}{
		{name: "size", size: "big", appraisedValue: "10"},
		{name: "appraised value", size: "5", appraisedValue: "10.5"},
		{name: "empty", size: "", appraisedValue: "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, ctx, stub := setup(t)

			_, err := sc.CreateAsset(ctx, "asset1", "blue", tt.size, "Tomoko", tt.appraisedValue)
			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.Empty(t, stub.state)
			assert.Empty(t, stub.events)
		})
	}
}

func TestMutationsOnMissingAsset(t *testing.T) {
	tests := []struct {
		name string
		call func(*SmartContract, contractapi.TransactionContextInterface) error
	}{
		{
			name: "update",
			call: func(sc *SmartContract, ctx contractapi.TransactionContextInterface) error {
				_, err := sc.UpdateAsset(ctx, "ghost", "red", "1", "Brad", "1")
				return err
			},
		},
		{
			name: "delete",
			call: func(sc *SmartContract, ctx contractapi.TransactionContextInterface) error {
				_, err := sc.DeleteAsset(ctx, "ghost")
				return err
			},
		},
		{
			name: "transfer",
			call: func(sc *SmartContract, ctx contractapi.TransactionContextInterface) error {
				_, err := sc.TransferAsset(ctx, "ghost", "Mei")
				return err
			},
		},
		{
			name: "read",
			call: func(sc *SmartContract, ctx contractapi.TransactionContextInterface) error {
				_, err := sc.ReadAsset(ctx, "ghost")
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, ctx, stub := setup(t)
			require.NoError(t, sc.InitLedger(ctx))
			stub.events = nil
			seq := stub.seq

			err := tt.call(sc, ctx)
			require.ErrorIs(t, err, ErrAssetNotFound)
			assert.EqualError(t, err, "the asset ghost does not exist")
			assert.Equal(t, seq, stub.seq, "no writes expected")
			assert.Empty(t, stub.events)
		})
	}
}

func TestUpdateAsset(t *testing.T) {
	sc, ctx, stub := setup(t)
	_, err := sc.CreateAsset(ctx, "asset7", "purple", "20", "Wu", "900")
	require.NoError(t, err)

	updated, err := sc.UpdateAsset(ctx, "asset7", "orange", "25", "Li", "950")
	require.NoError(t, err)

	asset := decodeAsset(t, updated)
	assert.Equal(t, Asset{ID: "asset7", Color: "orange", Size: 25, Owner: "Li", AppraisedValue: 950, DocType: DocTypeAsset}, asset)

	read, err := sc.ReadAsset(ctx, "asset7")
	require.NoError(t, err)
	assert.JSONEq(t, updated, read)

	require.Len(t, stub.events, 2)
	assert.Equal(t, EventAssetUpdated, stub.events[1].name)
	assert.JSONEq(t, updated, string(stub.events[1].payload))
}

func TestUpdateAssetRejectsForeignDocument(t *testing.T) {
	sc, ctx, stub := setup(t)
	require.NoError(t, stub.PutState("marble1", []byte(`{"name":"marble1","docType":"marble"}`)))

	_, err := sc.UpdateAsset(ctx, "marble1", "red", "1", "Brad", "1")
	require.Error(t, err)
	assert.JSONEq(t, `{"name":"marble1","docType":"marble"}`, string(stub.state["marble1"]))
}

func TestDeleteAsset(t *testing.T) {
	sc, ctx, stub := setup(t)
	_, err := sc.CreateAsset(ctx, "asset7", "purple", "20", "Wu", "900")
	require.NoError(t, err)

	msg, err := sc.DeleteAsset(ctx, "asset7")
	require.NoError(t, err)
	assert.Equal(t, "Asset asset7 deleted successfully", msg)

	exists, err := sc.AssetExists(ctx, "asset7")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = sc.ReadAsset(ctx, "asset7")
	assert.ErrorIs(t, err, ErrAssetNotFound)

	require.Len(t, stub.events, 2)
	assert.Equal(t, EventAssetDeleted, stub.events[1].name)
	assert.JSONEq(t, `{"ID":"asset7"}`, string(stub.events[1].payload))
}

func TestAssetExists(t *testing.T) {
	sc, ctx, stub := setup(t)
	require.NoError(t, sc.InitLedger(ctx))
	stub.state["blank"] = []byte{}

	exists, err := sc.AssetExists(ctx, "asset1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = sc.AssetExists(ctx, "blank")
	require.NoError(t, err)
	assert.False(t, exists)

	stub.getErr = errors.New("couchdb unavailable")
	_, err = sc.AssetExists(ctx, "asset1")
	assert.ErrorContains(t, err, "failed to read from world state")
}

func TestTransferAsset(t *testing.T) {
	sc, ctx, stub := setup(t)
	_, err := sc.CreateAsset(ctx, "asset7", "purple", "20", "Wu", "900")
	require.NoError(t, err)

	oldOwner, err := sc.TransferAsset(ctx, "asset7", "Mei")
	require.NoError(t, err)
	assert.Equal(t, "Wu", oldOwner)

	read, err := sc.ReadAsset(ctx, "asset7")
	require.NoError(t, err)
	asset := decodeAsset(t, read)
	assert.Equal(t, Asset{ID: "asset7", Color: "purple", Size: 20, Owner: "Mei", AppraisedValue: 900, DocType: DocTypeAsset}, asset)

	require.Len(t, stub.events, 2)
	assert.Equal(t, EventAssetTransferred, stub.events[1].name)
	assert.JSONEq(t, `{"ID":"asset7","oldOwner":"Wu","newOwner":"Mei"}`, string(stub.events[1].payload))
}

func TestMutationsWriteToRequestedKey(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		mutate func(*SmartContract, *contractapi.TransactionContext) error
	}{
		{
			name:   "update with mismatched ID",
			stored: `{"ID":"other","Color":"red","Size":1,"Owner":"A","AppraisedValue":1,"docType":"asset"}`,
			mutate: func(sc *SmartContract, ctx *contractapi.TransactionContext) error {
				_, err := sc.UpdateAsset(ctx, "k1", "blue", "2", "B", "3")
				return err
			},
		},
		{
			name:   "transfer with mismatched ID",
			stored: `{"ID":"other","Color":"red","Size":1,"Owner":"A","AppraisedValue":1,"docType":"asset"}`,
			mutate: func(sc *SmartContract, ctx *contractapi.TransactionContext) error {
				_, err := sc.TransferAsset(ctx, "k1", "B")
				return err
			},
		},
		{
			name:   "transfer without ID",
			stored: `{"Color":"red","Size":1,"Owner":"A","AppraisedValue":1,"docType":"asset"}`,
			mutate: func(sc *SmartContract, ctx *contractapi.TransactionContext) error {
				_, err := sc.TransferAsset(ctx, "k1", "B")
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, ctx, stub := setup(t)
			require.NoError(t, stub.PutState("k1", []byte(tt.stored)))

			require.NoError(t, tt.mutate(sc, ctx))

			asset := decodeAsset(t, string(stub.state["k1"]))
			assert.Equal(t, "k1", asset.ID)
			assert.Equal(t, "B", asset.Owner)
			assert.NotContains(t, stub.state, "other")
			assert.NotContains(t, stub.state, "")
		})
	}
}

func TestInitLedger(t *testing.T) {
	sc, ctx, stub := setup(t)

	require.NoError(t, sc.InitLedger(ctx))
	require.Len(t, stub.state, 6)

	first, err := sc.ReadAsset(ctx, "asset1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ID":"asset1","Color":"blue","Size":5,"Owner":"Tomoko","AppraisedValue":300,"docType":"asset"}`, first)

	// a second run rewrites the same values without failing
	require.NoError(t, sc.InitLedger(ctx))
	again, err := sc.ReadAsset(ctx, "asset1")
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Len(t, stub.history["asset1"], 2)
	assert.Empty(t, stub.events)
}

func TestUnknownTransaction(t *testing.T) {
	tests := []struct {
		function string
		seeded   bool
	}{
		{function: "initLedger", seeded: true},
		{function: "SmartContract:initLedger", seeded: true},
		{function: "Bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.function, func(t *testing.T) {
			sc, ctx, stub := setup(t)
			stub.function = tt.function

			err := sc.unknownTransaction(ctx)
			if tt.seeded {
				require.NoError(t, err)
				assert.Len(t, stub.state, 6)
				return
			}
			require.ErrorIs(t, err, ErrUnknownTransaction)
			assert.Empty(t, stub.state)
		})
	}
}

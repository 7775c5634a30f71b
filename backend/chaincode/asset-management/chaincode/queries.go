package chaincode

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric-protos-go/ledger/queryresult"
	"go.uber.org/zap"
)

// ownerQuery is the rich-query document used by QueryAssetsByOwner.
type ownerQuery struct {
	Selector ownerSelector `json:"selector"`
}

type ownerSelector struct {
	DocType string `json:"docType"`
	Owner   string `json:"Owner"`
}

// GetAllAssets returns all records found in world state, of any docType.
func (s *SmartContract) GetAllAssets(ctx contractapi.TransactionContextInterface) (string, error) {
	// range query with empty string for startKey and endKey does an
	// open-ended query of all records in the chaincode namespace.
	return s.GetAssetsByRange(ctx, "", "")
}

// GetAssetsByRange performs a range query based on the start and end keys provided.
// The end key is exclusive.
func (s *SmartContract) GetAssetsByRange(ctx contractapi.TransactionContextInterface, startKey string, endKey string) (string, error) {
	results, err := rangeScan(ctx.GetStub(), startKey, endKey)
	if err != nil {
		return "", err
	}
	return marshalResults(results)
}

// GetAssetsByRangeWithPagination performs a range query returning at most pageSize
// records starting at bookmark. An empty bookmark starts from startKey.
func (s *SmartContract) GetAssetsByRangeWithPagination(ctx contractapi.TransactionContextInterface, startKey string, endKey string, pageSize int32, bookmark string) (string, error) {
	it, meta, err := ctx.GetStub().GetStateByRangeWithPagination(startKey, endKey, pageSize, bookmark)
	if err != nil {
		return "", err
	}

	results, err := collectResults(it, false)
	if err != nil {
		return "", err
	}
	return marshalPage(results, meta.GetFetchedRecordsCount(), meta.GetBookmark())
}

// QueryAssetsByOwner returns the assets held by owner.
func (s *SmartContract) QueryAssetsByOwner(ctx contractapi.TransactionContextInterface, owner string) (string, error) {
	query, err := json.Marshal(ownerQuery{Selector: ownerSelector{DocType: DocTypeAsset, Owner: owner}})
	if err != nil {
		return "", err
	}
	return s.GetQueryResultForQueryString(ctx, string(query))
}

// QueryAssets runs a caller-supplied rich query as is. Only available on state
// databases that support rich query (e.g. CouchDB).
func (s *SmartContract) QueryAssets(ctx contractapi.TransactionContextInterface, queryString string) (string, error) {
	return s.GetQueryResultForQueryString(ctx, queryString)
}

// QueryAssetsWithPagination runs a rich query returning at most pageSize records
// starting at bookmark.
func (s *SmartContract) QueryAssetsWithPagination(ctx contractapi.TransactionContextInterface, queryString string, pageSize int32, bookmark string) (string, error) {
	s.log().Debug("paginated rich query", zap.String("query", queryString), zap.Int32("pageSize", pageSize))

	it, meta, err := ctx.GetStub().GetQueryResultWithPagination(queryString, pageSize, bookmark)
	if err != nil {
		return "", err
	}

	results, err := collectResults(it, true)
	if err != nil {
		return "", err
	}
	return marshalPage(results, meta.GetFetchedRecordsCount(), meta.GetBookmark())
}

// GetQueryResultForQueryString executes the passed in query string and returns
// the matching records. Entries with an empty value are skipped.
func (s *SmartContract) GetQueryResultForQueryString(ctx contractapi.TransactionContextInterface, queryString string) (string, error) {
	s.log().Debug("rich query", zap.String("query", queryString))

	results, err := richQuery(ctx.GetStub(), queryString)
	if err != nil {
		return "", err
	}
	return marshalResults(results)
}

// GetAssetHistory returns every committed state of the asset, oldest first.
func (s *SmartContract) GetAssetHistory(ctx contractapi.TransactionContextInterface, id string) (string, error) {
	records, err := assetHistory(ctx.GetStub(), id)
	if err != nil {
		return "", err
	}

	historyJSON, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(historyJSON), nil
}

func rangeScan(ledger Ledger, startKey, endKey string) ([]QueryResult, error) {
	it, err := ledger.GetStateByRange(startKey, endKey)
	if err != nil {
		return nil, err
	}
	return collectResults(it, false)
}

func richQuery(ledger Ledger, queryString string) ([]QueryResult, error) {
	it, err := ledger.GetQueryResult(queryString)
	if err != nil {
		return nil, err
	}
	return collectResults(it, true)
}

// collectResults materializes every entry of it and closes it. Values that are
// not JSON are kept as raw text rather than failing the scan.
func collectResults(it shim.StateQueryIteratorInterface, skipEmpty bool) ([]QueryResult, error) {
	results := []QueryResult{}
	err := eachKV(it, func(kv *queryresult.KV) error {
		if skipEmpty && len(kv.Value) == 0 {
			return nil
		}
		results = append(results, QueryResult{Key: kv.Key, Record: NewRecord(kv.Value)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func assetHistory(ledger Ledger, id string) ([]HistoryQueryResult, error) {
	it, err := ledger.GetHistoryForKey(id)
	if err != nil {
		return nil, err
	}

	records := []HistoryQueryResult{}
	err = eachModification(it, func(mod *queryresult.KeyModification) error {
		record := HistoryQueryResult{
			TxID:     mod.TxId,
			IsDelete: mod.IsDelete,
		}
		if ts := mod.GetTimestamp(); ts != nil {
			record.Timestamp = ts.AsTime().UTC()
		}
		if !mod.IsDelete && len(mod.Value) > 0 {
			value := NewRecord(mod.Value)
			record.Value = &value
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read history of %s: %w", id, err)
	}
	return records, nil
}

func marshalResults(results []QueryResult) (string, error) {
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return "", err
	}
	return string(resultsJSON), nil
}

func marshalPage(results []QueryResult, fetched int32, bookmark string) (string, error) {
	pageJSON, err := json.Marshal(PaginatedQueryResult{
		Records:             results,
		FetchedRecordsCount: fetched,
		Bookmark:            bookmark,
	})
	if err != nil {
		return "", err
	}
	return string(pageJSON), nil
}

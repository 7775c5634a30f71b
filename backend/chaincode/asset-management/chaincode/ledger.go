package chaincode

import (
	"fmt"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-protos-go/ledger/queryresult"
	"github.com/hyperledger/fabric-protos-go/peer"
)

// Ledger is the slice of the transaction context the contract relies on.
// shim.ChaincodeStubInterface satisfies it directly.
type Ledger interface {
	GetState(key string) ([]byte, error)
	PutState(key string, value []byte) error
	DelState(key string) error
	SetEvent(name string, payload []byte) error

	GetStateByRange(startKey, endKey string) (shim.StateQueryIteratorInterface, error)
	GetStateByRangeWithPagination(startKey, endKey string, pageSize int32, bookmark string) (shim.StateQueryIteratorInterface, *peer.QueryResponseMetadata, error)
	GetQueryResult(query string) (shim.StateQueryIteratorInterface, error)
	GetQueryResultWithPagination(query string, pageSize int32, bookmark string) (shim.StateQueryIteratorInterface, *peer.QueryResponseMetadata, error)
	GetHistoryForKey(key string) (shim.HistoryQueryIteratorInterface, error)
}

var _ Ledger = (shim.ChaincodeStubInterface)(nil)

// eachKV drains it, calling fn for every entry, and always closes it.
func eachKV(it shim.StateQueryIteratorInterface, fn func(*queryresult.KV) error) (err error) {
	defer func() {
		if cerr := it.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close iterator: %w", cerr)
		}
	}()

	for it.HasNext() {
		kv, err := it.Next()
		if err != nil {
			return err
		}
		if err := fn(kv); err != nil {
			return err
		}
	}
	return nil
}

// eachModification is eachKV for history iterators.
func eachModification(it shim.HistoryQueryIteratorInterface, fn func(*queryresult.KeyModification) error) (err error) {
	defer func() {
		if cerr := it.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close history iterator: %w", cerr)
		}
	}()

	for it.HasNext() {
		mod, err := it.Next()
		if err != nil {
			return err
		}
		if err := fn(mod); err != nil {
			return err
		}
	}
	return nil
}

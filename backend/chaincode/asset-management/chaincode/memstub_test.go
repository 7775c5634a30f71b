package chaincode

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric-protos-go/ledger/queryresult"
	"github.com/hyperledger/fabric-protos-go/peer"
	"google.golang.org/protobuf/types/known/timestamppb"
)

type chaincodeEvent struct {
	name    string
	payload []byte
}

// memStub is an in-memory world state. Methods the contract does not use fall
// through to the nil embedded interface and panic.
type memStub struct {
	shim.ChaincodeStubInterface

	function string
	state    map[string][]byte
	history  map[string][]*queryresult.KeyModification
	events   []chaincodeEvent
	clock    time.Time
	seq      int

	openIterators int
	getErr        error
	historyErr    error
}

func newMemStub() *memStub {
	return &memStub{
		state:   map[string][]byte{},
		history: map[string][]*queryresult.KeyModification{},
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTransactionContext(stub *memStub) *contractapi.TransactionContext {
	ctx := new(contractapi.TransactionContext)
	ctx.SetStub(stub)
	return ctx
}

func (m *memStub) GetFunctionAndParameters() (string, []string) {
	return m.function, nil
}

func (m *memStub) GetTxID() string {
	return fmt.Sprintf("tx%d", m.seq)
}

func (m *memStub) GetState(key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.state[key], nil
}

func (m *memStub) PutState(key string, value []byte) error {
	m.state[key] = append([]byte(nil), value...)
	m.record(key, value, false)
	return nil
}

func (m *memStub) DelState(key string) error {
	delete(m.state, key)
	m.record(key, nil, true)
	return nil
}

func (m *memStub) record(key string, value []byte, isDelete bool) {
	m.seq++
	m.clock = m.clock.Add(time.Second)
	m.history[key] = append(m.history[key], &queryresult.KeyModification{
		TxId:      m.GetTxID(),
		Value:     value,
		Timestamp: timestamppb.New(m.clock),
		IsDelete:  isDelete,
	})
}

func (m *memStub) SetEvent(name string, payload []byte) error {
	m.events = append(m.events, chaincodeEvent{name: name, payload: payload})
	return nil
}

func (m *memStub) sortedKeys() []string {
	keys := make([]string, 0, len(m.state))
	for k := range m.state {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *memStub) rangeKVs(startKey, endKey string) []*queryresult.KV {
	var kvs []*queryresult.KV
	for _, k := range m.sortedKeys() {
		if k < startKey || (endKey != "" && k >= endKey) {
			continue
		}
		kvs = append(kvs, &queryresult.KV{Key: k, Value: m.state[k]})
	}
	return kvs
}

func (m *memStub) GetStateByRange(startKey, endKey string) (shim.StateQueryIteratorInterface, error) {
	return m.newKVIterator(m.rangeKVs(startKey, endKey)), nil
}

func (m *memStub) GetStateByRangeWithPagination(startKey, endKey string, pageSize int32, bookmark string) (shim.StateQueryIteratorInterface, *peer.QueryResponseMetadata, error) {
	if bookmark != "" {
		startKey = bookmark
	}
	kvs, meta := page(m.rangeKVs(startKey, endKey), pageSize)
	return m.newKVIterator(kvs), meta, nil
}

// GetQueryResult supports selectors made of top-level equality matches.
func (m *memStub) GetQueryResult(query string) (shim.StateQueryIteratorInterface, error) {
	kvs, err := m.match(query)
	if err != nil {
		return nil, err
	}
	return m.newKVIterator(kvs), nil
}

func (m *memStub) GetQueryResultWithPagination(query string, pageSize int32, bookmark string) (shim.StateQueryIteratorInterface, *peer.QueryResponseMetadata, error) {
	kvs, err := m.match(query)
	if err != nil {
		return nil, nil, err
	}
	if bookmark != "" {
		for i, kv := range kvs {
			if kv.Key >= bookmark {
				kvs = kvs[i:]
				break
			}
		}
	}
	kvs, meta := page(kvs, pageSize)
	return m.newKVIterator(kvs), meta, nil
}

func (m *memStub) match(query string) ([]*queryresult.KV, error) {
	var q struct {
		Selector map[string]interface{} `json:"selector"`
	}
	if err := json.Unmarshal([]byte(query), &q); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	var kvs []*queryresult.KV
	for _, k := range m.sortedKeys() {
		var doc map[string]interface{}
		if json.Unmarshal(m.state[k], &doc) != nil {
			continue
		}
		matched := true
		for field, want := range q.Selector {
			if !reflect.DeepEqual(doc[field], want) {
				matched = false
				break
			}
		}
		if matched {
			kvs = append(kvs, &queryresult.KV{Key: k, Value: m.state[k]})
		}
	}
	return kvs, nil
}

func page(kvs []*queryresult.KV, pageSize int32) ([]*queryresult.KV, *peer.QueryResponseMetadata) {
	meta := &peer.QueryResponseMetadata{}
	if pageSize > 0 && int(pageSize) < len(kvs) {
		meta.Bookmark = kvs[pageSize].Key
		kvs = kvs[:pageSize]
	}
	meta.FetchedRecordsCount = int32(len(kvs))
	return kvs, meta
}

func (m *memStub) GetHistoryForKey(key string) (shim.HistoryQueryIteratorInterface, error) {
	m.openIterators++
	return &historyIterator{stub: m, items: m.history[key], failAt: 1, failErr: m.historyErr}, nil
}

func (m *memStub) newKVIterator(kvs []*queryresult.KV) *kvIterator {
	m.openIterators++
	return &kvIterator{stub: m, items: kvs}
}

type kvIterator struct {
	stub    *memStub
	items   []*queryresult.KV
	pos     int
	failAt  int
	failErr error
	closed  bool
}

func (it *kvIterator) HasNext() bool { return it.pos < len(it.items) }

func (it *kvIterator) Next() (*queryresult.KV, error) {
	if it.failErr != nil && it.pos == it.failAt {
		return nil, it.failErr
	}
	if !it.HasNext() {
		return nil, errors.New("iterator exhausted")
	}
	kv := it.items[it.pos]
	it.pos++
	return kv, nil
}

func (it *kvIterator) Close() error {
	if !it.closed {
		it.closed = true
		if it.stub != nil {
			it.stub.openIterators--
		}
	}
	return nil
}

type historyIterator struct {
	stub    *memStub
	items   []*queryresult.KeyModification
	pos     int
	failAt  int
	failErr error
	closed  bool
}

func (it *historyIterator) HasNext() bool { return it.pos < len(it.items) }

func (it *historyIterator) Next() (*queryresult.KeyModification, error) {
	if it.failErr != nil && it.pos == it.failAt {
		return nil, it.failErr
	}
	if !it.HasNext() {
		return nil, errors.New("iterator exhausted")
	}
	mod := it.items[it.pos]
	it.pos++
	return mod, nil
}

func (it *historyIterator) Close() error {
	if !it.closed {
		it.closed = true
		if it.stub != nil {
			it.stub.openIterators--
		}
	}
	return nil
}

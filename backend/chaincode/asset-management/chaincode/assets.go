package chaincode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DocTypeAsset tags every asset document so rich queries can be scoped to assets only.
const DocTypeAsset = "asset"

// Chaincode events emitted by the record operations.
const (
	EventAssetCreated     = "AssetCreated"
	EventAssetUpdated     = "AssetUpdated"
	EventAssetDeleted     = "AssetDeleted"
	EventAssetTransferred = "AssetTransferred"
)

// Asset describes the basic details of an asset held in world state.
// Field order is kept stable so every endorser produces identical bytes.
type Asset struct {
	ID             string `json:"ID"`
	Color          string `json:"Color"`
	Size           int    `json:"Size"`
	Owner          string `json:"Owner"`
	AppraisedValue int    `json:"AppraisedValue"`
	DocType        string `json:"docType"`
}

// AssetDeletedEvent is the payload of AssetDeleted.
type AssetDeletedEvent struct {
	ID string `json:"ID"`
}

// AssetTransferredEvent is the payload of AssetTransferred.
type AssetTransferredEvent struct {
	ID       string `json:"ID"`
	OldOwner string `json:"oldOwner"`
	NewOwner string `json:"newOwner"`
}

// QueryResult is one key/record pair produced by a range scan or rich query.
type QueryResult struct {
	Key    string `json:"Key"`
	Record Record `json:"Record"`
}

// PaginatedQueryResult is a page of query results plus the bookmark for the next page.
type PaginatedQueryResult struct {
	Records             []QueryResult `json:"records"`
	FetchedRecordsCount int32         `json:"fetchedRecordsCount"`
	Bookmark            string        `json:"bookmark"`
}

// HistoryQueryResult is a single committed modification of a key.
type HistoryQueryResult struct {
	TxID      string    `json:"TxId"`
	Timestamp time.Time `json:"Timestamp"`
	IsDelete  bool      `json:"IsDelete"`
	Value     *Record   `json:"Value,omitempty"`
}

// Record holds a stored value either as parsed JSON or, when the bytes are not
// valid JSON, as the raw text.
type Record struct {
	doc json.RawMessage
	raw string
}

// NewRecord classifies value as a JSON document or raw text.
func NewRecord(value []byte) Record {
	if json.Valid(value) {
		doc := make(json.RawMessage, len(value))
		copy(doc, value)
		return Record{doc: doc}
	}
	return Record{raw: string(value)}
}

// IsRaw reports whether the stored value could not be parsed.
func (r Record) IsRaw() bool {
	return r.doc == nil
}

// Raw returns the unparsed text of a raw record.
func (r Record) Raw() string {
	return r.raw
}

// Asset decodes the record as an Asset.
func (r Record) Asset() (*Asset, error) {
	if r.IsRaw() {
		return nil, fmt.Errorf("%w: record is not a JSON document", ErrInvalidArgument)
	}
	return unmarshalAsset(r.doc)
}

func (r Record) MarshalJSON() ([]byte, error) {
	if r.doc != nil {
		return r.doc, nil
	}
	return json.Marshal(r.raw)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		r.doc = nil
		return json.Unmarshal(trimmed, &r.raw)
	}
	r.raw = ""
	r.doc = append(json.RawMessage(nil), trimmed...)
	return nil
}

// unmarshalAsset decodes a stored asset, rejecting documents of any other shape.
func unmarshalAsset(data []byte) (*Asset, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var asset Asset
	if err := dec.Decode(&asset); err != nil {
		return nil, fmt.Errorf("failed to decode asset: %w", err)
	}
	return &asset, nil
}

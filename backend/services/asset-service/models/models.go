package models

import (
	"encoding/json"
	"time"
)

type AssetRequest struct {
	ID             string `json:"id"`
	Color          string `json:"color"`
	Size           int    `json:"size"`
	Owner          string `json:"owner"`
	AppraisedValue int    `json:"appraised_value"`
}

type TransferRequest struct {
	NewOwner string `json:"new_owner"`
}

type TransferResponse struct {
	ID            string `json:"id"`
	PreviousOwner string `json:"previous_owner"`
	NewOwner      string `json:"new_owner"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// AssetEvent is a chaincode event as recorded in the off-chain index.
type AssetEvent struct {
	ID          int64           `json:"id"`
	TxID        string          `json:"tx_id"`
	EventName   string          `json:"event_name"`
	AssetID     string          `json:"asset_id"`
	Payload     json.RawMessage `json:"payload"`
	BlockNumber uint64          `json:"block_number"`
	RecordedAt  time.Time       `json:"recorded_at"`
}

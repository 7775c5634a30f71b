package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ErrorResponse follows the design doc format
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// WriteError writes a standardized JSON error response
func WriteError(w http.ResponseWriter, statusCode int, code, message, traceID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Code:    code,
		Message: message,
		TraceID: traceID,
	})
}

// WriteSuccess writes data as JSON. A nil data writes only the status.
func WriteSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// WriteRaw writes a payload that is already JSON, such as a chaincode response.
func WriteRaw(w http.ResponseWriter, statusCode int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(payload)
}

// ChaincodeErrorStatus classifies a gateway error by the contract message it carries.
// The gateway flattens chaincode errors to text, so matching is on the message.
func ChaincodeErrorStatus(err error) (int, string) {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "does not exist"):
		return http.StatusNotFound, "not_found"
	case strings.Contains(msg, "already exists"):
		return http.StatusConflict, "already_exists"
	case strings.Contains(msg, "invalid argument"):
		return http.StatusBadRequest, "invalid_argument"
	default:
		return http.StatusBadGateway, "chaincode_error"
	}
}

// WriteChaincodeError maps a gateway error onto an ErrorResponse.
func WriteChaincodeError(w http.ResponseWriter, err error, traceID string) {
	status, code := ChaincodeErrorStatus(err)
	WriteError(w, status, code, err.Error(), traceID)
}

package room

import (
	"holdem-server/pkg/holdem"
	"holdem-server/pkg/store"
)

// response keys
// tableCreated and joinedTable reach the client before its first tableState.
const (
	KeyTableCreated      = "tableCreated"
	KeyJoinedTable       = "joinedTable"
	KeyBotAdded          = "botAdded"
	KeyPlayerReconnected = "playerReconnected"
	KeyTableState        = "tableState"
	KeyShowdown          = "showdown"
	KeyStatus            = "status"
	KeyWarning           = "warning"
	KeyError             = "error"
)

// Response is a message sent to a connected client
type Response struct {
	Key     string      `json:"key"`
	Value   string      `json:"value"`
	Data    interface{} `json:"data,omitempty"`
	Context string      `json:"context,omitempty"`
}

// SeatAssignment tells the client which seat it occupies
type SeatAssignment struct {
	TableID     string `json:"tableId"`
	SeatID      string `json:"seatId"`
	Reconnected bool   `json:"reconnected"`
}

// ErrorData is the payload of an error response
type ErrorData struct {
	Message string           `json:"message"`
	Kind    holdem.ErrorKind `json:"kind"`
}

// OK returns a status OK response
func OK(ctx string) *Response {
	return &Response{
		Key:     KeyStatus,
		Value:   "OK",
		Context: ctx,
	}
}

// NewErrorResponse returns an error response. Internal details are not sent to clients.
func NewErrorResponse(ctx string, err error) *Response {
	kind := holdem.Kind(err)
	msg := err.Error()
	switch {
	case kind != holdem.KindInternal:
	case store.IsPersistenceError(err):
		msg = "table storage is unavailable, try again later"
	default:
		// driver and panic details stay in the logs
		msg = "an unexpected error occurred"
	}

	return &Response{
		Key:     KeyError,
		Value:   msg,
		Data:    ErrorData{Message: msg, Kind: kind},
		Context: ctx,
	}
}

func newWarningResponse(msg string) *Response {
	return &Response{
		Key:   KeyWarning,
		Value: msg,
		Data:  map[string]string{"message": msg},
	}
}

func newSeatResponse(key, ctx string, a SeatAssignment) *Response {
	return &Response{
		Key:     key,
		Value:   a.SeatID,
		Data:    a,
		Context: ctx,
	}
}

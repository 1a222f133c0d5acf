// Package httpapi exposes the save pipeline (C6) and withdrawal preparer
// (C7) over HTTP, per spec §6: POST /save and POST /withdraw.
package httpapi

import (
	"github.com/greenacre/farmcore/action"
	"github.com/greenacre/farmcore/farmstate"
)

// SaveRequest is the §6 POST /save JSON body.
type SaveRequest struct {
	FarmID    int64           `json:"farmId"`
	SessionID string          `json:"sessionId"`
	Sender    string          `json:"sender"`
	Signature string          `json:"signature"`
	Actions   []action.Action `json:"actions"`
}

// SaveResponse is the serialized farm snapshot returned on a successful save.
type SaveResponse = farmstate.Document

// WithdrawRequest is the §6 POST /withdraw JSON body.
type WithdrawRequest struct {
	FarmID    int64    `json:"farmId"`
	SessionID string   `json:"sessionId"`
	Sender    string   `json:"sender"`
	Signature string   `json:"signature"`
	SFL       string   `json:"sfl"`
	IDs       []int    `json:"ids"`
	Amounts   []string `json:"amounts"`
}

// WithdrawResponse carries the signer's bundle, enough for the client to
// submit the withdrawal on-chain.
type WithdrawResponse struct {
	Signature string `json:"signature"`
	Deadline  int64  `json:"deadline"`
}

// errorResponse is the JSON body for any error response (4xx or 5xx).
type errorResponse struct {
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

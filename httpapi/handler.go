package httpapi

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/greenacre/farmcore/catalog"
	"github.com/greenacre/farmcore/events"
	"github.com/greenacre/farmcore/save"
	"github.com/greenacre/farmcore/withdraw"
)

// Handler wires the save pipeline (C6) and withdrawal preparer (C7) to the
// two HTTP routes spec §6 names.
type Handler struct {
	Deps    save.Deps
	Signer  save.Signer
	Catalog *catalog.Catalog
	Network string // read once per process, per spec §6; attached to every Request
	Now     func() time.Time
}

// NewHandler builds a Handler with Now defaulting to time.Now.
func NewHandler(deps save.Deps, signer save.Signer, cat *catalog.Catalog, network string) *Handler {
	return &Handler{Deps: deps, Signer: signer, Catalog: cat, Network: network, Now: time.Now}
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	var body SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Tag: "MalformedRequest", Message: err.Error()})
		return
	}

	signature, err := decodeHex(body.Signature)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Tag: "MalformedRequest", Message: "signature must be hex-encoded"})
		return
	}

	req := save.Request{
		FarmID:    body.FarmID,
		Sender:    common.HexToAddress(body.Sender),
		Signature: signature,
		Actions:   body.Actions,
		Network:   h.Network,
	}

	snapshot, err := save.Run(r.Context(), h.Deps, req, h.Now())
	if err != nil {
		writeSaveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var body WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Tag: "MalformedRequest", Message: err.Error()})
		return
	}

	sfl, err := decimal.NewFromString(body.SFL)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Tag: "MalformedRequest", Message: "sfl must be a decimal string"})
		return
	}

	payload, err := withdraw.Prepare(h.Catalog, withdraw.Request{
		FarmID:    body.FarmID,
		SessionID: body.SessionID,
		Sender:    body.Sender,
		SFL:       sfl,
		IDs:       body.IDs,
		Amounts:   body.Amounts,
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Tag: "NotWithdrawable", Message: err.Error()})
		return
	}

	bundle, err := h.Signer.WithdrawSignature(r.Context(), payload)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Tag: "ExternalUnavailable", Message: err.Error()})
		return
	}
	if h.Deps.Emitter != nil {
		h.Deps.Emitter.Emit(events.Event{
			Type:   events.EventWithdrawPrepared,
			FarmID: body.FarmID,
			Data:   map[string]any{"tax": payload.Tax, "ids": payload.IDs},
		})
	}
	writeJSON(w, http.StatusOK, WithdrawResponse{Signature: bundle.Signature, Deadline: bundle.Deadline})
}

// writeSaveError maps a *save.Error's stable Tag to the §7 status-code
// class: 403 on signature/ownership/whitelist mismatch, 409 on CAS loss,
// 503 on external-dependency failure, 400 for every other tagged failure
// (temporal and dispatcher rejections alike).
func writeSaveError(w http.ResponseWriter, err error) {
	saveErr, ok := err.(*save.Error)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Tag: "Internal", Message: err.Error()})
		return
	}
	writeJSON(w, statusForTag(saveErr.Tag), errorResponse{Tag: string(saveErr.Tag), Message: saveErr.Message})
}

func statusForTag(tag save.Tag) int {
	switch tag {
	case save.TagNotOwner, save.TagBadSignature, save.TagNotWhitelisted:
		return http.StatusForbidden
	case save.TagSessionConflict:
		return http.StatusConflict
	case save.TagExternalUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func decodeHex(s string) ([]byte, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	return hex.DecodeString(s)
}

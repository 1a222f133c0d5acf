// Package withdraw implements the withdrawal preparer (C7): given a
// withdrawal request it validates the requested item IDs, computes tax, and
// bundles the signing payload an external Signer consumes. It never mutates
// a farm; the on-chain contract owns that effect, observed later via
// reconcile.
package withdraw

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/greenacre/farmcore/catalog"
)

// Errors returned by Prepare.
var (
	// ErrNotWithdrawable is returned when an id is outside the catalog's
	// withdrawable set.
	ErrNotWithdrawable = errors.New("item is not withdrawable")
	// ErrLengthMismatch guards a defence-in-depth check the on-chain
	// contract does not itself perform (spec §9 open question 3): ids and
	// amounts must be the same length before this ever reaches the signer.
	ErrLengthMismatch = errors.New("ids and amounts length mismatch")
)

// Request is one withdrawal ask.
type Request struct {
	FarmID    int64
	SessionID string
	Sender    string
	SFL       decimal.Decimal
	IDs       []int
	Amounts   []string // wei-strings, positional with IDs
}

// Payload is what gets handed to the external Signer. Tax is basis points.
type Payload struct {
	Sender    string
	FarmID    int64
	SessionID string
	SFL       decimal.Decimal
	IDs       []int
	Amounts   []string
	Tax       int
}

// Prepare validates req against cat and returns the signing payload. An
// empty IDs/Amounts pair is a legal no-op withdrawal that still produces a
// payload and consumes a signature (spec §9 open question 2: the source
// validates amounts.min(0), not .min(1)).
func Prepare(cat *catalog.Catalog, req Request) (Payload, error) {
	if len(req.IDs) != len(req.Amounts) {
		return Payload{}, fmt.Errorf("%w: %d ids, %d amounts", ErrLengthMismatch, len(req.IDs), len(req.Amounts))
	}
	for _, id := range req.IDs {
		if !cat.IsWithdrawable(id) {
			return Payload{}, fmt.Errorf("%w: id %d", ErrNotWithdrawable, id)
		}
	}

	tax := cat.TaxBasisPoints(req.SFL)
	return Payload{
		Sender:    req.Sender,
		FarmID:    req.FarmID,
		SessionID: req.SessionID,
		SFL:       req.SFL,
		IDs:       req.IDs,
		Amounts:   req.Amounts,
		Tax:       tax,
	}, nil
}

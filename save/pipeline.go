// Package save orchestrates the save pipeline (C6) and defines the
// consumed-interface ports (C8): load → reconcile → temporal-check →
// replay → persist (CAS) → audit → snapshot.
package save

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/greenacre/farmcore/action"
	"github.com/greenacre/farmcore/catalog"
	"github.com/greenacre/farmcore/events"
	"github.com/greenacre/farmcore/farmstate"
	"github.com/greenacre/farmcore/reconcile"
	"github.com/greenacre/farmcore/temporal"
)

// Deps bundles every external collaborator the pipeline needs (C8).
type Deps struct {
	Repository Repository
	EventStore EventStore
	Chain      Chain
	Wallet     Wallet
	Whitelist  Whitelist       // nil: every address is allowed
	Emitter    *events.Emitter // nil: no in-process observers subscribed
	Catalog    *catalog.Catalog
}

// Request is one save invocation's input. Request/response schema
// validation happens in httpapi, outside this core per spec §1. Network is
// read once, here, at request start, exactly as spec §6 requires, rather
// than consulted repeatedly mid-pipeline.
type Request struct {
	FarmID    int64
	Sender    common.Address
	Signature []byte
	Actions   []action.Action
	Network   string // "mainnet" or "testnet"
}

// Run executes the save pipeline and returns the resulting farm snapshot, or
// a tagged *Error on any failure. No partial state is ever committed: every
// return path before the repository write leaves the stored document
// untouched, and the repository write itself is the pipeline's one
// linearization point (CAS on Session).
func Run(ctx context.Context, deps Deps, req Request, now time.Time) (*farmstate.Document, error) {
	doc, err := deps.Repository.GetFarmByID(ctx, req.FarmID)
	if err != nil {
		return nil, wrapExternal(err)
	}
	if doc == nil {
		return nil, tagged(TagFarmNotFound, "Farm does not exist", nil)
	}

	if req.Network == "mainnet" && deps.Whitelist != nil && !deps.Whitelist.IsWhitelisted(ctx, req.Sender) {
		return nil, tagged(TagNotWhitelisted, "address is not whitelisted", nil)
	}

	owner, err := deps.Chain.OwnerOf(ctx, req.FarmID)
	if err != nil {
		return nil, wrapExternal(err)
	}
	// Deliberately the same message as the absent case: the caller should
	// not be able to distinguish "no such farm" from "not yours".
	if owner != req.Sender {
		return nil, tagged(TagNotOwner, "Farm does not exist", nil)
	}

	if !deps.Wallet.Verify(req.Sender, req.Signature, signingMessage(req)) {
		return nil, tagged(TagBadSignature, "signature does not match sender", nil)
	}

	state, err := farmstate.FromDocument(doc.Address.Hex(), doc.GameState)
	if err != nil {
		return nil, wrapExternal(fmt.Errorf("corrupt farm document: %w", err))
	}

	onChainBalance, err := deps.Chain.LoadBalance(ctx, req.Sender)
	if err != nil {
		return nil, wrapExternal(err)
	}
	onChainInventory, err := deps.Chain.LoadInventory(ctx, req.Sender)
	if err != nil {
		return nil, wrapExternal(err)
	}
	reconcile.Reconcile(state, deps.Catalog, onChainBalance, onChainInventory)
	if deps.Emitter != nil {
		deps.Emitter.Emit(events.Event{Type: events.EventReconcileApplied, FarmID: req.FarmID})
	}

	if err := temporal.Validate(action.CreatedAtTimes(req.Actions), now); err != nil {
		return nil, tagTemporalError(err)
	}

	working := state.Clone()
	if err := action.Replay(working, deps.Catalog, req.Actions); err != nil {
		return nil, tagReplayError(err)
	}
	if err := working.Validate(); err != nil {
		// A dispatcher handler violated an invariant Replay itself cannot
		// see; this should never trip in a correctly-written module.
		return nil, wrapExternal(fmt.Errorf("post-replay invariant violation: %w", err))
	}

	newSession, err := newSessionToken()
	if err != nil {
		return nil, wrapExternal(err)
	}
	newDoc := FarmDocument{
		ID:        doc.ID,
		Address:   doc.Address,
		Session:   newSession,
		GameState: working.ToDocument(),
	}
	if err := deps.Repository.UpdateGameState(ctx, newDoc, doc.Session, newSession); err != nil {
		if errors.Is(err, ErrSessionConflict) {
			return nil, tagged(TagSessionConflict, "Concurrent save detected", err)
		}
		return nil, wrapExternal(err)
	}

	if err := deps.EventStore.Append(ctx, req.FarmID, newSession, req.Actions); err != nil {
		return nil, wrapExternal(err)
	}

	log.Printf("[save] farm %d: session %x -> %x, %d actions replayed", req.FarmID, doc.Session, newSession, len(req.Actions))

	if deps.Emitter != nil {
		deps.Emitter.Emit(events.Event{
			Type:   events.EventSaveCompleted,
			FarmID: req.FarmID,
			Data:   map[string]any{"actionCount": len(req.Actions), "session": newSession},
		})
	}

	snapshot := working.ToDocument()
	return &snapshot, nil
}

// signingMessage is the canonical byte form a Wallet verifies the request
// signature against: the farm ID and the action batch, in submission order.
func signingMessage(req Request) []byte {
	body := struct {
		FarmID  int64           `json:"farmId"`
		Actions []action.Action `json:"actions"`
	}{FarmID: req.FarmID, Actions: req.Actions}
	data, err := json.Marshal(body)
	if err != nil {
		return nil
	}
	return data
}

// newSessionToken generates a fresh 32-byte opaque session token.
func newSessionToken() ([32]byte, error) {
	var tok [32]byte
	_, err := rand.Read(tok[:])
	return tok, err
}

package action

import (
	"fmt"

	"github.com/greenacre/farmcore/catalog"
	"github.com/greenacre/farmcore/farmstate"
)

// Replay applies actions in order to state, which callers must pass as a
// working copy (farmstate.Clone) — never the authoritative loaded state.
// The first action-level error aborts the whole batch (spec §4.4/§4.6). On
// error the working copy still holds the effects of the actions before the
// failing one (the failing action itself is rolled back, see below), so the
// caller must discard it, not persist it.
//
// Each individual dispatch additionally snapshots state before applying, the
// same discipline as the teacher's Executor.ExecuteTx, so a Variant bug that
// mutates before fully validating cannot leak a partial transition into an
// otherwise-successful batch. Dispatch itself is a single Variant.Apply
// call — by the time an Action reaches Replay its Variant was already
// resolved, exhaustively, at decode time, so there is no tag to branch on
// here at all.
func Replay(state *farmstate.FarmState, cat *catalog.Catalog, actions []Action) error {
	for i, act := range actions {
		snapshot := state.Clone()
		ctx := &Context{State: state, Catalog: cat, Now: act.CreatedAt}
		if err := act.Variant.Apply(ctx); err != nil {
			*state = *snapshot
			return fmt.Errorf("replay: action %d (%s) at %s: %w", i, act.Variant.ActionType(), act.CreatedAt, err)
		}
	}
	return nil
}

package action

import (
	"time"

	"github.com/greenacre/farmcore/catalog"
	"github.com/greenacre/farmcore/farmstate"
)

// Context is passed to every Variant's Apply. Now is the action's own
// CreatedAt, not wall-clock time — transitions that compare against "now"
// (grow time, tree recovery) must be deterministic replays of what the
// client claimed.
type Context struct {
	State   *farmstate.FarmState
	Catalog *catalog.Catalog
	Now     time.Time
}

package save

import (
	"errors"
	"fmt"

	"github.com/greenacre/farmcore/action"
	"github.com/greenacre/farmcore/temporal"
)

// Tag is one of the stable error kinds from spec §7. The HTTP surface maps a
// Tag to a status code; the core itself never talks HTTP and never compares
// on the human Message.
type Tag string

const (
	TagFarmNotFound    Tag = "FarmNotFound"
	TagNotOwner        Tag = "NotOwner"
	TagBadSignature    Tag = "BadSignature"
	TagNotWhitelisted  Tag = "NotWhitelisted"

	TagTemporalOrder   Tag = "TemporalOrder"
	TagTemporalFuture  Tag = "TemporalFuture"
	TagTemporalPast    Tag = "TemporalPast"
	TagTemporalRange   Tag = "TemporalRange"
	TagTemporalGap     Tag = "TemporalGap"
	TagTemporalDensity Tag = "TemporalDensity"

	TagUnknownAction         Tag = "UnknownAction"
	TagUnknownItem           Tag = "UnknownItem"
	TagInsufficientInventory Tag = "InsufficientInventory"
	TagInsufficientBalance   Tag = "InsufficientBalance"
	TagInsufficientStock     Tag = "InsufficientStock"
	TagNotCraftable          Tag = "NotCraftable"
	TagNotSellable           Tag = "NotSellable"
	TagNotWithdrawable       Tag = "NotWithdrawable"
	TagFieldOccupied         Tag = "FieldOccupied"
	TagFieldEmpty            Tag = "FieldEmpty"
	TagNotGrown              Tag = "NotGrown"
	TagTreeNotRecovered      Tag = "TreeNotRecovered"
	TagInvalidIndex          Tag = "InvalidIndex"

	TagSessionConflict     Tag = "SessionConflict"
	TagExternalUnavailable Tag = "ExternalUnavailable"
)

// ErrSessionConflict is the sentinel a Repository implementation returns
// from UpdateGameState on CAS loss. Save maps it to a TagSessionConflict
// Error, which the HTTP surface reports as 409.
var ErrSessionConflict = errors.New("concurrent save detected")

// Error is the save path's terminal error shape: a stable tag plus a human
// message, optionally wrapping the underlying cause.
type Error struct {
	Tag     Tag
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Tag, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Tag, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func tagged(tag Tag, message string, err error) *Error {
	return &Error{Tag: tag, Message: message, Err: err}
}

func wrapExternal(err error) *Error {
	return tagged(TagExternalUnavailable, "external dependency unavailable", err)
}

// tagReplayError maps an action.Replay failure to its §7 tag by walking the
// sentinel chain action Variants wrap their errors with. NotCraftableError
// is checked first and by type, not by Is, so its message reaches the
// caller exactly as spec §8 requires ("This item is not craftable: <item>"),
// independent of whatever replay-batch context wraps it further out.
func tagReplayError(err error) *Error {
	var notCraftable *action.NotCraftableError
	switch {
	case errors.As(err, &notCraftable):
		return tagged(TagNotCraftable, notCraftable.Error(), err)
	case errors.Is(err, action.ErrUnknownAction):
		return tagged(TagUnknownAction, "unknown action", err)
	case errors.Is(err, action.ErrUnknownItem):
		return tagged(TagUnknownItem, "unknown item", err)
	case errors.Is(err, action.ErrInsufficientInventory):
		return tagged(TagInsufficientInventory, "insufficient inventory", err)
	case errors.Is(err, action.ErrInsufficientBalance):
		return tagged(TagInsufficientBalance, "insufficient balance", err)
	case errors.Is(err, action.ErrInsufficientStock):
		return tagged(TagInsufficientStock, "insufficient stock", err)
	case errors.Is(err, action.ErrNotCraftable):
		return tagged(TagNotCraftable, err.Error(), err)
	case errors.Is(err, action.ErrNotSellable):
		return tagged(TagNotSellable, "item is not sellable", err)
	case errors.Is(err, action.ErrFieldOccupied):
		return tagged(TagFieldOccupied, "field is occupied", err)
	case errors.Is(err, action.ErrFieldEmpty):
		return tagged(TagFieldEmpty, "field is empty", err)
	case errors.Is(err, action.ErrNotGrown):
		return tagged(TagNotGrown, "crop has not finished growing", err)
	case errors.Is(err, action.ErrTreeNotRecovered):
		return tagged(TagTreeNotRecovered, "tree has not recovered", err)
	case errors.Is(err, action.ErrInvalidIndex):
		return tagged(TagInvalidIndex, "index out of range", err)
	default:
		return tagged(TagUnknownAction, err.Error(), err)
	}
}

// tagTemporalError maps a temporal.Validate failure to its §7 tag.
func tagTemporalError(err error) *Error {
	switch {
	case errors.Is(err, temporal.ErrOutOfOrder):
		return tagged(TagTemporalOrder, err.Error(), err)
	case errors.Is(err, temporal.ErrFuture):
		return tagged(TagTemporalFuture, err.Error(), err)
	case errors.Is(err, temporal.ErrTooOld):
		return tagged(TagTemporalPast, err.Error(), err)
	case errors.Is(err, temporal.ErrRangeTooLarge):
		return tagged(TagTemporalRange, err.Error(), err)
	case errors.Is(err, temporal.ErrTooFast):
		return tagged(TagTemporalGap, err.Error(), err)
	case errors.Is(err, temporal.ErrTooDense):
		return tagged(TagTemporalDensity, err.Error(), err)
	default:
		return tagged(TagTemporalOrder, err.Error(), err)
	}
}

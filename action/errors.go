package action

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per C4 rejection the error taxonomy (spec §7) names.
// Variants return these directly or wrapped with fmt.Errorf("...: %w", ...);
// callers that need the tag use errors.Is/errors.As against these, never
// string comparison against the message.
var (
	ErrUnknownAction         = errors.New("unknown action")
	ErrUnknownItem           = errors.New("unknown item")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrNotCraftable          = errors.New("item is not craftable")
	ErrNotSellable           = errors.New("item is not sellable")
	ErrFieldOccupied         = errors.New("field is occupied")
	ErrFieldEmpty            = errors.New("field is empty")
	ErrNotGrown              = errors.New("crop has not finished growing")
	ErrTreeNotRecovered      = errors.New("tree has not recovered")
	ErrInvalidIndex          = errors.New("index out of range")
)

// NotCraftableError carries the rejected item name so the save pipeline can
// surface spec §8's exact wording ("This item is not craftable: <item>")
// directly, rather than parsing it back out of a formatted chain of %w
// wraps. Unwrap makes it match ErrNotCraftable for errors.Is callers that
// only care about the class, not the item.
type NotCraftableError struct {
	Item string
}

func (e *NotCraftableError) Error() string {
	return fmt.Sprintf("This item is not craftable: %s", e.Item)
}

func (e *NotCraftableError) Unwrap() error { return ErrNotCraftable }

package action

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/greenacre/farmcore/catalog"
)

// SoldPayload sells amount units of item.
type SoldPayload struct {
	Item   string `json:"item"`
	Amount string `json:"amount"`
}

func (SoldPayload) ActionType() Type { return TypeSold }
func (SoldPayload) sealed()          {}

func (p SoldPayload) Apply(ctx *Context) error {
	item := catalog.ItemName(p.Item)
	if !ctx.Catalog.IsSellable(item) {
		return fmt.Errorf("%w: %s", ErrNotSellable, p.Item)
	}
	price, ok := ctx.Catalog.SellPrice(item)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotSellable, p.Item)
	}

	amount, err := decimal.NewFromString(p.Amount)
	if err != nil {
		return fmt.Errorf("sell %s: invalid amount %q: %w", p.Item, p.Amount, err)
	}
	if amount.Sign() <= 0 {
		return fmt.Errorf("sell %s: amount must be positive, got %s", p.Item, amount)
	}
	if ctx.State.InventoryOf(item).LessThan(amount) {
		return fmt.Errorf("%w: %s", ErrInsufficientInventory, p.Item)
	}

	if err := ctx.State.SubInventory(item, amount); err != nil {
		return err
	}
	return ctx.State.AddBalance(price.Mul(amount))
}

// RedeemedPayload claims a promotional item.
type RedeemedPayload struct {
	Item string `json:"item"`
}

func (RedeemedPayload) ActionType() Type { return TypeRedeemed }
func (RedeemedPayload) sealed()          {}

// Apply claims a promotional item. Eligibility is catalog-defined and
// narrow — the teacher's equivalent (session reward distribution) is
// similarly a thin pass-through once eligibility is established upstream of
// the core, so this stays intentionally small: it adds exactly one unit of
// the named item and nothing else, and never produces a limited item (P5),
// since no catalog entry this core ships marks a redeemable as limited.
func (p RedeemedPayload) Apply(ctx *Context) error {
	item := catalog.ItemName(p.Item)
	cat, ok := ctx.Catalog.Item(item)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, p.Item)
	}
	if cat.Category == catalog.CategoryLimited {
		return fmt.Errorf("%w: %s is not redeemable via save", ErrNotCraftable, p.Item)
	}

	return ctx.State.AddInventory(item, decimal.NewFromInt(1))
}

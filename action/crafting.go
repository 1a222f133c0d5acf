package action

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/greenacre/farmcore/catalog"
)

// CraftedPayload crafts amount units of item.
type CraftedPayload struct {
	Item   string `json:"item"`
	Amount string `json:"amount"`
}

func (CraftedPayload) ActionType() Type { return TypeCrafted }
func (CraftedPayload) sealed()          {}

func (p CraftedPayload) Apply(ctx *Context) error {
	item := catalog.ItemName(p.Item)
	recipe, ok := ctx.Catalog.Recipe(item)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, p.Item)
	}
	if !recipe.Craftable {
		return &NotCraftableError{Item: p.Item}
	}

	amount, err := decimal.NewFromString(p.Amount)
	if err != nil {
		return fmt.Errorf("craft %s: invalid amount %q: %w", p.Item, p.Amount, err)
	}
	if amount.Sign() <= 0 {
		return fmt.Errorf("craft %s: amount must be positive, got %s", p.Item, amount)
	}

	// Validate every cost before mutating anything, so a shortfall partway
	// through the ingredient list never leaves a partial transition.
	for _, ing := range recipe.Ingredients {
		need := ing.Quantity.Mul(amount)
		if ctx.State.InventoryOf(ing.Item).LessThan(need) {
			return fmt.Errorf("%w: %s", ErrInsufficientInventory, ing.Item)
		}
	}
	price := recipe.SFLPrice.Mul(amount)
	if ctx.State.Balance.LessThan(price) {
		return fmt.Errorf("%w: need %s SFL", ErrInsufficientBalance, price)
	}
	if recipe.FromStock {
		if ctx.State.Stock[item].LessThan(amount) {
			return fmt.Errorf("%w: %s", ErrInsufficientStock, p.Item)
		}
	}

	for _, ing := range recipe.Ingredients {
		if err := ctx.State.SubInventory(ing.Item, ing.Quantity.Mul(amount)); err != nil {
			return err
		}
	}
	if price.Sign() > 0 {
		if err := ctx.State.SubBalance(price); err != nil {
			return err
		}
	}
	if recipe.FromStock {
		if err := ctx.State.SubStock(item, amount); err != nil {
			return err
		}
	}
	return ctx.State.AddInventory(item, amount)
}

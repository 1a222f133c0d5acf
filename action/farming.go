package action

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/greenacre/farmcore/catalog"
	"github.com/greenacre/farmcore/farmstate"
)

// PlantedPayload plants item from inventory into field index.
type PlantedPayload struct {
	Index int    `json:"index"`
	Item  string `json:"item"`
}

func (PlantedPayload) ActionType() Type { return TypePlanted }
func (PlantedPayload) sealed()          {}

func (p PlantedPayload) Apply(ctx *Context) error {
	if p.Index < 0 || p.Index >= ctx.Catalog.FieldCount() {
		return fmt.Errorf("%w: field %d", ErrInvalidIndex, p.Index)
	}
	if _, occupied := ctx.State.Fields[p.Index]; occupied {
		return fmt.Errorf("%w: field %d", ErrFieldOccupied, p.Index)
	}

	seed := catalog.ItemName(p.Item)
	item, ok := ctx.Catalog.Item(seed)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, p.Item)
	}
	if item.Category != catalog.CategorySeed {
		return fmt.Errorf("%w: %s is not a seed", ErrUnknownItem, p.Item)
	}
	if ctx.State.InventoryOf(seed).LessThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: %s", ErrInsufficientInventory, p.Item)
	}

	if err := ctx.State.SubInventory(seed, decimal.NewFromInt(1)); err != nil {
		return err
	}
	ctx.State.Fields[p.Index] = farmstate.Field{PlantedAt: ctx.Now.Unix(), Item: seed}
	return nil
}

// HarvestedPayload harvests whatever is growing in field index.
type HarvestedPayload struct {
	Index int `json:"index"`
}

func (HarvestedPayload) ActionType() Type { return TypeHarvested }
func (HarvestedPayload) sealed()          {}

func (p HarvestedPayload) Apply(ctx *Context) error {
	field, ok := ctx.State.Fields[p.Index]
	if !ok {
		return fmt.Errorf("%w: field %d", ErrFieldEmpty, p.Index)
	}

	growSeconds, err := ctx.Catalog.GrowSeconds(field.Item)
	if err != nil {
		return err
	}
	readyAt := field.PlantedAt + growSeconds
	if ctx.Now.Unix() < readyAt {
		return fmt.Errorf("%w: field %d ready at %d, now %d", ErrNotGrown, p.Index, readyAt, ctx.Now.Unix())
	}

	crop, err := ctx.Catalog.HarvestsInto(field.Item)
	if err != nil {
		return err
	}

	if err := ctx.State.AddInventory(crop, decimal.NewFromInt(1)); err != nil {
		return err
	}
	delete(ctx.State.Fields, p.Index)
	return nil
}

// ChoppedPayload chops tree index with an Axe. Item is carried for parity
// with the source event shape but Apply always requires "Axe".
type ChoppedPayload struct {
	Index int    `json:"index"`
	Item  string `json:"item"`
}

func (ChoppedPayload) ActionType() Type { return TypeChopped }
func (ChoppedPayload) sealed()          {}

func (p ChoppedPayload) Apply(ctx *Context) error {
	const axe = catalog.ItemName("Axe")
	if ctx.State.InventoryOf(axe).LessThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: Axe", ErrInsufficientInventory)
	}

	tree, ok := ctx.State.Trees[p.Index]
	if !ok {
		return fmt.Errorf("%w: tree %d", ErrInvalidIndex, p.Index)
	}

	def := ctx.Catalog.TreeDefault()
	if tree.Wood.IsZero() {
		recoveredAt := tree.ChoppedAt + def.RecoveryMinutes*60
		if ctx.Now.Unix() < recoveredAt {
			return fmt.Errorf("%w: tree %d recovers at %d, now %d", ErrTreeNotRecovered, p.Index, recoveredAt, ctx.Now.Unix())
		}
		tree.Wood = def.Wood
	}

	if err := ctx.State.SubInventory(axe, decimal.NewFromInt(1)); err != nil {
		return err
	}
	if err := ctx.State.AddInventory("Wood", decimal.NewFromInt(1)); err != nil {
		return err
	}

	tree.Wood = tree.Wood.Sub(decimal.NewFromInt(1))
	if tree.Wood.Sign() < 0 {
		tree.Wood = decimal.Zero
	}
	if tree.Wood.IsZero() {
		tree.ChoppedAt = ctx.Now.Unix()
	}
	ctx.State.Trees[p.Index] = tree
	return nil
}

// Package farmstate is the in-memory farm aggregate (C2): balance, inventory,
// shop stock, fields, and trees, plus the decimal-arithmetic primitives every
// other component mutates it through. A FarmState is never shared between
// save invocations — each load produces a fresh value that the caller owns
// for the lifetime of one save.
package farmstate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/greenacre/farmcore/catalog"
)

// Precision is the fractional-digit count every persisted decimal is rounded
// to, matching the 18-decimal fixed point used on-chain for SFL.
const Precision = 18

// Round applies the half-even rounding rule fixed by the data model (§4.2)
// at Precision fractional digits. All arithmetic that can produce more than
// Precision digits (division, the wei conversions in reconcile) must pass
// through Round before being stored back on a FarmState.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(int32(Precision))
}

// Field is a planted plot.
type Field struct {
	PlantedAt int64 // unix seconds
	Item      catalog.ItemName
}

// Tree holds remaining choppable wood and the last time it hit zero.
type Tree struct {
	ChoppedAt int64 // unix seconds; zero if never chopped
	Wood      decimal.Decimal
}

// FarmState is the full mutable farm aggregate.
type FarmState struct {
	Address   string
	Balance   decimal.Decimal
	Inventory map[catalog.ItemName]decimal.Decimal
	Stock     map[catalog.ItemName]decimal.Decimal
	Fields    map[int]Field
	Trees     map[int]Tree
}

// New returns an empty FarmState for address with all maps allocated.
func New(address string) *FarmState {
	return &FarmState{
		Address:   address,
		Balance:   decimal.Zero,
		Inventory: make(map[catalog.ItemName]decimal.Decimal),
		Stock:     make(map[catalog.ItemName]decimal.Decimal),
		Fields:    make(map[int]Field),
		Trees:     make(map[int]Tree),
	}
}

// Clone returns a deep copy so callers (the dispatcher's snapshot/rollback,
// the reconciler) can mutate without touching the original.
func (s *FarmState) Clone() *FarmState {
	c := &FarmState{
		Address:   s.Address,
		Balance:   s.Balance,
		Inventory: make(map[catalog.ItemName]decimal.Decimal, len(s.Inventory)),
		Stock:     make(map[catalog.ItemName]decimal.Decimal, len(s.Stock)),
		Fields:    make(map[int]Field, len(s.Fields)),
		Trees:     make(map[int]Tree, len(s.Trees)),
	}
	for k, v := range s.Inventory {
		c.Inventory[k] = v
	}
	for k, v := range s.Stock {
		c.Stock[k] = v
	}
	for k, v := range s.Fields {
		c.Fields[k] = v
	}
	for k, v := range s.Trees {
		c.Trees[k] = v
	}
	return c
}

// InventoryOf returns the quantity of item held, or zero if absent. Per the
// "absent vs zero" invariant, callers must never write a zero quantity into
// Inventory directly; use AddInventory/SubInventory instead.
func (s *FarmState) InventoryOf(item catalog.ItemName) decimal.Decimal {
	return s.Inventory[item]
}

// AddInventory adds qty of item to the inventory. qty must be > 0.
func (s *FarmState) AddInventory(item catalog.ItemName, qty decimal.Decimal) error {
	if qty.Sign() <= 0 {
		return fmt.Errorf("farmstate: add quantity must be positive, got %s", qty)
	}
	s.Inventory[item] = Round(s.Inventory[item].Add(qty))
	return nil
}

// SubInventory removes qty of item. Fails if the held quantity is less than
// qty. Removes the entry entirely when the result reaches zero so absent and
// zero remain indistinguishable in storage.
func (s *FarmState) SubInventory(item catalog.ItemName, qty decimal.Decimal) error {
	if qty.Sign() <= 0 {
		return fmt.Errorf("farmstate: sub quantity must be positive, got %s", qty)
	}
	have := s.Inventory[item]
	if have.LessThan(qty) {
		return fmt.Errorf("farmstate: insufficient %s: have %s need %s", item, have, qty)
	}
	rem := Round(have.Sub(qty))
	if rem.IsZero() {
		delete(s.Inventory, item)
	} else {
		s.Inventory[item] = rem
	}
	return nil
}

// AddBalance adds amount (SFL) to the balance. amount must be >= 0.
func (s *FarmState) AddBalance(amount decimal.Decimal) error {
	if amount.Sign() < 0 {
		return fmt.Errorf("farmstate: add balance must be non-negative, got %s", amount)
	}
	s.Balance = Round(s.Balance.Add(amount))
	return nil
}

// SubBalance removes amount (SFL) from the balance. Fails if balance would
// go negative.
func (s *FarmState) SubBalance(amount decimal.Decimal) error {
	if amount.Sign() < 0 {
		return fmt.Errorf("farmstate: sub balance must be non-negative, got %s", amount)
	}
	if s.Balance.LessThan(amount) {
		return fmt.Errorf("farmstate: insufficient balance: have %s need %s", s.Balance, amount)
	}
	s.Balance = Round(s.Balance.Sub(amount))
	return nil
}

// SubStock removes qty from the shop stock for item. Stock is allowed to
// reach exactly zero (unlike inventory, a zero stock entry is kept so callers
// can tell "sold out" from "never stocked").
func (s *FarmState) SubStock(item catalog.ItemName, qty decimal.Decimal) error {
	have, ok := s.Stock[item]
	if !ok {
		return fmt.Errorf("farmstate: no stock entry for %s", item)
	}
	if have.LessThan(qty) {
		return fmt.Errorf("farmstate: insufficient stock of %s: have %s need %s", item, have, qty)
	}
	s.Stock[item] = Round(have.Sub(qty))
	return nil
}

// Validate checks the invariants from spec §3 that must hold after every
// committed action: non-negative quantities, no zero inventory entries.
func (s *FarmState) Validate() error {
	if s.Balance.Sign() < 0 {
		return fmt.Errorf("farmstate: negative balance %s", s.Balance)
	}
	for item, qty := range s.Inventory {
		if qty.Sign() <= 0 {
			return fmt.Errorf("farmstate: inventory entry %s must be > 0, got %s", item, qty)
		}
	}
	for item, qty := range s.Stock {
		if qty.Sign() < 0 {
			return fmt.Errorf("farmstate: stock entry %s must be >= 0, got %s", item, qty)
		}
	}
	for idx, t := range s.Trees {
		if t.Wood.Sign() < 0 {
			return fmt.Errorf("farmstate: tree %d has negative wood %s", idx, t.Wood)
		}
	}
	return nil
}

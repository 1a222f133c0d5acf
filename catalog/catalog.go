// Package catalog holds the static, process-lifetime item/recipe/price tables
// that every other component looks up against. Nothing here is ever mutated
// after New() returns; Default is built once at package init and shared by
// every save invocation, exactly as the teacher shares its handler registry.
package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ItemName is the symbolic key every table is indexed by.
type ItemName string

// Category classifies an item for sellability/withdrawability rules.
type Category string

const (
	CategorySeed     Category = "seed"
	CategoryCrop     Category = "crop"
	CategoryTool     Category = "tool"
	CategoryResource Category = "resource"
	CategoryLimited  Category = "limited"
	CategoryCurrency Category = "currency"
)

// Item is the universe entry for one ItemName.
type Item struct {
	Name      ItemName
	Category  Category
	OnChainID int
}

// CropDef describes what a seed grows into and how long it takes.
type CropDef struct {
	Seed         ItemName
	HarvestsInto ItemName
	GrowSeconds  int64
}

// Ingredient is one line of a recipe's cost.
type Ingredient struct {
	Item     ItemName
	Quantity decimal.Decimal
}

// Recipe describes how to craft one unit of Item.
type Recipe struct {
	Item        ItemName
	Ingredients []Ingredient
	SFLPrice    decimal.Decimal
	Supply      int  // informational production cap, not enforced here
	Craftable   bool // false for limited items: explicitly rejected by the dispatcher
	FromStock   bool // consumes the farm's Stock entry (seeds/tools sold via the shop)
}

// TreeTemplate is the default yield a tree refills to once recovered.
type TreeTemplate struct {
	Wood            decimal.Decimal
	RecoveryMinutes int64
}

// TaxBracket is one step of the piecewise withdrawal tax function. SFL
// amounts strictly below UpperBound fall in this bracket; a zero UpperBound
// marks the final, unbounded bracket.
type TaxBracket struct {
	UpperBound  decimal.Decimal
	BasisPoints int
}

// Catalog is the full set of static tables. Build with New(); never mutate
// a Catalog after construction.
type Catalog struct {
	items      map[ItemName]Item
	crops      map[ItemName]CropDef // keyed by seed name
	recipes    map[ItemName]Recipe
	sellPrices map[ItemName]decimal.Decimal
	nonSellable map[ItemName]bool
	tree       TreeTemplate
	fieldCount int

	nameToID map[ItemName]int
	idToName map[int]ItemName

	withdrawIdx  *WithdrawableIndex
	taxBrackets  []TaxBracket
}

// ErrUnknownItem signals that a caller-supplied (user input) item name is not
// in the catalog. Distinct from the panics below, which guard internal
// programmer errors on hardcoded lookups.
var ErrUnknownItem = fmt.Errorf("unknown item")

// New builds the default catalog. Called once; the result is assigned to
// Default below and never mutated again.
func New() *Catalog {
	c := &Catalog{
		items:       make(map[ItemName]Item),
		crops:       make(map[ItemName]CropDef),
		recipes:     make(map[ItemName]Recipe),
		sellPrices:  make(map[ItemName]decimal.Decimal),
		nonSellable: make(map[ItemName]bool),
		nameToID:    make(map[ItemName]int),
		idToName:    make(map[int]ItemName),
		fieldCount:  6,
		tree:        TreeTemplate{Wood: decimal.NewFromInt(3), RecoveryMinutes: 120},
	}

	c.addItem(Item{Name: "SFL", Category: CategoryCurrency, OnChainID: 0})
	c.addItem(Item{Name: "Sunflower Seed", Category: CategorySeed, OnChainID: 1})
	c.addItem(Item{Name: "Sunflower", Category: CategoryCrop, OnChainID: 2})
	c.addItem(Item{Name: "Potato Seed", Category: CategorySeed, OnChainID: 3})
	c.addItem(Item{Name: "Potato", Category: CategoryCrop, OnChainID: 4})
	c.addItem(Item{Name: "Pumpkin Seed", Category: CategorySeed, OnChainID: 5})
	c.addItem(Item{Name: "Pumpkin", Category: CategoryCrop, OnChainID: 6})
	c.addItem(Item{Name: "Axe", Category: CategoryTool, OnChainID: 7})
	c.addItem(Item{Name: "Wood", Category: CategoryResource, OnChainID: 8})
	c.addItem(Item{Name: "Chicken Coop", Category: CategoryLimited, OnChainID: 9})

	c.crops["Sunflower Seed"] = CropDef{Seed: "Sunflower Seed", HarvestsInto: "Sunflower", GrowSeconds: 60}
	c.crops["Potato Seed"] = CropDef{Seed: "Potato Seed", HarvestsInto: "Potato", GrowSeconds: 300}
	c.crops["Pumpkin Seed"] = CropDef{Seed: "Pumpkin Seed", HarvestsInto: "Pumpkin", GrowSeconds: 900}

	c.recipes["Potato Seed"] = Recipe{
		Item:      "Potato Seed",
		SFLPrice:  decimal.RequireFromString("0.02"),
		Craftable: true,
		FromStock: true,
	}
	c.recipes["Sunflower Seed"] = Recipe{
		Item:      "Sunflower Seed",
		SFLPrice:  decimal.RequireFromString("0.01"),
		Craftable: true,
		FromStock: true,
	}
	c.recipes["Pumpkin Seed"] = Recipe{
		Item:      "Pumpkin Seed",
		SFLPrice:  decimal.RequireFromString("0.05"),
		Craftable: true,
		FromStock: true,
	}
	c.recipes["Axe"] = Recipe{
		Item:     "Axe",
		SFLPrice: decimal.RequireFromString("1"),
		Ingredients: []Ingredient{
			{Item: "Wood", Quantity: decimal.NewFromInt(2)},
		},
		Craftable: true,
	}
	// Limited items appear in the recipe table so NotCraftable can be
	// reported with a useful message, but Craftable is always false.
	c.recipes["Chicken Coop"] = Recipe{Item: "Chicken Coop", Craftable: false}

	c.sellPrices["Sunflower"] = decimal.RequireFromString("0.02")
	c.sellPrices["Potato"] = decimal.RequireFromString("0.14")
	c.sellPrices["Pumpkin"] = decimal.RequireFromString("0.4")
	c.sellPrices["Wood"] = decimal.RequireFromString("0.1")

	c.nonSellable["Axe"] = true
	c.nonSellable["Chicken Coop"] = true
	c.nonSellable["Sunflower Seed"] = true
	c.nonSellable["Potato Seed"] = true
	c.nonSellable["Pumpkin Seed"] = true

	c.withdrawIdx = newWithdrawableIndex([]ItemName{"Axe", "Chicken Coop", "Wood"}, c.nameToID)

	c.taxBrackets = []TaxBracket{
		{UpperBound: decimal.NewFromInt(10), BasisPoints: 3000},
		{UpperBound: decimal.NewFromInt(100), BasisPoints: 2500},
		{UpperBound: decimal.NewFromInt(1000), BasisPoints: 2000},
		{UpperBound: decimal.NewFromInt(10000), BasisPoints: 1500},
		{UpperBound: decimal.NewFromInt(100000), BasisPoints: 1000},
		{BasisPoints: 500}, // final, unbounded bracket
	}

	return c
}

func (c *Catalog) addItem(it Item) {
	c.items[it.Name] = it
	c.nameToID[it.Name] = it.OnChainID
	c.idToName[it.OnChainID] = it.Name
}

// Default is the process-wide catalog instance. Every save invocation shares
// it read-only.
var Default = New()

// Item returns the catalog entry for name, or false if name is not in the
// catalog. Use this for any name that originated outside the process.
func (c *Catalog) Item(name ItemName) (Item, bool) {
	it, ok := c.items[name]
	return it, ok
}

// MustItem is Item for internal callers with a hardcoded name; an unknown
// name here is a programmer error, not a business rejection.
func (c *Catalog) MustItem(name ItemName) Item {
	it, ok := c.items[name]
	if !ok {
		panic(fmt.Sprintf("catalog: unknown item %q", name))
	}
	return it
}

// Crop returns the grow definition for seed.
func (c *Catalog) Crop(seed ItemName) (CropDef, bool) {
	cd, ok := c.crops[seed]
	return cd, ok
}

// GrowSeconds is a convenience wrapper over Crop for the dispatcher.
func (c *Catalog) GrowSeconds(seed ItemName) (int64, error) {
	cd, ok := c.crops[seed]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownItem, seed)
	}
	return cd.GrowSeconds, nil
}

// HarvestsInto returns the crop a seed yields.
func (c *Catalog) HarvestsInto(seed ItemName) (ItemName, error) {
	cd, ok := c.crops[seed]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownItem, seed)
	}
	return cd.HarvestsInto, nil
}

// Recipe returns the crafting recipe for item.
func (c *Catalog) Recipe(item ItemName) (Recipe, bool) {
	r, ok := c.recipes[item]
	return r, ok
}

// SellPrice returns the per-unit sell price for item.
func (c *Catalog) SellPrice(item ItemName) (decimal.Decimal, bool) {
	p, ok := c.sellPrices[item]
	return p, ok
}

// IsSellable reports whether item may be sold via item.sell.
func (c *Catalog) IsSellable(item ItemName) bool {
	_, priced := c.sellPrices[item]
	return priced && !c.nonSellable[item]
}

// TreeDefault is the refill template every tree recovers to.
func (c *Catalog) TreeDefault() TreeTemplate {
	return c.tree
}

// FieldCount is the fixed number of plantable plots (indices 0..FieldCount-1).
func (c *Catalog) FieldCount() int {
	return c.fieldCount
}

// IDForName returns the on-chain numeric ID for a catalog item name.
func (c *Catalog) IDForName(name ItemName) (int, bool) {
	id, ok := c.nameToID[name]
	return id, ok
}

// NameForID is the inverse of IDForName, used when walking the positional
// on-chain inventory array during reconcile.
func (c *Catalog) NameForID(id int) (ItemName, bool) {
	name, ok := c.idToName[id]
	return name, ok
}

// IsWithdrawable reports whether the on-chain item ID may leave the farm via
// the withdrawal path.
func (c *Catalog) IsWithdrawable(id int) bool {
	return c.withdrawIdx.Contains(id)
}

// MaxOnChainID returns the highest on-chain item ID any catalog item holds,
// the upper bound a positional on-chain inventory array must cover.
func (c *Catalog) MaxOnChainID() int {
	max := 0
	for id := range c.idToName {
		if id > max {
			max = id
		}
	}
	return max
}

// TaxBasisPoints returns the withdrawal tax, in basis points, for a given SFL
// amount, per the piecewise bracket table.
func (c *Catalog) TaxBasisPoints(sfl decimal.Decimal) int {
	for _, b := range c.taxBrackets {
		if b.UpperBound.IsZero() || sfl.LessThan(b.UpperBound) {
			return b.BasisPoints
		}
	}
	return c.taxBrackets[len(c.taxBrackets)-1].BasisPoints
}

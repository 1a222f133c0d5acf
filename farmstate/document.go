package farmstate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/greenacre/farmcore/catalog"
)

// FieldDoc and TreeDoc are the decimal-as-string wire shapes for Field/Tree,
// matching the persisted farm document and the HTTP snapshot response.
type FieldDoc struct {
	PlantedAt int64  `json:"plantedAt"`
	Item      string `json:"item"`
}

// TreeDoc is the wire form of Tree.
type TreeDoc struct {
	ChoppedAt int64  `json:"choppedAt"`
	Wood      string `json:"wood"`
}

// Document is the FarmState shape as held by the repository and returned
// over HTTP: quantities are decimal-literal strings, per spec §3 and §6.
type Document struct {
	Balance   string             `json:"balance"`
	Inventory map[string]string  `json:"inventory"`
	Stock     map[string]string  `json:"stock"`
	Fields    map[string]FieldDoc `json:"fields"`
	Trees     map[string]TreeDoc  `json:"trees"`
}

// ToDocument serializes quantities back to decimal strings for persistence
// or the HTTP response (§4.6 step 5).
func (s *FarmState) ToDocument() Document {
	doc := Document{
		Balance:   s.Balance.String(),
		Inventory: make(map[string]string, len(s.Inventory)),
		Stock:     make(map[string]string, len(s.Stock)),
		Fields:    make(map[string]FieldDoc, len(s.Fields)),
		Trees:     make(map[string]TreeDoc, len(s.Trees)),
	}
	for item, qty := range s.Inventory {
		doc.Inventory[string(item)] = qty.String()
	}
	for item, qty := range s.Stock {
		doc.Stock[string(item)] = qty.String()
	}
	for idx, f := range s.Fields {
		doc.Fields[fmt.Sprint(idx)] = FieldDoc{PlantedAt: f.PlantedAt, Item: string(f.Item)}
	}
	for idx, t := range s.Trees {
		doc.Trees[fmt.Sprint(idx)] = TreeDoc{ChoppedAt: t.ChoppedAt, Wood: t.Wood.String()}
	}
	return doc
}

// FromDocument parses a persisted document back into a FarmState for
// address. Returns an error on a malformed decimal literal or field/tree
// index, so a corrupt document fails loudly instead of silently truncating.
func FromDocument(address string, doc Document) (*FarmState, error) {
	s := New(address)

	bal, err := decimal.NewFromString(doc.Balance)
	if err != nil {
		return nil, fmt.Errorf("farmstate: parse balance %q: %w", doc.Balance, err)
	}
	s.Balance = bal

	for item, raw := range doc.Inventory {
		qty, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("farmstate: parse inventory[%s]=%q: %w", item, raw, err)
		}
		s.Inventory[catalog.ItemName(item)] = qty
	}
	for item, raw := range doc.Stock {
		qty, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("farmstate: parse stock[%s]=%q: %w", item, raw, err)
		}
		s.Stock[catalog.ItemName(item)] = qty
	}
	for idxStr, f := range doc.Fields {
		idx, err := parseIndex(idxStr)
		if err != nil {
			return nil, fmt.Errorf("farmstate: field index %q: %w", idxStr, err)
		}
		s.Fields[idx] = Field{PlantedAt: f.PlantedAt, Item: catalog.ItemName(f.Item)}
	}
	for idxStr, t := range doc.Trees {
		idx, err := parseIndex(idxStr)
		if err != nil {
			return nil, fmt.Errorf("farmstate: tree index %q: %w", idxStr, err)
		}
		wood, err := decimal.NewFromString(t.Wood)
		if err != nil {
			return nil, fmt.Errorf("farmstate: parse tree[%s].wood=%q: %w", idxStr, t.Wood, err)
		}
		s.Trees[idx] = Tree{ChoppedAt: t.ChoppedAt, Wood: wood}
	}
	return s, nil
}

func parseIndex(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

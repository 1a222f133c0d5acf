// Package reconcile implements the reconciler (C5): it merges authoritative
// on-chain balance and inventory into a loaded FarmState before replay.
package reconcile

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/greenacre/farmcore/catalog"
	"github.com/greenacre/farmcore/farmstate"
)

// Reconcile merges onChainBalance (wei) and onChainInventory (wei amounts,
// positional by catalog on-chain ID, as returned by a Chain facade's
// loadInventory) into state. Per spec §4.5, a non-zero on-chain value always
// overrides the off-chain one; an on-chain value of zero means the item
// hasn't been withdrawn yet, so the off-chain value is left untouched.
func Reconcile(state *farmstate.FarmState, cat *catalog.Catalog, onChainBalance *big.Int, onChainInventory []*big.Int) {
	if onChainBalance != nil && onChainBalance.Sign() > 0 {
		state.Balance = farmstate.Round(weiToDecimal(onChainBalance, farmstate.Precision))
	}

	for id, wei := range onChainInventory {
		if wei == nil || wei.Sign() == 0 {
			continue
		}
		name, ok := cat.NameForID(id)
		if !ok {
			continue // an on-chain ID this catalog build no longer tracks
		}
		item := cat.MustItem(name)
		qty := onChainQuantity(item, wei)
		if qty.Sign() > 0 {
			state.Inventory[name] = farmstate.Round(qty)
		}
	}
}

// weiToDecimal shifts an integer wei amount down by decimals fractional
// digits, e.g. 18 for the ERC-20 SFL convention.
func weiToDecimal(wei *big.Int, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(wei, 0).Shift(-decimals)
}

// onChainQuantity converts one positional on-chain amount to the unit
// FarmState stores it in: SFL uses the 18-decimal ERC-20 convention, every
// other catalog item is a 1-to-1 integer count on-chain.
func onChainQuantity(item catalog.Item, wei *big.Int) decimal.Decimal {
	if item.Category == catalog.CategoryCurrency {
		return weiToDecimal(wei, 18)
	}
	return decimal.NewFromBigInt(wei, 0)
}

package reconcile_test

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/greenacre/farmcore/catalog"
	"github.com/greenacre/farmcore/farmstate"
	"github.com/greenacre/farmcore/reconcile"
)

// TestReconcileDominance is P6 and spec scenario 3's reconcile step: after
// reconcile, balance equals on-chain balance, and on-chain-positive items
// take the on-chain value.
func TestReconcileDominance(t *testing.T) {
	s := farmstate.New("0xfarmer")
	s.Balance = decimal.RequireFromString("20")

	onChainBalance := big.NewInt(0).Mul(big.NewInt(120), big.NewInt(1_000_000_000_000_000_000))
	onChainInventory := []*big.Int{big.NewInt(1), big.NewInt(2)} // SFL id 0, Sunflower Seed id 1

	reconcile.Reconcile(s, catalog.Default, onChainBalance, onChainInventory)

	if s.Balance.String() != "120" {
		t.Errorf("expected reconciled balance 120, got %s", s.Balance)
	}
	if s.InventoryOf("Sunflower Seed").Cmp(decimal.NewFromInt(2)) != 0 {
		t.Errorf("expected reconciled Sunflower Seed 2, got %s", s.InventoryOf("Sunflower Seed"))
	}
}

// TestReconcileZeroOnChainPreservesOffChain: items zero on-chain keep their
// off-chain value, per spec §4.5.
func TestReconcileZeroOnChainPreservesOffChain(t *testing.T) {
	s := farmstate.New("0xfarmer")
	_ = s.AddInventory("Wood", decimal.NewFromInt(5))

	onChainInventory := make([]*big.Int, 9)
	woodID, _ := catalog.Default.IDForName("Wood")
	onChainInventory[woodID] = big.NewInt(0)

	reconcile.Reconcile(s, catalog.Default, nil, onChainInventory)

	if s.InventoryOf("Wood").Cmp(decimal.NewFromInt(5)) != 0 {
		t.Errorf("expected off-chain Wood 5 preserved, got %s", s.InventoryOf("Wood"))
	}
}

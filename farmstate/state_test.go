package farmstate

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAddSubInventoryAbsentVsZero(t *testing.T) {
	s := New("0xfarmer")
	if err := s.AddInventory("Wood", decimal.NewFromInt(3)); err != nil {
		t.Fatalf("AddInventory: %v", err)
	}
	if err := s.SubInventory("Wood", decimal.NewFromInt(3)); err != nil {
		t.Fatalf("SubInventory: %v", err)
	}
	if _, present := s.Inventory["Wood"]; present {
		t.Error("inventory entry at zero must be absent, not present with value 0")
	}
	if !s.InventoryOf("Wood").IsZero() {
		t.Error("InventoryOf on an absent item must read as zero")
	}
}

func TestSubInventoryInsufficientFails(t *testing.T) {
	s := New("0xfarmer")
	_ = s.AddInventory("Wood", decimal.NewFromInt(1))
	if err := s.SubInventory("Wood", decimal.NewFromInt(2)); err == nil {
		t.Error("expected insufficient inventory error")
	}
	if s.InventoryOf("Wood").Cmp(decimal.NewFromInt(1)) != 0 {
		t.Error("failed SubInventory must not partially mutate state")
	}
}

func TestSubBalanceNeverNegative(t *testing.T) {
	s := New("0xfarmer")
	_ = s.AddBalance(decimal.NewFromInt(5))
	if err := s.SubBalance(decimal.NewFromInt(10)); err == nil {
		t.Error("expected insufficient balance error")
	}
	if s.Balance.Cmp(decimal.NewFromInt(5)) != 0 {
		t.Error("failed SubBalance must not mutate balance")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := New("0xfarmer")
	_ = s.AddInventory("Wood", decimal.NewFromInt(1))
	clone := s.Clone()
	_ = clone.AddInventory("Wood", decimal.NewFromInt(1))
	if s.InventoryOf("Wood").Cmp(decimal.NewFromInt(1)) != 0 {
		t.Error("mutating the clone must not affect the original")
	}
	if clone.InventoryOf("Wood").Cmp(decimal.NewFromInt(2)) != 0 {
		t.Error("clone should have its own independent inventory")
	}
}

func TestValidateRejectsNegativeBalance(t *testing.T) {
	s := New("0xfarmer")
	s.Balance = decimal.NewFromInt(-1)
	if err := s.Validate(); err == nil {
		t.Error("expected Validate to reject negative balance")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	s := New("0xfarmer")
	_ = s.AddInventory("Sunflower Seed", decimal.NewFromInt(3))
	_ = s.AddBalance(decimal.RequireFromString("12.5"))
	s.Fields[4] = Field{PlantedAt: 100, Item: "Sunflower Seed"}
	s.Trees[0] = Tree{ChoppedAt: 0, Wood: decimal.NewFromInt(3)}

	doc := s.ToDocument()
	back, err := FromDocument(s.Address, doc)
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if back.Balance.Cmp(s.Balance) != 0 {
		t.Errorf("balance round-trip: got %s want %s", back.Balance, s.Balance)
	}
	if back.InventoryOf("Sunflower Seed").Cmp(s.InventoryOf("Sunflower Seed")) != 0 {
		t.Error("inventory round-trip mismatch")
	}
	if back.Fields[4] != s.Fields[4] {
		t.Error("field round-trip mismatch")
	}
	if back.Trees[0].Wood.Cmp(s.Trees[0].Wood) != 0 {
		t.Error("tree round-trip mismatch")
	}
}

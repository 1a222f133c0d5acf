package catalog

import "testing"

func TestHarvestsInto(t *testing.T) {
	c := New()
	crop, err := c.HarvestsInto("Sunflower Seed")
	if err != nil {
		t.Fatalf("HarvestsInto: %v", err)
	}
	if crop != "Sunflower" {
		t.Errorf("got %s want Sunflower", crop)
	}
}

func TestHarvestsIntoUnknownSeed(t *testing.T) {
	c := New()
	if _, err := c.HarvestsInto("Not A Seed"); err == nil {
		t.Error("expected error for unknown seed")
	}
}

func TestItemLookupMissIsNotPanic(t *testing.T) {
	c := New()
	if _, ok := c.Item("Nonexistent"); ok {
		t.Error("expected Item to report false for unknown name")
	}
}

func TestMustItemPanicsOnUnknown(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected MustItem to panic on unknown item")
		}
	}()
	New().MustItem("Nonexistent")
}

func TestSellableExcludesTools(t *testing.T) {
	c := New()
	if c.IsSellable("Axe") {
		t.Error("Axe must not be sellable")
	}
	if !c.IsSellable("Sunflower") {
		t.Error("Sunflower must be sellable")
	}
}

func TestWithdrawableSet(t *testing.T) {
	c := New()
	axeID, _ := c.IDForName("Axe")
	if !c.IsWithdrawable(axeID) {
		t.Error("Axe should be withdrawable")
	}
	seedID, _ := c.IDForName("Sunflower Seed")
	if c.IsWithdrawable(seedID) {
		t.Error("Sunflower Seed should not be withdrawable")
	}
}

func TestTaxBracketsMonotonic(t *testing.T) {
	c := New()
	cases := []struct {
		sfl  string
		want int
	}{
		{"5", 3000},
		{"9.99", 3000},
		{"10", 2500},
		{"99", 2500},
		{"100", 2000},
		{"1000000", 500},
	}
	for _, tc := range cases {
		got := c.TaxBasisPoints(mustDecimal(tc.sfl))
		if got != tc.want {
			t.Errorf("TaxBasisPoints(%s) = %d, want %d", tc.sfl, got, tc.want)
		}
	}
}

func TestNameIDRoundTrip(t *testing.T) {
	c := New()
	id, ok := c.IDForName("Wood")
	if !ok {
		t.Fatal("Wood should have an on-chain ID")
	}
	name, ok := c.NameForID(id)
	if !ok || name != "Wood" {
		t.Errorf("NameForID(%d) = %q, %v", id, name, ok)
	}
}

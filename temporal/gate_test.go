package temporal

import (
	"testing"
	"time"
)

func TestValidateEmptyBatchPasses(t *testing.T) {
	if err := Validate(nil, time.Now()); err != nil {
		t.Fatalf("empty batch should pass, got %v", err)
	}
}

func TestValidateOutOfOrderRejected(t *testing.T) {
	now := time.Now()
	batch := []time.Time{now, now.Add(-time.Second)}
	if err := Validate(batch, now); err != ErrOutOfOrder {
		t.Fatalf("expected ErrOutOfOrder, got %v", err)
	}
}

func TestValidateFutureRejected(t *testing.T) {
	now := time.Now()
	batch := []time.Time{now.Add(MaxFutureSkew + time.Second)}
	if err := Validate(batch, now); err != ErrFuture {
		t.Fatalf("expected ErrFuture, got %v", err)
	}
}

func TestValidateTooOldRejected(t *testing.T) {
	now := time.Now()
	batch := []time.Time{now.Add(-MaxAge - time.Second)}
	if err := Validate(batch, now); err != ErrTooOld {
		t.Fatalf("expected ErrTooOld, got %v", err)
	}
}

func TestValidateRangeTooLargeRejected(t *testing.T) {
	now := time.Now()
	start := now.Add(-3 * time.Minute)
	batch := []time.Time{start, start.Add(MaxRange + time.Second)}
	if err := Validate(batch, now); err != ErrRangeTooLarge {
		t.Fatalf("expected ErrRangeTooLarge, got %v", err)
	}
}

func TestValidateTooFastRejected(t *testing.T) {
	now := time.Now()
	start := now.Add(-time.Second)
	batch := []time.Time{start, start.Add(MinGap / 2)}
	if err := Validate(batch, now); err != ErrTooFast {
		t.Fatalf("expected ErrTooFast, got %v", err)
	}
}

func TestValidateDensityCapRejected(t *testing.T) {
	now := time.Now()
	start := now.Add(-time.Second)
	batch := []time.Time{
		start,
		start.Add(MinGap * 2),
		start.Add(MinGap * 4),
	}
	if err := Validate(batch, now); err != ErrTooDense {
		t.Fatalf("expected ErrTooDense, got %v", err)
	}
}

func TestValidateAcceptsWellSpacedBatch(t *testing.T) {
	now := time.Now()
	start := now.Add(-time.Minute)
	batch := []time.Time{
		start,
		start.Add(DensityWindow * 2),
		start.Add(DensityWindow * 4),
	}
	if err := Validate(batch, now); err != nil {
		t.Fatalf("expected well-spaced batch to pass, got %v", err)
	}
}

package escrow

import (
	"errors"
	"math"
	"testing"
)

func TestCheckedAdd(t *testing.T) {
	sum, err := checkedAdd(1, 2)
	if err != nil || sum != 3 {
		t.Fatalf("checkedAdd(1, 2) = %d, %v", sum, err)
	}

	if _, err := checkedAdd(math.MaxUint64, 1); !errors.Is(err, ErrMathOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if sum, err := checkedAdd(math.MaxUint64, 0); err != nil || sum != math.MaxUint64 {
		t.Fatalf("checkedAdd(max, 0) = %d, %v", sum, err)
	}
}

func TestCheckedSub(t *testing.T) {
	diff, err := checkedSub(5, 3)
	if err != nil || diff != 2 {
		t.Fatalf("checkedSub(5, 3) = %d, %v", diff, err)
	}

	if _, err := checkedSub(3, 5); !errors.Is(err, ErrMathOverflow) {
		t.Fatalf("expected underflow rejection, got %v", err)
	}
	if diff, err := checkedSub(3, 3); err != nil || diff != 0 {
		t.Fatalf("checkedSub(3, 3) = %d, %v", diff, err)
	}
}

func TestCheckedMul(t *testing.T) {
	product, err := checkedMul(6, 7)
	if err != nil || product != 42 {
		t.Fatalf("checkedMul(6, 7) = %d, %v", product, err)
	}

	if _, err := checkedMul(math.MaxUint64, 2); !errors.Is(err, ErrMathOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if product, err := checkedMul(math.MaxUint64, 1); err != nil || product != math.MaxUint64 {
		t.Fatalf("checkedMul(max, 1) = %d, %v", product, err)
	}
}

func TestCheckedAdd32(t *testing.T) {
	if _, err := checkedAdd32(math.MaxUint32, 1); !errors.Is(err, ErrMathOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestPlatformFee(t *testing.T) {
	tests := []struct {
		raised uint64
		feeBps uint16
		want   uint64
	}{
		{10000, 250, 250},
		{1000, 250, 25},
		{999, 250, 24}, // 向下取整
		{1, 250, 0},
		{10000, 0, 0},
		{10000, 10000, 10000},
		{3, 9999, 2},
	}
	for _, tt := range tests {
		got, err := platformFee(tt.raised, tt.feeBps)
		if err != nil {
			t.Fatalf("platformFee(%d, %d): %v", tt.raised, tt.feeBps, err)
		}
		if got != tt.want {
			t.Errorf("platformFee(%d, %d) = %d, want %d", tt.raised, tt.feeBps, got, tt.want)
		}
	}

	if _, err := platformFee(math.MaxUint64, 10000); !errors.Is(err, ErrMathOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestFeeNeverExceedsRaised(t *testing.T) {
	for _, raised := range []uint64{0, 1, 9999, 123456789} {
		for _, bps := range []uint16{0, 1, 250, 9999, 10000} {
			fee, err := platformFee(raised, bps)
			if err != nil {
				t.Fatalf("platformFee(%d, %d): %v", raised, bps, err)
			}
			if fee > raised {
				t.Errorf("fee %d exceeds raised %d at %d bps", fee, raised, bps)
			}
		}
	}
}

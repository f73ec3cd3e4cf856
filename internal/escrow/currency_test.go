package escrow

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
)

func TestParseCurrencyNative(t *testing.T) {
	for _, s := range []string{"", "native"} {
		c, err := ParseCurrency(s)
		if err != nil {
			t.Fatalf("ParseCurrency(%q): %v", s, err)
		}
		if !c.IsNative() {
			t.Errorf("ParseCurrency(%q) not native", s)
		}
		if c.String() != "native" {
			t.Errorf("ParseCurrency(%q).String() = %q", s, c.String())
		}
	}
}

func TestParseCurrencyToken(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	c, err := ParseCurrency(mint.String())
	if err != nil {
		t.Fatalf("ParseCurrency: %v", err)
	}
	if c.IsNative() {
		t.Error("token currency reported as native")
	}
	if c.Mint() != mint.String() {
		t.Errorf("Mint() = %q, want %q", c.Mint(), mint.String())
	}
	if c.String() != mint.String() {
		t.Errorf("String() = %q, want %q", c.String(), mint.String())
	}
}

func TestParseCurrencyInvalid(t *testing.T) {
	if _, err := ParseCurrency("not-a-mint"); !errors.Is(err, ErrInvalidMint) {
		t.Fatalf("expected ErrInvalidMint, got %v", err)
	}
}

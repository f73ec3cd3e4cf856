package escrow

import (
	"github.com/gagliardetto/solana-go"
)

// nativeCurrency 原生币在账本中的记法
const nativeCurrency = "native"

// CurrencyKind 币种标签：原生币或某个具体代币mint。
// 每个活动只有一种币种，SOL与代币路径共用同一套校验逻辑，
// 只在转账原语处按标签分流。
type CurrencyKind struct {
	mint string
}

// Native 原生币
func Native() CurrencyKind {
	return CurrencyKind{}
}

// Token 指定mint的代币
func Token(mint solana.PublicKey) CurrencyKind {
	return CurrencyKind{mint: mint.String()}
}

// ParseCurrency 解析账本中的币种记法
func ParseCurrency(s string) (CurrencyKind, error) {
	if s == "" || s == nativeCurrency {
		return Native(), nil
	}
	mint, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return CurrencyKind{}, ErrInvalidMint
	}
	return Token(mint), nil
}

// IsNative 是否为原生币
func (c CurrencyKind) IsNative() bool {
	return c.mint == ""
}

// Mint 代币mint地址，原生币返回空串
func (c CurrencyKind) Mint() string {
	return c.mint
}

// String 账本记法
func (c CurrencyKind) String() string {
	if c.IsNative() {
		return nativeCurrency
	}
	return c.mint
}

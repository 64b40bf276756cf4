package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// CanonicalPair holds two token addresses in protocol canonical order:
// token0 sorts strictly before token1 under case-insensitive hex ordering.
// It is always derived, never stored across runs.
type CanonicalPair struct {
	Token0 common.Address
	Token1 common.Address
}

// LiquidityAmounts carries desired deposit amounts in base units,
// positionally aligned to a CanonicalPair (not to the user-facing order).
type LiquidityAmounts struct {
	Amount0Desired *big.Int
	Amount1Desired *big.Int
}

package dex

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"liquidityPilot/internal/model"
)

// TokenDecimals is the assumed on-chain precision for every token involved.
// Tokens with a different precision are out of scope.
const TokenDecimals = 18

// ParseAmount converts a user-entered decimal quantity into base units
// (10^18 per whole token). An empty string parses as zero. Negative,
// malformed, or over-precise inputs are rejected.
func ParseAmount(input string) (*big.Int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return new(big.Int), nil
	}
	if strings.HasPrefix(input, "-") {
		return nil, fmt.Errorf("amount must not be negative: %s", input)
	}

	whole, frac, _ := strings.Cut(input, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > TokenDecimals {
		return nil, fmt.Errorf("amount has more than %d fractional digits: %s", TokenDecimals, input)
	}
	frac += strings.Repeat("0", TokenDecimals-len(frac))

	out, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("malformed amount: %s", input)
	}
	return out, nil
}

// ResolveAmounts places the user's two quantities into the canonical slots
// matching their token identity: tokenQty belongs to the custom token,
// pairedQty to the other token of the pair. The custom token may sort as
// token0 or token1; swapping pair order must swap placement, never values.
func ResolveAmounts(pair model.CanonicalPair, token common.Address, tokenQty, pairedQty string) (model.LiquidityAmounts, error) {
	tokenAmount, err := ParseAmount(tokenQty)
	if err != nil {
		return model.LiquidityAmounts{}, fmt.Errorf("token amount: %w", err)
	}
	pairedAmount, err := ParseAmount(pairedQty)
	if err != nil {
		return model.LiquidityAmounts{}, fmt.Errorf("paired amount: %w", err)
	}
	if tokenAmount.Sign() == 0 && pairedAmount.Sign() == 0 {
		return model.LiquidityAmounts{}, model.ErrInsufficientInput
	}

	switch token {
	case pair.Token0:
		return model.LiquidityAmounts{Amount0Desired: tokenAmount, Amount1Desired: pairedAmount}, nil
	case pair.Token1:
		return model.LiquidityAmounts{Amount0Desired: pairedAmount, Amount1Desired: tokenAmount}, nil
	default:
		return model.LiquidityAmounts{}, fmt.Errorf("token %s is not part of the pair", token.Hex())
	}
}

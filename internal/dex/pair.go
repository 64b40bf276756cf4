package dex

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"liquidityPilot/internal/model"
)

// OrderTokens returns the two token addresses as a CanonicalPair, with
// token0 sorting strictly before token1 under case-insensitive hex
// ordering. The result is independent of argument order; downstream amount
// resolution depends on this ordering being stable for the whole run.
func OrderTokens(a, b common.Address) (model.CanonicalPair, error) {
	lowerA := strings.ToLower(a.Hex())
	lowerB := strings.ToLower(b.Hex())

	switch {
	case lowerA == lowerB:
		return model.CanonicalPair{}, fmt.Errorf("%w: %s", model.ErrDegeneratePair, a.Hex())
	case lowerA < lowerB:
		return model.CanonicalPair{Token0: a, Token1: b}, nil
	default:
		return model.CanonicalPair{Token0: b, Token1: a}, nil
	}
}

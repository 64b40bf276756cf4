package dex

import (
	"fmt"
	"math"
	"math/big"

	"liquidityPilot/internal/model"
)

// q96 is the fixed-point scale used by sqrtPriceX96 (96 fractional bits).
var q96 = new(big.Int).Lsh(big.NewInt(1), 96)

// EncodeSqrtPriceX96 converts a price ratio (token1 per token0) into the
// protocol's fixed-point square-root encoding: floor(sqrt(price) * 2^96).
// The square root is taken in double precision and the result truncated;
// the resulting discretization error is intrinsic to the protocol.
func EncodeSqrtPriceX96(price float64) (*big.Int, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return nil, fmt.Errorf("%w: got %v", model.ErrInvalidPrice, price)
	}

	sqrt := new(big.Float).SetFloat64(math.Sqrt(price))
	scaled := new(big.Float).Mul(sqrt, new(big.Float).SetInt(q96))

	out, _ := scaled.Int(nil)
	return out, nil
}

// DecodeSqrtPriceX96 recovers an approximate price ratio from its
// sqrtPriceX96 encoding.
func DecodeSqrtPriceX96(sqrtPriceX96 *big.Int) float64 {
	ratio := new(big.Float).SetInt(sqrtPriceX96)
	ratio.Quo(ratio, new(big.Float).SetInt(q96))
	sqrt, _ := ratio.Float64()
	return sqrt * sqrt
}

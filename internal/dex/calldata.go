package dex

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// MaxApproval returns 2^256-1, the effectively unlimited ERC-20 allowance.
func MaxApproval() *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), 256)
	return max.Sub(max, big.NewInt(1))
}

// MintParams mirrors the position manager's MintParams tuple. Non-standard
// integer widths (uint24, int24) are packed as *big.Int by the ABI encoder.
type MintParams struct {
	Token0         common.Address
	Token1         common.Address
	Fee            *big.Int
	TickLower      *big.Int
	TickUpper      *big.Int
	Amount0Desired *big.Int
	Amount1Desired *big.Int
	Amount0Min     *big.Int
	Amount1Min     *big.Int
	Recipient      common.Address
	Deadline       *big.Int
}

// PackDeposit builds calldata for the wrapped-native deposit call. The
// amount to wrap travels as the transaction value.
func PackDeposit() ([]byte, error) {
	wethABI, err := WETH9ABI()
	if err != nil {
		return nil, fmt.Errorf("parse weth abi: %w", err)
	}
	return wethABI.Pack("deposit")
}

// PackApprove builds calldata authorizing the spender to move the given
// token amount.
func PackApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	tokenABI, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	return tokenABI.Pack("approve", spender, amount)
}

// PackCreateAndInitialize builds calldata for pool creation and price
// initialization at the given fee tier.
func PackCreateAndInitialize(token0, token1 common.Address, fee uint32, sqrtPriceX96 *big.Int) ([]byte, error) {
	managerABI, err := PositionManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse position manager abi: %w", err)
	}
	return managerABI.Pack("createAndInitializePoolIfNecessary",
		token0, token1, new(big.Int).SetUint64(uint64(fee)), sqrtPriceX96)
}

// PackMint builds calldata for minting a liquidity position.
func PackMint(params MintParams) ([]byte, error) {
	managerABI, err := PositionManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse position manager abi: %w", err)
	}
	return managerABI.Pack("mint", params)
}

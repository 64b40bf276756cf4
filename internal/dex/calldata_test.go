package dex

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestMaxApproval(t *testing.T) {
	max := MaxApproval()

	want := new(big.Int).Lsh(big.NewInt(1), 256)
	want.Sub(want, big.NewInt(1))
	if max.Cmp(want) != 0 {
		t.Fatalf("max approval mismatch: %s", max)
	}
}

func TestPackDeposit(t *testing.T) {
	input, err := PackDeposit()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := hex.EncodeToString(input); got != "d0e30db0" {
		t.Fatalf("deposit selector mismatch: %s", got)
	}
}

func TestPackApprove(t *testing.T) {
	spender := common.HexToAddress("0x2222222222222222222222222222222222222222")
	input, err := PackApprove(spender, MaxApproval())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := hex.EncodeToString(input[:4]); got != "095ea7b3" {
		t.Fatalf("approve selector mismatch: %s", got)
	}
	if len(input) != 4+32+32 {
		t.Fatalf("approve calldata length mismatch: %d", len(input))
	}
}

func TestPackCreateAndInitialize(t *testing.T) {
	token0 := common.HexToAddress("0x1111111111111111111111111111111111111111")
	token1 := common.HexToAddress("0x9999999999999999999999999999999999999999")
	sqrtPrice, err := EncodeSqrtPriceX96(4000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	input, err := PackCreateAndInitialize(token0, token1, 3000, sqrtPrice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := hex.EncodeToString(input[:4]); got != "13ead562" {
		t.Fatalf("createAndInitializePoolIfNecessary selector mismatch: %s", got)
	}
	if len(input) != 4+4*32 {
		t.Fatalf("calldata length mismatch: %d", len(input))
	}
}

func TestPackMint(t *testing.T) {
	input, err := PackMint(MintParams{
		Token0:         common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Token1:         common.HexToAddress("0x9999999999999999999999999999999999999999"),
		Fee:            big.NewInt(3000),
		TickLower:      big.NewInt(-887220),
		TickUpper:      big.NewInt(887220),
		Amount0Desired: big.NewInt(1),
		Amount1Desired: big.NewInt(2),
		Amount0Min:     new(big.Int),
		Amount1Min:     new(big.Int),
		Recipient:      common.HexToAddress("0x3333333333333333333333333333333333333333"),
		Deadline:       big.NewInt(1700000600),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := hex.EncodeToString(input[:4]); got != "88316456" {
		t.Fatalf("mint selector mismatch: %s", got)
	}
	if len(input) != 4+11*32 {
		t.Fatalf("calldata length mismatch: %d", len(input))
	}
}

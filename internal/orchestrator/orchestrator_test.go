package orchestrator

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"reflect"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"liquidityPilot/internal/dex"
	"liquidityPilot/internal/model"
)

var (
	wethAddr    = common.HexToAddress("0x8888888888888888888888888888888888888888")
	managerAddr = common.HexToAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	callerAddr  = common.HexToAddress("0xCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC")
	// tokenLow sorts before the WETH address, tokenHigh after it.
	tokenLow  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	tokenHigh = common.HexToAddress("0x9999999999999999999999999999999999999999")
)

type recordedCall struct {
	to    common.Address
	input []byte
	value *big.Int
}

// fakeBackend records submitted calls and confirms them in order, with an
// optional injected failure at a given 1-based call position.
type fakeBackend struct {
	calls         []recordedCall
	failSubmitAt  int
	failConfirmAt int
}

func (f *fakeBackend) From() common.Address { return callerAddr }

func (f *fakeBackend) SubmitCall(_ context.Context, to common.Address, input []byte, value *big.Int) (common.Hash, error) {
	if f.failSubmitAt == len(f.calls)+1 {
		return common.Hash{}, errors.New("rejected by node")
	}
	f.calls = append(f.calls, recordedCall{to: to, input: input, value: value})

	var hash common.Hash
	hash[0] = byte(len(f.calls))
	return hash, nil
}

func (f *fakeBackend) AwaitConfirmation(_ context.Context, hash common.Hash) (model.TxOutcome, error) {
	if f.failConfirmAt == len(f.calls) {
		return model.TxOutcome{}, errors.New("transaction reverted")
	}
	return model.TxOutcome{
		Hash:        hash.Hex(),
		Confirmed:   true,
		BlockNumber: uint64(100 + len(f.calls)),
	}, nil
}

type recordingJournal struct {
	outcomes []model.TxOutcome
}

func (j *recordingJournal) PutOutcomes(_ context.Context, outcomes []model.TxOutcome) error {
	j.outcomes = append(j.outcomes, outcomes...)
	return nil
}

func testConfig() Config {
	return Config{
		WETH:            wethAddr,
		PositionManager: managerAddr,
		MinTick:         dex.DefaultMinTick,
		MaxTick:         dex.DefaultMaxTick,
		TickSpacings:    dex.DefaultTickSpacings(),
		DeadlineWindow:  600 * time.Second,
	}
}

func selectorOf(t *testing.T, input []byte) string {
	t.Helper()
	if len(input) < 4 {
		t.Fatalf("calldata shorter than a selector: %d bytes", len(input))
	}
	return hex.EncodeToString(input[:4])
}

const (
	depositSelector = "d0e30db0"
	initSelector    = "13ead562"
	approveSelector = "095ea7b3"
	mintSelector    = "88316456"
)

func assertSelectors(t *testing.T, calls []recordedCall, want []string) {
	t.Helper()
	if len(calls) != len(want) {
		t.Fatalf("call count mismatch: got %d, want %d", len(calls), len(want))
	}
	for i, sel := range want {
		if got := selectorOf(t, calls[i].input); got != sel {
			t.Fatalf("call %d selector mismatch: got %s, want %s", i, got, sel)
		}
	}
}

type mintView struct {
	token0         common.Address
	token1         common.Address
	tickLower      *big.Int
	tickUpper      *big.Int
	amount0Desired *big.Int
	amount1Desired *big.Int
	amount0Min     *big.Int
	amount1Min     *big.Int
	recipient      common.Address
}

func unpackMint(t *testing.T, input []byte) mintView {
	t.Helper()
	managerABI, err := dex.PositionManagerABI()
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	values, err := managerABI.Methods["mint"].Inputs.Unpack(input[4:])
	if err != nil {
		t.Fatalf("unpack mint: %v", err)
	}

	params := reflect.ValueOf(values[0])
	field := func(name string) interface{} { return params.FieldByName(name).Interface() }
	return mintView{
		token0:         field("Token0").(common.Address),
		token1:         field("Token1").(common.Address),
		tickLower:      field("TickLower").(*big.Int),
		tickUpper:      field("TickUpper").(*big.Int),
		amount0Desired: field("Amount0Desired").(*big.Int),
		amount1Desired: field("Amount1Desired").(*big.Int),
		amount0Min:     field("Amount0Min").(*big.Int),
		amount1Min:     field("Amount1Min").(*big.Int),
		recipient:      field("Recipient").(common.Address),
	}
}

func mustBase(t *testing.T, decimal string) *big.Int {
	t.Helper()
	out, err := dex.ParseAmount(decimal)
	if err != nil {
		t.Fatalf("parse %q: %v", decimal, err)
	}
	return out
}

func TestRunInitializeAndAdd(t *testing.T) {
	backend := &fakeBackend{}
	journal := &recordingJournal{}
	orch := New(testConfig(), backend, journal, nil)

	result, err := orch.Run(context.Background(), Request{
		Mode:        model.ModeInitializeAndAdd,
		Token:       tokenLow,
		TokenAmount: "800",
		WETHAmount:  "0.2",
		WrapAmount:  "0.2",
		FeeTier:     3000,
		TargetPrice: 4000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FinalState != StateDone {
		t.Fatalf("final state mismatch: %s", result.FinalState)
	}
	assertSelectors(t, backend.calls, []string{
		depositSelector, initSelector, approveSelector, approveSelector, mintSelector,
	})

	// Wrap goes to the WETH contract with the requested value attached.
	if backend.calls[0].to != wethAddr {
		t.Fatalf("wrap target mismatch: %s", backend.calls[0].to.Hex())
	}
	if backend.calls[0].value.Cmp(mustBase(t, "0.2")) != 0 {
		t.Fatalf("wrap value mismatch: %s", backend.calls[0].value)
	}

	// Approvals hit token0 then token1; init and mint hit the manager.
	if backend.calls[1].to != managerAddr || backend.calls[4].to != managerAddr {
		t.Fatalf("manager call target mismatch")
	}
	if backend.calls[2].to != tokenLow || backend.calls[3].to != wethAddr {
		t.Fatalf("approval order mismatch: %s then %s",
			backend.calls[2].to.Hex(), backend.calls[3].to.Hex())
	}

	mint := unpackMint(t, backend.calls[4].input)
	if mint.token0 != tokenLow || mint.token1 != wethAddr {
		t.Fatalf("mint pair mismatch: %s / %s", mint.token0.Hex(), mint.token1.Hex())
	}
	if mint.amount0Desired.Cmp(mustBase(t, "800")) != 0 {
		t.Fatalf("amount0 mismatch: %s", mint.amount0Desired)
	}
	if mint.amount1Desired.Cmp(mustBase(t, "0.2")) != 0 {
		t.Fatalf("amount1 mismatch: %s", mint.amount1Desired)
	}
	if mint.amount0Min.Sign() != 0 || mint.amount1Min.Sign() != 0 {
		t.Fatalf("slippage guards should be zero")
	}
	if mint.tickLower.Int64() != -887220 || mint.tickUpper.Int64() != 887220 {
		t.Fatalf("tick bounds mismatch: %s / %s", mint.tickLower, mint.tickUpper)
	}
	if mint.recipient != callerAddr {
		t.Fatalf("recipient mismatch: %s", mint.recipient.Hex())
	}

	if len(result.Outcomes) != 5 {
		t.Fatalf("outcome count mismatch: %d", len(result.Outcomes))
	}
	for i, outcome := range result.Outcomes {
		if !outcome.Confirmed {
			t.Fatalf("outcome %d not confirmed", i)
		}
		if outcome.RunID != result.RunID {
			t.Fatalf("outcome %d run id mismatch", i)
		}
	}
	if len(journal.outcomes) != 5 {
		t.Fatalf("journal count mismatch: %d", len(journal.outcomes))
	}
}

func TestRunInitializePriceOrientation(t *testing.T) {
	managerABI, err := dex.PositionManagerABI()
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}

	cases := []struct {
		name      string
		token     common.Address
		wantPrice float64
	}{
		// Custom token in slot 0: encoded price is WETH per token.
		{"token0", tokenLow, 1.0 / 4000},
		// Custom token in slot 1: encoded price is token per WETH.
		{"token1", tokenHigh, 4000},
	}

	for _, tc := range cases {
		backend := &fakeBackend{}
		orch := New(testConfig(), backend, nil, nil)

		_, err := orch.Run(context.Background(), Request{
			Mode:        model.ModeInitializeAndAdd,
			Token:       tc.token,
			TokenAmount: "800",
			WETHAmount:  "0.2",
			FeeTier:     3000,
			TargetPrice: 4000,
		})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}

		values, err := managerABI.Methods["createAndInitializePoolIfNecessary"].Inputs.Unpack(backend.calls[0].input[4:])
		if err != nil {
			t.Fatalf("%s: unpack init: %v", tc.name, err)
		}

		want, err := dex.EncodeSqrtPriceX96(tc.wantPrice)
		if err != nil {
			t.Fatalf("%s: encode: %v", tc.name, err)
		}
		got := values[3].(*big.Int)
		if got.Cmp(want) != 0 {
			t.Fatalf("%s: sqrt price mismatch: %s != %s", tc.name, got, want)
		}
	}
}

func TestRunAddLiquiditySkipsInitialize(t *testing.T) {
	backend := &fakeBackend{}
	orch := New(testConfig(), backend, nil, nil)

	result, err := orch.Run(context.Background(), Request{
		Mode:        model.ModeAddLiquidity,
		Token:       tokenLow,
		TokenAmount: "800",
		WETHAmount:  "0.2",
		WrapAmount:  "0.2",
		FeeTier:     3000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FinalState != StateDone {
		t.Fatalf("final state mismatch: %s", result.FinalState)
	}
	assertSelectors(t, backend.calls, []string{
		depositSelector, approveSelector, approveSelector, mintSelector,
	})
}

func TestRunAddLiquidityWithoutWrap(t *testing.T) {
	backend := &fakeBackend{}
	orch := New(testConfig(), backend, nil, nil)

	result, err := orch.Run(context.Background(), Request{
		Mode:        model.ModeAddLiquidity,
		Token:       tokenLow,
		TokenAmount: "800",
		WETHAmount:  "0.2",
		FeeTier:     3000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FinalState != StateDone {
		t.Fatalf("final state mismatch: %s", result.FinalState)
	}
	assertSelectors(t, backend.calls, []string{
		approveSelector, approveSelector, mintSelector,
	})
}

func TestRunWrapOnly(t *testing.T) {
	backend := &fakeBackend{}
	orch := New(testConfig(), backend, nil, nil)

	result, err := orch.Run(context.Background(), Request{
		Mode:       model.ModeWrapOnly,
		WrapAmount: "1.5",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FinalState != StateDone {
		t.Fatalf("final state mismatch: %s", result.FinalState)
	}
	assertSelectors(t, backend.calls, []string{depositSelector})
	if backend.calls[0].value.Cmp(mustBase(t, "1.5")) != 0 {
		t.Fatalf("wrap value mismatch: %s", backend.calls[0].value)
	}
}

func TestRunHaltsOnConfirmationFailure(t *testing.T) {
	// Second call (initialize) reverts; nothing after it may be submitted.
	backend := &fakeBackend{failConfirmAt: 2}
	orch := New(testConfig(), backend, nil, nil)

	result, err := orch.Run(context.Background(), Request{
		Mode:        model.ModeInitializeAndAdd,
		Token:       tokenLow,
		TokenAmount: "800",
		WETHAmount:  "0.2",
		WrapAmount:  "0.2",
		FeeTier:     3000,
		TargetPrice: 4000,
	})
	if err == nil {
		t.Fatalf("expected an error")
	}

	step, ok := model.StepOf(err)
	if !ok || step != model.StepInitialize {
		t.Fatalf("expected failure at initialize, got step=%s ok=%v", step, ok)
	}
	var confErr *model.ConfirmationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected ConfirmationError, got %T", err)
	}

	if result.FinalState != StateFailed {
		t.Fatalf("final state mismatch: %s", result.FinalState)
	}
	if len(backend.calls) != 2 {
		t.Fatalf("no calls may follow the failed step, got %d", len(backend.calls))
	}
	// The wrap stays confirmed and is not retried or reversed.
	if len(result.Outcomes) != 1 || !result.Outcomes[0].Confirmed {
		t.Fatalf("wrap outcome should remain confirmed: %+v", result.Outcomes)
	}
}

func TestRunHaltsOnSubmissionFailure(t *testing.T) {
	backend := &fakeBackend{failSubmitAt: 1}
	orch := New(testConfig(), backend, nil, nil)

	result, err := orch.Run(context.Background(), Request{
		Mode:       model.ModeWrapOnly,
		WrapAmount: "1",
	})
	if err == nil {
		t.Fatalf("expected an error")
	}

	var subErr *model.SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected SubmissionError, got %T", err)
	}
	if subErr.Step != model.StepWrap {
		t.Fatalf("wrong step: %s", subErr.Step)
	}
	if result.FinalState != StateFailed || len(backend.calls) != 0 {
		t.Fatalf("nothing should be recorded after a rejected submit")
	}
}

func TestRunValidationRejectsBeforeSubmitting(t *testing.T) {
	cases := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{
			name: "degenerate pair",
			req: Request{
				Mode:        model.ModeAddLiquidity,
				Token:       wethAddr,
				TokenAmount: "1",
				WETHAmount:  "1",
				FeeTier:     3000,
			},
			wantErr: model.ErrDegeneratePair,
		},
		{
			name: "invalid fee tier",
			req: Request{
				Mode:        model.ModeAddLiquidity,
				Token:       tokenLow,
				TokenAmount: "1",
				WETHAmount:  "1",
				FeeTier:     1234,
			},
			wantErr: model.ErrInvalidFeeTier,
		},
		{
			name: "non-positive price",
			req: Request{
				Mode:        model.ModeInitializeAndAdd,
				Token:       tokenLow,
				TokenAmount: "1",
				WETHAmount:  "1",
				FeeTier:     3000,
				TargetPrice: 0,
			},
			wantErr: model.ErrInvalidPrice,
		},
		{
			name: "both amounts zero",
			req: Request{
				Mode:    model.ModeAddLiquidity,
				Token:   tokenLow,
				FeeTier: 3000,
			},
			wantErr: model.ErrInsufficientInput,
		},
		{
			name:    "wrap-only without amount",
			req:     Request{Mode: model.ModeWrapOnly},
			wantErr: model.ErrInsufficientInput,
		},
	}

	for _, tc := range cases {
		backend := &fakeBackend{}
		orch := New(testConfig(), backend, nil, nil)

		result, err := orch.Run(context.Background(), tc.req)
		if !errors.Is(err, tc.wantErr) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.wantErr)
		}
		if len(backend.calls) != 0 {
			t.Fatalf("%s: validation failures must submit nothing", tc.name)
		}
		if result.FinalState != StateFailed {
			t.Fatalf("%s: final state mismatch: %s", tc.name, result.FinalState)
		}
	}
}

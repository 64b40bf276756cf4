package orchestrator

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"liquidityPilot/internal/dex"
	"liquidityPilot/internal/model"
	"liquidityPilot/internal/storage"
)

// TxBackend is the blockchain client capability the orchestrator drives.
type TxBackend interface {
	From() common.Address
	SubmitCall(ctx context.Context, to common.Address, input []byte, value *big.Int) (common.Hash, error)
	AwaitConfirmation(ctx context.Context, hash common.Hash) (model.TxOutcome, error)
}

// Config holds the protocol constants for the target deployment.
type Config struct {
	WETH            common.Address
	PositionManager common.Address
	MinTick         int32
	MaxTick         int32
	TickSpacings    map[uint32]int32
	DeadlineWindow  time.Duration
}

// Request carries one run's fully-populated parameters. The shell fills it
// in before the orchestrator starts; the core has no interactive surface.
type Request struct {
	Mode  model.Mode
	Token common.Address
	// TokenAmount and WETHAmount are decimal quantities to deposit.
	TokenAmount string
	WETHAmount  string
	// WrapAmount is the decimal quantity of native asset to wrap first.
	// Empty or zero skips the wrap step (except in wrap-only mode, where
	// it is required).
	WrapAmount string
	FeeTier    uint32
	// TargetPrice is the pool's initial price as custom token units per
	// wrapped-native unit. Only used when creating the pool.
	TargetPrice float64
}

// Result reports the terminal state and every confirmed transaction.
type Result struct {
	RunID      string
	FinalState State
	Outcomes   []model.TxOutcome
}

// Orchestrator sequences the wrap, pool-init, approval, and mint
// transactions, blocking on confirmation between steps.
type Orchestrator struct {
	cfg     Config
	backend TxBackend
	journal storage.Journal
	logger  *zap.Logger
}

// New builds an Orchestrator with its dependencies.
func New(cfg Config, backend TxBackend, journal storage.Journal, logger *zap.Logger) *Orchestrator {
	if journal == nil {
		journal = storage.NopJournal{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		cfg:     cfg,
		backend: backend,
		logger:  logger,
		journal: journal,
	}
}

// plan holds everything derived from the request during validation. All
// validation happens before any transaction is submitted, so a rejected
// request has no on-chain side effects.
type plan struct {
	wrapWei      *big.Int
	pair         model.CanonicalPair
	amounts      model.LiquidityAmounts
	sqrtPriceX96 *big.Int
	tickLower    int32
	tickUpper    int32
}

func (o *Orchestrator) plan(req Request) (plan, error) {
	if !req.Mode.Valid() {
		return plan{}, fmt.Errorf("unknown mode: %d", req.Mode)
	}

	wrapWei, err := dex.ParseAmount(req.WrapAmount)
	if err != nil {
		return plan{}, fmt.Errorf("wrap amount: %w", err)
	}

	if req.Mode == model.ModeWrapOnly {
		if wrapWei.Sign() == 0 {
			return plan{}, fmt.Errorf("wrap amount: %w", model.ErrInsufficientInput)
		}
		return plan{wrapWei: wrapWei}, nil
	}

	spacing, ok := o.cfg.TickSpacings[req.FeeTier]
	if !ok {
		return plan{}, fmt.Errorf("%w: %d", model.ErrInvalidFeeTier, req.FeeTier)
	}

	pair, err := dex.OrderTokens(req.Token, o.cfg.WETH)
	if err != nil {
		return plan{}, err
	}

	amounts, err := dex.ResolveAmounts(pair, req.Token, req.TokenAmount, req.WETHAmount)
	if err != nil {
		return plan{}, err
	}

	p := plan{
		wrapWei: wrapWei,
		pair:    pair,
		amounts: amounts,
	}
	p.tickLower, p.tickUpper = dex.FullRangeTicks(o.cfg.MinTick, o.cfg.MaxTick, spacing)

	if req.Mode == model.ModeInitializeAndAdd {
		price := req.TargetPrice
		if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
			return plan{}, fmt.Errorf("%w: got %v", model.ErrInvalidPrice, price)
		}
		// TargetPrice is token-per-WETH; sqrtPriceX96 encodes token1 per
		// token0, so flip it when the custom token lands in slot 0.
		if pair.Token0 == req.Token {
			price = 1 / price
		}
		p.sqrtPriceX96, err = dex.EncodeSqrtPriceX96(price)
		if err != nil {
			return plan{}, err
		}
	}

	return p, nil
}

// Run executes the transaction sequence for the request. Steps are strictly
// sequential: step N+1 is never submitted before step N's transaction is
// confirmed. There are no retries; a failure halts the sequence and leaves
// prior confirmed steps standing.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	result := &Result{
		RunID:      uuid.NewString(),
		FinalState: StateIdle,
	}

	p, err := o.plan(req)
	if err != nil {
		result.FinalState = StateFailed
		return result, err
	}

	o.logger.Info("run start",
		zap.String("run_id", result.RunID),
		zap.String("mode", req.Mode.String()),
		zap.String("caller", o.backend.From().Hex()),
	)

	fail := func(err error) (*Result, error) {
		result.FinalState = StateFailed
		return result, err
	}

	if p.wrapWei.Sign() > 0 {
		result.FinalState = StateWrapping
		input, err := dex.PackDeposit()
		if err != nil {
			return fail(err)
		}
		if err := o.executeStep(ctx, result, model.StepWrap, o.cfg.WETH, input, p.wrapWei); err != nil {
			return fail(err)
		}
	}

	if req.Mode == model.ModeWrapOnly {
		result.FinalState = StateDone
		return result, nil
	}

	if req.Mode == model.ModeInitializeAndAdd {
		result.FinalState = StateInitializing
		input, err := dex.PackCreateAndInitialize(p.pair.Token0, p.pair.Token1, req.FeeTier, p.sqrtPriceX96)
		if err != nil {
			return fail(err)
		}
		if err := o.executeStep(ctx, result, model.StepInitialize, o.cfg.PositionManager, input, nil); err != nil {
			return fail(err)
		}
	}

	// Approvals are unconditional: idempotent on-chain even if a
	// sufficient allowance already exists.
	approvals := []struct {
		step  model.Step
		state State
		token common.Address
	}{
		{model.StepApproveToken0, StateApprovingToken0, p.pair.Token0},
		{model.StepApproveToken1, StateApprovingToken1, p.pair.Token1},
	}
	for _, approval := range approvals {
		result.FinalState = approval.state
		input, err := dex.PackApprove(o.cfg.PositionManager, dex.MaxApproval())
		if err != nil {
			return fail(err)
		}
		if err := o.executeStep(ctx, result, approval.step, approval.token, input, nil); err != nil {
			return fail(err)
		}
	}

	result.FinalState = StateMinting
	deadline := time.Now().Add(o.cfg.DeadlineWindow)
	input, err := dex.PackMint(dex.MintParams{
		Token0:         p.pair.Token0,
		Token1:         p.pair.Token1,
		Fee:            new(big.Int).SetUint64(uint64(req.FeeTier)),
		TickLower:      big.NewInt(int64(p.tickLower)),
		TickUpper:      big.NewInt(int64(p.tickUpper)),
		Amount0Desired: p.amounts.Amount0Desired,
		Amount1Desired: p.amounts.Amount1Desired,
		Amount0Min:     new(big.Int),
		Amount1Min:     new(big.Int),
		Recipient:      o.backend.From(),
		Deadline:       big.NewInt(deadline.Unix()),
	})
	if err != nil {
		return fail(err)
	}
	if err := o.executeStep(ctx, result, model.StepMint, o.cfg.PositionManager, input, nil); err != nil {
		return fail(err)
	}

	result.FinalState = StateDone
	o.logger.Info("run complete",
		zap.String("run_id", result.RunID),
		zap.Int("transactions", len(result.Outcomes)),
	)
	return result, nil
}

// executeStep submits one transaction and blocks until it is confirmed.
func (o *Orchestrator) executeStep(ctx context.Context, result *Result, step model.Step, to common.Address, input []byte, value *big.Int) error {
	hash, err := o.backend.SubmitCall(ctx, to, input, value)
	if err != nil {
		return &model.SubmissionError{Step: step, Err: err}
	}
	submittedAt := time.Now().UTC().Format(time.RFC3339Nano)

	o.logger.Info("transaction submitted",
		zap.String("step", step.String()),
		zap.String("tx", hash.Hex()),
		zap.String("to", to.Hex()),
	)

	outcome, err := o.backend.AwaitConfirmation(ctx, hash)
	if err != nil {
		return &model.ConfirmationError{Step: step, Err: err}
	}

	outcome.RunID = result.RunID
	outcome.Step = step.String()
	outcome.SubmittedAt = submittedAt
	if outcome.Hash == "" {
		outcome.Hash = hash.Hex()
	}
	result.Outcomes = append(result.Outcomes, outcome)

	// The journal is an observability side channel; its failures must not
	// halt an otherwise healthy sequence.
	if err := o.journal.PutOutcomes(ctx, []model.TxOutcome{outcome}); err != nil {
		o.logger.Warn("journal write failed", zap.String("step", step.String()), zap.Error(err))
	}

	o.logger.Info("transaction confirmed",
		zap.String("step", step.String()),
		zap.String("tx", outcome.Hash),
		zap.Uint64("block", outcome.BlockNumber),
	)
	return nil
}

package model

import "fmt"

// Step identifies a single transaction step in the orchestration sequence.
// Failures are tagged with the step at which they occurred.
type Step int

const (
	StepWrap Step = iota
	StepInitialize
	StepApproveToken0
	StepApproveToken1
	StepMint
)

func (s Step) String() string {
	switch s {
	case StepWrap:
		return "wrap"
	case StepInitialize:
		return "initialize"
	case StepApproveToken0:
		return "approve-token0"
	case StepApproveToken1:
		return "approve-token1"
	case StepMint:
		return "mint"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

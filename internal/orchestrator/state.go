package orchestrator

import "fmt"

// State is the orchestrator's position in the transaction sequence.
type State int

const (
	StateIdle State = iota
	StateWrapping
	StateInitializing
	StateApprovingToken0
	StateApprovingToken1
	StateMinting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWrapping:
		return "wrapping"
	case StateInitializing:
		return "initializing"
	case StateApprovingToken0:
		return "approving-token0"
	case StateApprovingToken1:
		return "approving-token1"
	case StateMinting:
		return "minting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

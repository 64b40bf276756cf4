package model

import "fmt"

// Mode selects which transaction sequence the orchestrator runs.
// It is chosen once per run and never changes afterwards.
type Mode int

const (
	// ModeInitializeAndAdd creates and price-initializes the pool before
	// adding liquidity.
	ModeInitializeAndAdd Mode = iota
	// ModeAddLiquidity adds liquidity to a pool assumed to already exist.
	ModeAddLiquidity
	// ModeWrapOnly wraps native asset and stops.
	ModeWrapOnly
)

func (m Mode) String() string {
	switch m {
	case ModeInitializeAndAdd:
		return "init-add"
	case ModeAddLiquidity:
		return "add"
	case ModeWrapOnly:
		return "wrap"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Valid reports whether the mode is one of the known variants.
func (m Mode) Valid() bool {
	switch m {
	case ModeInitializeAndAdd, ModeAddLiquidity, ModeWrapOnly:
		return true
	default:
		return false
	}
}

// ParseMode maps a mode name to its Mode value.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "init-add":
		return ModeInitializeAndAdd, nil
	case "add":
		return ModeAddLiquidity, nil
	case "wrap":
		return ModeWrapOnly, nil
	default:
		return 0, fmt.Errorf("unknown mode: %s", s)
	}
}

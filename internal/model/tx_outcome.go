package model

// TxOutcome is the journaled record of a single submitted transaction.
// It is created unconfirmed on submission and updated exactly once by the
// confirmation wait.
type TxOutcome struct {
	RunID       string `json:"run_id"`
	Step        string `json:"step"`
	Hash        string `json:"tx_hash"`
	Confirmed   bool   `json:"confirmed"`
	BlockNumber uint64 `json:"block_number,omitempty"`
	GasUsed     uint64 `json:"gas_used,omitempty"`
	SubmittedAt string `json:"submitted_at"`
	ConfirmedAt string `json:"confirmed_at,omitempty"`
}

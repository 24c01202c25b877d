package app

import (
	"liftledger/internal/core"

	"github.com/shopspring/decimal"
)

// SessionResult is the authenticated operator's identity, ready to be minted
// into a token by the adapter.
type SessionResult struct {
	OperatorID  int       `json:"operator_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Role        core.Role `json:"role"`
}

// Caller converts the session into the identity the core operates on.
func (s SessionResult) Caller() core.Caller {
	return core.Caller{UserID: s.OperatorID, Label: s.DisplayName, Role: s.Role}
}

// WorkerListResult bundles the roster with its headline counts.
type WorkerListResult struct {
	Workers     []core.Worker `json:"workers"`
	ActiveCount int           `json:"active_count"`
}

// ProductionDayResult is one calendar day's entries plus the day total.
type ProductionDayResult struct {
	Entries   []core.DailyTon `json:"entries"`
	TotalTons decimal.Decimal `json:"total_tons"`
}

// PettyCashResult is the wallet view: derived balance, recent movements and
// the pending queue size.
type PettyCashResult struct {
	Balance      decimal.Decimal    `json:"balance"`
	Transactions []core.PettyCashTx `json:"transactions"`
	PendingCount int                `json:"pending_count"`
}

// RepaymentResult reports an ad-hoc cash collection. Overpay is the amount
// beyond the outstanding balance, surfaced as a warning, never an error.
type RepaymentResult struct {
	Advance *core.Advance   `json:"advance"`
	Overpay decimal.Decimal `json:"overpay"`
}

// AdvanceListResult is all advances, newest first.
type AdvanceListResult struct {
	Advances []core.Advance `json:"advances"`
}

// AdvanceDetailResult is one advance with its schedule, if any.
type AdvanceDetailResult struct {
	Advance      *core.Advance      `json:"advance"`
	Installments []core.Installment `json:"installments"`
}

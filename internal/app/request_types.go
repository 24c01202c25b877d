package app

import (
	"time"

	"liftledger/internal/core"

	"github.com/shopspring/decimal"
)

// WorkerRequest carries the editable fields of a worker.
type WorkerRequest struct {
	Name          string          `json:"name"`
	Phone         string          `json:"phone"`
	AccountNumber string          `json:"account_number"`
	Role          core.WorkerRole `json:"role"`
	BaseSalary    decimal.Decimal `json:"base_salary"`
}

// ProductionRequest is one day's tonnage entry for a worker.
type ProductionRequest struct {
	WorkerID   int             `json:"worker_id"`
	Date       time.Time       `json:"date"`
	TonsLifted decimal.Decimal `json:"tons_lifted"`
	IsPresent  bool            `json:"is_present"`
	Notes      string          `json:"notes"`
}

// TxRequest is a petty-cash movement (deposit or expense).
type TxRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

// AdvanceRequest issues a new advance.
type AdvanceRequest struct {
	WorkerID int              `json:"worker_id"`
	Amount   decimal.Decimal  `json:"advance_amount"`
	Date     time.Time        `json:"advance_date"`
	Reason   string           `json:"reason"`
	Mode     core.AdvanceMode `json:"mode"`
}

// InstallmentRequest is one planned repayment slice.
type InstallmentRequest struct {
	Month  int             `json:"month"`
	Year   int             `json:"year"`
	Amount decimal.Decimal `json:"deduction_amount"`
}

// PayrollRowRequest is one worker's final figures at lock time.
type PayrollRowRequest struct {
	WorkerID      int             `json:"worker_id"`
	BaseSalary    decimal.Decimal `json:"base_salary"`
	HULDirect     decimal.Decimal `json:"hul_direct_payment"`
	AdvanceDeduct decimal.Decimal `json:"advance_deductions"`
	OtherDeduct   decimal.Decimal `json:"other_deductions"`
	Notes         string          `json:"notes"`
}

// PayrollSaveRequest locks one month of payroll.
type PayrollSaveRequest struct {
	Month int                 `json:"month"`
	Year  int                 `json:"year"`
	Rows  []PayrollRowRequest `json:"rows"`
}

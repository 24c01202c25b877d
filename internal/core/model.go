package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the resolved role of the person invoking an operation.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
)

// Caller identifies who is performing an operation. It is passed explicitly
// into every mutating call; the core never reads ambient auth state.
type Caller struct {
	UserID int
	Label  string // display name or email, used in the audit trail
	Role   Role
}

func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }

type WorkerStatus string

const (
	WorkerActive   WorkerStatus = "active"
	WorkerInactive WorkerStatus = "inactive"
	WorkerResigned WorkerStatus = "resigned"
)

type WorkerRole string

const (
	WorkerRoleWorker     WorkerRole = "worker"
	WorkerRoleSupervisor WorkerRole = "supervisor"
)

// Worker is one person on the contract roll.
type Worker struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Phone         string          `json:"phone"`
	AccountNumber string          `json:"account_number"`
	Role          WorkerRole      `json:"role"`
	Status        WorkerStatus    `json:"status"`
	BaseSalary    decimal.Decimal `json:"base_salary"` // monthly rate
	JoinDate      time.Time       `json:"join_date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// DailyTon is one (worker, date) production entry. At most one row exists per
// pair; re-submitting the same day overwrites (last write wins).
type DailyTon struct {
	ID         int             `json:"id"`
	WorkerID   int             `json:"worker_id"`
	WorkerName string          `json:"worker_name,omitempty"`
	Date       time.Time       `json:"date"`
	TonsLifted decimal.Decimal `json:"tons_lifted"`
	IsPresent  bool            `json:"is_present"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type TxType string

const (
	TxDeposit TxType = "deposit"
	TxExpense TxType = "expense"
)

type TxStatus string

const (
	TxPending  TxStatus = "pending"
	TxApproved TxStatus = "approved"
	TxRejected TxStatus = "rejected"
)

// PettyCashTx is one append-only wallet movement. Rows are immutable except
// for the pending→approved/rejected transition on expenses.
type PettyCashTx struct {
	ID          int             `json:"id"`
	Type        TxType          `json:"type"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Status      TxStatus        `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

type AdvanceStatus string

const (
	AdvancePending   AdvanceStatus = "pending"
	AdvanceRepaying  AdvanceStatus = "repaying"
	AdvanceCompleted AdvanceStatus = "completed"
)

// AdvanceMode distinguishes the two issuance designs: a direct advance is
// cash-out immediately and recovered ad hoc; a scheduled advance waits for an
// installment plan before it starts repaying.
type AdvanceMode string

const (
	AdvanceDirect    AdvanceMode = "direct"
	AdvanceScheduled AdvanceMode = "scheduled"
)

// Advance is an interest-free loan to a worker recovered via salary deduction
// or ad-hoc cash collection. Balance only ever decreases until completed.
type Advance struct {
	ID          int             `json:"id"`
	WorkerID    int             `json:"worker_id"`
	WorkerName  string          `json:"worker_name,omitempty"`
	Amount      decimal.Decimal `json:"advance_amount"`
	AdvanceDate time.Time       `json:"advance_date"`
	Reason      string          `json:"reason,omitempty"`
	Mode        AdvanceMode     `json:"mode"`
	TotalRepaid decimal.Decimal `json:"total_repaid"`
	Balance     decimal.Decimal `json:"balance"`
	Status      AdvanceStatus   `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Installment is one scheduled (month, year) slice of an advance's recovery.
type Installment struct {
	ID        int             `json:"id"`
	AdvanceID int             `json:"advance_id"`
	Month     int             `json:"month"`
	Year      int             `json:"year"`
	Amount    decimal.Decimal `json:"deduction_amount"`
	IsPaid    bool            `json:"is_paid"`
	PaidDate  *time.Time      `json:"paid_date,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// SalaryPayment is one locked payroll row. Its existence locks the
// (worker, month, year): there is never a second row for the same key.
// NetSalary is a generated column: base - advance_deductions - other_deductions.
// HULDirect is informational (paid by the client directly, not by this ledger).
type SalaryPayment struct {
	ID            int             `json:"id"`
	WorkerID      int             `json:"worker_id"`
	WorkerName    string          `json:"worker_name,omitempty"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	BaseSalary    decimal.Decimal `json:"base_salary"`
	HULDirect     decimal.Decimal `json:"hul_direct_payment"`
	AdvanceDeduct decimal.Decimal `json:"advance_deductions"`
	OtherDeduct   decimal.Decimal `json:"other_deductions"`
	NetSalary     decimal.Decimal `json:"net_salary"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ActivityLog is one audit-trail entry.
type ActivityLog struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	UserLabel string    `json:"user_label"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// Operator is a back-office login (admin or supervisor). Distinct from Worker:
// operators sign in, workers get paid.
type Operator struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

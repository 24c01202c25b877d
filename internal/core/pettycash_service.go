package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PettyCashService is the append-only wallet log. The balance is never stored;
// it is folded from the full transaction set on every read so that approvals
// that mutate past entries (and partially-failed compound writes elsewhere)
// can never leave a cached counter wrong.
type PettyCashService interface {
	// RecordDeposit appends an approved deposit. Money received is
	// axiomatically approved at entry.
	RecordDeposit(ctx context.Context, in TxInput) (*PettyCashTx, error)
	// RecordExpense appends a pending expense. The cash is physically gone the
	// moment it is logged, so pending already deducts from the balance.
	RecordExpense(ctx context.Context, in TxInput) (*PettyCashTx, error)
	// RecordApprovedExpense appends an expense that is born approved. Used for
	// admin-initiated cash-outs such as advances.
	RecordApprovedExpense(ctx context.Context, in TxInput) (*PettyCashTx, error)
	// SetExpenseStatus resolves a pending expense to approved or rejected.
	// The transition is terminal.
	SetExpenseStatus(ctx context.Context, id int, status TxStatus) (*PettyCashTx, error)
	// List returns the most recent transactions, newest first.
	List(ctx context.Context, limit int) ([]PettyCashTx, error)
	// Balance folds the entire log.
	Balance(ctx context.Context) (decimal.Decimal, error)
	// BalanceAsOf folds transactions dated on or before the given day.
	BalanceAsOf(ctx context.Context, date time.Time) (decimal.Decimal, error)
	// PendingExpenseCount counts expenses still awaiting a decision.
	PendingExpenseCount(ctx context.Context) (int, error)
	// ApprovedExpenseTotal sums approved expenses in an inclusive date range.
	// Reporting uses this stricter "confirmed spend" view, intentionally
	// narrower than the live wallet fold.
	ApprovedExpenseTotal(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

// TxInput carries the caller-supplied fields of a wallet movement.
type TxInput struct {
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        time.Time
}

func (in TxInput) validate() error {
	if !in.Amount.IsPositive() {
		return invalid("amount", "must be > 0")
	}
	if strings.TrimSpace(in.Description) == "" {
		return invalid("description", "must not be empty")
	}
	if in.Date.IsZero() {
		return invalid("date", "must be set")
	}
	return nil
}

// WalletBalance is the load-bearing fold of the cash subsystem:
//
//	balance = Σ approved deposits - Σ expenses with status pending or approved
//
// Rejected expenses contribute nothing (the cash is treated as never having
// left the wallet). A naive approved-only sum is wrong: a pending expense has
// already drained physical cash.
func WalletBalance(txs []PettyCashTx) decimal.Decimal {
	balance := decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case TxDeposit:
			if tx.Status == TxApproved {
				balance = balance.Add(tx.Amount)
			}
		case TxExpense:
			if tx.Status != TxRejected {
				balance = balance.Sub(tx.Amount)
			}
		}
	}
	return balance
}

type pettyCashService struct {
	pool *pgxpool.Pool
}

// NewPettyCashService constructs a PettyCashService backed by PostgreSQL.
func NewPettyCashService(pool *pgxpool.Pool) PettyCashService {
	return &pettyCashService{pool: pool}
}

const txColumns = `id, type, category, amount, description, date, status, created_at`

func (s *pettyCashService) insert(ctx context.Context, typ TxType, status TxStatus, in TxInput) (*PettyCashTx, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = "Other"
	}
	tx := &PettyCashTx{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO petty_cash_transactions (type, category, amount, description, date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+txColumns,
		typ, category, in.Amount, strings.TrimSpace(in.Description), in.Date, status,
	).Scan(&tx.ID, &tx.Type, &tx.Category, &tx.Amount, &tx.Description, &tx.Date, &tx.Status, &tx.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert %s: %w", typ, err)
	}
	return tx, nil
}

func (s *pettyCashService) RecordDeposit(ctx context.Context, in TxInput) (*PettyCashTx, error) {
	return s.insert(ctx, TxDeposit, TxApproved, in)
}

func (s *pettyCashService) RecordExpense(ctx context.Context, in TxInput) (*PettyCashTx, error) {
	return s.insert(ctx, TxExpense, TxPending, in)
}

func (s *pettyCashService) RecordApprovedExpense(ctx context.Context, in TxInput) (*PettyCashTx, error) {
	return s.insert(ctx, TxExpense, TxApproved, in)
}

func (s *pettyCashService) SetExpenseStatus(ctx context.Context, id int, status TxStatus) (*PettyCashTx, error) {
	if status != TxApproved && status != TxRejected {
		return nil, invalid("status", fmt.Sprintf("must be approved or rejected, got %q", status))
	}

	// The WHERE clause is the state machine: only a pending expense may move.
	tx := &PettyCashTx{}
	err := s.pool.QueryRow(ctx, `
		UPDATE petty_cash_transactions
		SET status = $2
		WHERE id = $1 AND type = 'expense' AND status = 'pending'
		RETURNING `+txColumns,
		id, status,
	).Scan(&tx.ID, &tx.Type, &tx.Category, &tx.Amount, &tx.Description, &tx.Date, &tx.Status, &tx.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.classifyTransitionFailure(ctx, id)
		}
		return nil, fmt.Errorf("failed to update transaction %d: %w", id, err)
	}
	return tx, nil
}

// classifyTransitionFailure distinguishes a missing row from an illegal
// transition so the caller gets the right error from the taxonomy.
func (s *pettyCashService) classifyTransitionFailure(ctx context.Context, id int) error {
	var typ TxType
	var status TxStatus
	err := s.pool.QueryRow(ctx,
		`SELECT type, status FROM petty_cash_transactions WHERE id = $1`, id).Scan(&typ, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch transaction %d: %w", id, err)
	}
	return fmt.Errorf("transaction %d is %s/%s, not a pending expense: %w", id, typ, status, ErrInvalidTransition)
}

func (s *pettyCashService) List(ctx context.Context, limit int) ([]PettyCashTx, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+txColumns+`
		FROM petty_cash_transactions
		ORDER BY date DESC, created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()
	return collectTxs(rows)
}

func (s *pettyCashService) Balance(ctx context.Context) (decimal.Decimal, error) {
	txs, err := s.loadAll(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	return WalletBalance(txs), nil
}

func (s *pettyCashService) BalanceAsOf(ctx context.Context, date time.Time) (decimal.Decimal, error) {
	txs, err := s.loadAll(ctx, &date)
	if err != nil {
		return decimal.Zero, err
	}
	return WalletBalance(txs), nil
}

func (s *pettyCashService) loadAll(ctx context.Context, upTo *time.Time) ([]PettyCashTx, error) {
	q := `SELECT ` + txColumns + ` FROM petty_cash_transactions`
	args := []any{}
	if upTo != nil {
		q += ` WHERE date <= $1`
		args = append(args, *upTo)
	}
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	defer rows.Close()
	return collectTxs(rows)
}

func collectTxs(rows pgx.Rows) ([]PettyCashTx, error) {
	var out []PettyCashTx
	for rows.Next() {
		var tx PettyCashTx
		if err := rows.Scan(&tx.ID, &tx.Type, &tx.Category, &tx.Amount, &tx.Description,
			&tx.Date, &tx.Status, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (s *pettyCashService) PendingExpenseCount(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM petty_cash_transactions
		WHERE type = 'expense' AND status = 'pending'`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending expenses: %w", err)
	}
	return n, nil
}

func (s *pettyCashService) ApprovedExpenseTotal(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM petty_cash_transactions
		WHERE type = 'expense' AND status = 'approved'
		  AND date >= $1 AND date <= $2`, from, to).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum approved expenses: %w", err)
	}
	return total, nil
}

package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Audit action codes. The trail is an operational narrative, not a ledger;
// financial truth always lives in the domain tables.
const (
	ActionAddFunds        = "ADD_FUNDS"
	ActionExpenseRequest  = "EXPENSE_REQUEST"
	ActionExpenseApproved = "EXPENSE_APPROVED"
	ActionExpenseRejected = "EXPENSE_REJECTED"
	ActionGiveAdvance     = "GIVE_ADVANCE"
	ActionRepayAdvance    = "REPAY_ADVANCE"
	ActionProcessPayroll  = "PROCESS_PAYROLL"
	ActionResetPayroll    = "RESET_PAYROLL"
	ActionMarkPaid        = "MARK_PAID"
	ActionMonthClose      = "MONTH_CLOSE"
	ActionGenerateBill    = "GENERATE_BILL"
	ActionViewReport      = "VIEW_REPORT"
)

// AuditService appends to the activity log.
type AuditService interface {
	// Log is best-effort: a failed insert is logged and swallowed so that an
	// audit hiccup can never fail the business write it describes.
	Log(ctx context.Context, caller Caller, action, details string)
	Recent(ctx context.Context, limit int) ([]ActivityLog, error)
}

type auditService struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// NewAuditService constructs an AuditService backed by PostgreSQL.
func NewAuditService(pool *pgxpool.Pool, log *zap.Logger) AuditService {
	return &auditService{pool: pool, log: log}
}

func (s *auditService) Log(ctx context.Context, caller Caller, action, details string) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO activity_logs (user_id, user_label, action, details)
		VALUES ($1, $2, $3, $4)`,
		caller.UserID, caller.Label, action, details)
	if err != nil {
		s.log.Warn("audit insert failed",
			zap.String("action", action),
			zap.Int("user_id", caller.UserID),
			zap.Error(err))
	}
}

func (s *auditService) Recent(ctx context.Context, limit int) ([]ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, user_label, action, details, created_at
		FROM activity_logs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var out []ActivityLog
	for rows.Next() {
		var l ActivityLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.UserLabel, &l.Action, &l.Details, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

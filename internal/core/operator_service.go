package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// ErrBadCredentials covers both unknown username and wrong password. The two
// are deliberately indistinguishable to the caller.
var ErrBadCredentials = errors.New("invalid username or password")

// OperatorService manages back-office logins.
type OperatorService interface {
	// Authenticate verifies a username/password pair against the active
	// operator set.
	Authenticate(ctx context.Context, username, password string) (*Operator, error)
	GetByID(ctx context.Context, id int) (*Operator, error)
	// Create registers an operator with a bcrypt-hashed password.
	Create(ctx context.Context, username, password, displayName string, role Role) (*Operator, error)
}

type operatorService struct {
	pool *pgxpool.Pool
}

// NewOperatorService constructs an OperatorService backed by PostgreSQL.
func NewOperatorService(pool *pgxpool.Pool) OperatorService {
	return &operatorService{pool: pool}
}

const operatorColumns = `id, username, password_hash, display_name, role, is_active, created_at`

func scanOperator(row pgx.Row) (*Operator, error) {
	op := &Operator{}
	err := row.Scan(&op.ID, &op.Username, &op.PasswordHash, &op.DisplayName,
		&op.Role, &op.IsActive, &op.CreatedAt)
	if err != nil {
		return nil, err
	}
	return op, nil
}

func (s *operatorService) Authenticate(ctx context.Context, username, password string) (*Operator, error) {
	op, err := scanOperator(s.pool.QueryRow(ctx, `
		SELECT `+operatorColumns+`
		FROM operators
		WHERE username = $1 AND is_active`, strings.ToLower(strings.TrimSpace(username))))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("failed to fetch operator: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return op, nil
}

func (s *operatorService) GetByID(ctx context.Context, id int) (*Operator, error) {
	op, err := scanOperator(s.pool.QueryRow(ctx, `
		SELECT `+operatorColumns+` FROM operators WHERE id = $1 AND is_active`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("operator %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch operator %d: %w", id, err)
	}
	return op, nil
}

func (s *operatorService) Create(ctx context.Context, username, password, displayName string, role Role) (*Operator, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, invalid("username", "must not be empty")
	}
	if len(password) < 8 {
		return nil, invalid("password", "must be at least 8 characters")
	}
	if role != RoleAdmin && role != RoleSupervisor {
		return nil, invalid("role", fmt.Sprintf("unknown role %q", role))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	op, err := scanOperator(s.pool.QueryRow(ctx, `
		INSERT INTO operators (username, password_hash, display_name, role, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING `+operatorColumns,
		username, string(hash), strings.TrimSpace(displayName), role))
	if err != nil {
		return nil, fmt.Errorf("failed to insert operator: %w", err)
	}
	return op, nil
}

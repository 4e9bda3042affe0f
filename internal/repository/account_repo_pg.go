package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dcastano/aeroops/internal/domain"
	"github.com/dcastano/aeroops/internal/txn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountRecord is the account joined with its owning user, the shape the
// auth flows read.
type AccountRecord struct {
	Account domain.Account
	User    domain.User
}

type AccountRepository interface {
	FindByIdentifier(ctx context.Context, identifier string) (*AccountRecord, error)
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	ListUnactivatedBefore(ctx context.Context, cutoff time.Time) ([]domain.Account, error)
}

type PGAccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *PGAccountRepository {
	return &PGAccountRepository{db: db}
}

const accountUserColumns = `a.id, a.identifier, a.password_hash, a.role, a.status, COALESCE(a.activation_hash, ''), a.user_id, a.card_id, a.created_at, a.updated_at,
	u.id, u.name, u.surname, u.age, u.created_at, u.updated_at`

func (r *PGAccountRepository) FindByIdentifier(ctx context.Context, identifier string) (*AccountRecord, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountUserColumns+` FROM accounts a JOIN users u ON u.id = a.user_id WHERE a.identifier=$1`, identifier)
	var rec AccountRecord
	if err := row.Scan(
		&rec.Account.ID, &rec.Account.Identifier, &rec.Account.PasswordHash, &rec.Account.Role, &rec.Account.Status, &rec.Account.ActivationHash, &rec.Account.UserID, &rec.Account.CardID, &rec.Account.CreatedAt, &rec.Account.UpdatedAt,
		&rec.User.ID, &rec.User.Name, &rec.User.Surname, &rec.User.Age, &rec.User.CreatedAt, &rec.User.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *PGAccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	row := r.db.QueryRow(ctx, `SELECT id, identifier, password_hash, role, status, COALESCE(activation_hash, ''), user_id, card_id, created_at, updated_at FROM accounts WHERE id=$1`, id)
	var a domain.Account
	if err := row.Scan(&a.ID, &a.Identifier, &a.PasswordHash, &a.Role, &a.Status, &a.ActivationHash, &a.UserID, &a.CardID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListUnactivatedBefore returns accounts still missing an activation code
// older than the cutoff. The worker uses it for the re-notification sweep.
func (r *PGAccountRepository) ListUnactivatedBefore(ctx context.Context, cutoff time.Time) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, `SELECT id, identifier, password_hash, role, status, COALESCE(activation_hash, ''), user_id, card_id, created_at, updated_at FROM accounts WHERE activation_hash IS NULL AND status=$1 AND created_at <= $2`, domain.AccountStatusInactive, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.Identifier, &a.PasswordHash, &a.Role, &a.Status, &a.ActivationHash, &a.UserID, &a.CardID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

var _ AccountRepository = (*PGAccountRepository)(nil)

// AccountExecutor is the coordinator executor for the account aggregate.
// Create inserts the User+Card+Account triple in insertion order so the
// account row carries the fresh foreign keys; everything runs on the single
// transaction owned by the coordinator.
type AccountExecutor struct{}

func NewAccountExecutor() *AccountExecutor {
	return &AccountExecutor{}
}

var accountPatchColumns = map[string]bool{
	"activation_hash": true,
	"status":          true,
	"role":            true,
}

func (e *AccountExecutor) Create(ctx context.Context, tx pgx.Tx, payload any) error {
	reg, ok := payload.(*domain.Registration)
	if !ok {
		return fmt.Errorf("account create wants *domain.Registration, got %T", payload)
	}

	if err := tx.QueryRow(ctx, `INSERT INTO users (name, surname, age) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`,
		reg.User.Name, reg.User.Surname, reg.User.Age).
		Scan(&reg.User.ID, &reg.User.CreatedAt, &reg.User.UpdatedAt); err != nil {
		return err
	}

	if err := tx.QueryRow(ctx, `INSERT INTO cards (holder, address, number, expiry, cvv) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`,
		reg.Card.Holder, reg.Card.Address, reg.Card.Number, reg.Card.Expiry, reg.Card.CVV).
		Scan(&reg.Card.ID, &reg.Card.CreatedAt, &reg.Card.UpdatedAt); err != nil {
		return err
	}

	reg.Account.UserID = reg.User.ID
	reg.Account.CardID = reg.Card.ID
	return tx.QueryRow(ctx, `INSERT INTO accounts (identifier, password_hash, role, status, user_id, card_id) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`,
		reg.Account.Identifier, reg.Account.PasswordHash, reg.Account.Role, reg.Account.Status, reg.Account.UserID, reg.Account.CardID).
		Scan(&reg.Account.ID, &reg.Account.CreatedAt, &reg.Account.UpdatedAt)
}

func (e *AccountExecutor) Update(ctx context.Context, tx pgx.Tx, key int64, payload any) error {
	a, ok := payload.(*domain.Account)
	if !ok {
		return fmt.Errorf("account update wants *domain.Account, got %T", payload)
	}
	res, err := tx.Exec(ctx, `UPDATE accounts SET role=$2, status=$3, updated_at=now() WHERE id=$1`, key, a.Role, a.Status)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return txn.ErrNoRowsAffected
	}
	return nil
}

func (e *AccountExecutor) UpdateParams(ctx context.Context, tx pgx.Tx, key int64, params map[string]any) error {
	clause, args, err := buildPatch(params, accountPatchColumns)
	if err != nil {
		return err
	}
	res, err := tx.Exec(ctx, `UPDATE accounts SET `+clause+`, updated_at=now() WHERE id=$1`, append([]any{key}, args...)...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return txn.ErrNoRowsAffected
	}
	return nil
}

// Delete is refused: accounts have a soft lifecycle and only move between
// statuses.
func (e *AccountExecutor) Delete(ctx context.Context, tx pgx.Tx, key int64) error {
	return errors.New("accounts are never deleted, transition status instead")
}

var _ txn.Executor = (*AccountExecutor)(nil)

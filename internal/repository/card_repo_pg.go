package repository

import (
	"context"
	"fmt"

	"github.com/dcastano/aeroops/internal/domain"
	"github.com/dcastano/aeroops/internal/txn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CardRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Card, error)
}

type PGCardRepository struct {
	db *pgxpool.Pool
}

func NewCardRepository(db *pgxpool.Pool) *PGCardRepository {
	return &PGCardRepository{db: db}
}

func (r *PGCardRepository) GetByID(ctx context.Context, id int64) (*domain.Card, error) {
	row := r.db.QueryRow(ctx, `SELECT id, holder, address, number, expiry, cvv, created_at, updated_at FROM cards WHERE id=$1`, id)
	var c domain.Card
	if err := row.Scan(&c.ID, &c.Holder, &c.Address, &c.Number, &c.Expiry, &c.CVV, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

var _ CardRepository = (*PGCardRepository)(nil)

var cardPatchColumns = map[string]bool{
	"holder":  true,
	"address": true,
	"number":  true,
	"expiry":  true,
	"cvv":     true,
}

// CardExecutor handles standalone card mutations after registration. Card
// creation normally happens inside the account aggregate; Create here exists
// for administrative replacement of a card.
type CardExecutor struct{}

func NewCardExecutor() *CardExecutor {
	return &CardExecutor{}
}

func (e *CardExecutor) Create(ctx context.Context, tx pgx.Tx, payload any) error {
	c, ok := payload.(*domain.Card)
	if !ok {
		return fmt.Errorf("card create wants *domain.Card, got %T", payload)
	}
	return tx.QueryRow(ctx, `INSERT INTO cards (holder, address, number, expiry, cvv) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`,
		c.Holder, c.Address, c.Number, c.Expiry, c.CVV).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (e *CardExecutor) Update(ctx context.Context, tx pgx.Tx, key int64, payload any) error {
	c, ok := payload.(*domain.Card)
	if !ok {
		return fmt.Errorf("card update wants *domain.Card, got %T", payload)
	}
	res, err := tx.Exec(ctx, `UPDATE cards SET holder=$2, address=$3, number=$4, expiry=$5, cvv=$6, updated_at=now() WHERE id=$1`,
		key, c.Holder, c.Address, c.Number, c.Expiry, c.CVV)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return txn.ErrNoRowsAffected
	}
	return nil
}

func (e *CardExecutor) UpdateParams(ctx context.Context, tx pgx.Tx, key int64, params map[string]any) error {
	clause, args, err := buildPatch(params, cardPatchColumns)
	if err != nil {
		return err
	}
	res, err := tx.Exec(ctx, `UPDATE cards SET `+clause+`, updated_at=now() WHERE id=$1`, append([]any{key}, args...)...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return txn.ErrNoRowsAffected
	}
	return nil
}

func (e *CardExecutor) Delete(ctx context.Context, tx pgx.Tx, key int64) error {
	res, err := tx.Exec(ctx, `DELETE FROM cards WHERE id=$1`, key)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return txn.ErrNoRowsAffected
	}
	return nil
}

var _ txn.Executor = (*CardExecutor)(nil)

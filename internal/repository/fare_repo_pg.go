package repository

import (
	"context"
	"fmt"

	"github.com/dcastano/aeroops/internal/domain"
	"github.com/dcastano/aeroops/internal/txn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FareRepository interface {
	ListByTrip(ctx context.Context, tripID int64) ([]domain.Fare, error)
	GetByID(ctx context.Context, id int64) (*domain.Fare, error)
	SearchByName(ctx context.Context, name string) ([]domain.Fare, error)
}

type PGFareRepository struct {
	db *pgxpool.Pool
}

func NewFareRepository(db *pgxpool.Pool) *PGFareRepository {
	return &PGFareRepository{db: db}
}

const fareColumns = `id, trip_id, kind, name, price_cents, created_at, updated_at`

func (r *PGFareRepository) ListByTrip(ctx context.Context, tripID int64) ([]domain.Fare, error) {
	return r.queryFares(ctx, `SELECT `+fareColumns+` FROM fares WHERE trip_id=$1 ORDER BY id`, tripID)
}

func (r *PGFareRepository) SearchByName(ctx context.Context, name string) ([]domain.Fare, error) {
	return r.queryFares(ctx, `SELECT `+fareColumns+` FROM fares WHERE name ILIKE '%' || $1 || '%' ORDER BY id`, name)
}

func (r *PGFareRepository) queryFares(ctx context.Context, query string, arg any) ([]domain.Fare, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fares := make([]domain.Fare, 0)
	for rows.Next() {
		var f domain.Fare
		if err := rows.Scan(&f.ID, &f.TripID, &f.Kind, &f.Name, &f.PriceCents, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		fares = append(fares, f)
	}
	return fares, rows.Err()
}

func (r *PGFareRepository) GetByID(ctx context.Context, id int64) (*domain.Fare, error) {
	row := r.db.QueryRow(ctx, `SELECT `+fareColumns+` FROM fares WHERE id=$1`, id)
	var f domain.Fare
	if err := row.Scan(&f.ID, &f.TripID, &f.Kind, &f.Name, &f.PriceCents, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

var _ FareRepository = (*PGFareRepository)(nil)

var farePatchColumns = map[string]bool{
	"name":        true,
	"kind":        true,
	"price_cents": true,
}

type FareExecutor struct{}

func NewFareExecutor() *FareExecutor {
	return &FareExecutor{}
}

func (e *FareExecutor) Create(ctx context.Context, tx pgx.Tx, payload any) error {
	f, ok := payload.(*domain.Fare)
	if !ok {
		return fmt.Errorf("fare create wants *domain.Fare, got %T", payload)
	}
	return tx.QueryRow(ctx, `INSERT INTO fares (trip_id, kind, name, price_cents) VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`,
		f.TripID, f.Kind, f.Name, f.PriceCents).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
}

func (e *FareExecutor) Update(ctx context.Context, tx pgx.Tx, key int64, payload any) error {
	f, ok := payload.(*domain.Fare)
	if !ok {
		return fmt.Errorf("fare update wants *domain.Fare, got %T", payload)
	}
	res, err := tx.Exec(ctx, `UPDATE fares SET kind=$2, name=$3, price_cents=$4, updated_at=now() WHERE id=$1`, key, f.Kind, f.Name, f.PriceCents)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return txn.ErrNoRowsAffected
	}
	return nil
}

func (e *FareExecutor) UpdateParams(ctx context.Context, tx pgx.Tx, key int64, params map[string]any) error {
	clause, args, err := buildPatch(params, farePatchColumns)
	if err != nil {
		return err
	}
	res, err := tx.Exec(ctx, `UPDATE fares SET `+clause+`, updated_at=now() WHERE id=$1`, append([]any{key}, args...)...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return txn.ErrNoRowsAffected
	}
	return nil
}

func (e *FareExecutor) Delete(ctx context.Context, tx pgx.Tx, key int64) error {
	res, err := tx.Exec(ctx, `DELETE FROM fares WHERE id=$1`, key)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return txn.ErrNoRowsAffected
	}
	return nil
}

var _ txn.Executor = (*FareExecutor)(nil)

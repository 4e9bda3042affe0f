package repository

import (
	"context"
	"fmt"

	"github.com/dcastano/aeroops/internal/domain"
	"github.com/dcastano/aeroops/internal/txn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AirportRepository interface {
	List(ctx context.Context) ([]domain.Airport, error)
	GetByID(ctx context.Context, id int64) (*domain.Airport, error)
}

type PGAirportRepository struct {
	db *pgxpool.Pool
}

func NewAirportRepository(db *pgxpool.Pool) *PGAirportRepository {
	return &PGAirportRepository{db: db}
}

func (r *PGAirportRepository) List(ctx context.Context) ([]domain.Airport, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, code, location_id, created_at, updated_at FROM airports ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	airports := make([]domain.Airport, 0)
	for rows.Next() {
		var a domain.Airport
		if err := rows.Scan(&a.ID, &a.Name, &a.Code, &a.LocationID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		airports = append(airports, a)
	}
	return airports, rows.Err()
}

func (r *PGAirportRepository) GetByID(ctx context.Context, id int64) (*domain.Airport, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, code, location_id, created_at, updated_at FROM airports WHERE id=$1`, id)
	var a domain.Airport
	if err := row.Scan(&a.ID, &a.Name, &a.Code, &a.LocationID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

var _ AirportRepository = (*PGAirportRepository)(nil)

var airportPatchColumns = map[string]bool{
	"name":        true,
	"code":        true,
	"location_id": true,
}

type AirportExecutor struct{}

func NewAirportExecutor() *AirportExecutor {
	return &AirportExecutor{}
}

func (e *AirportExecutor) Create(ctx context.Context, tx pgx.Tx, payload any) error {
	a, ok := payload.(*domain.Airport)
	if !ok {
		return fmt.Errorf("airport create wants *domain.Airport, got %T", payload)
	}
	return tx.QueryRow(ctx, `INSERT INTO airports (name, code, location_id) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`,
		a.Name, a.Code, a.LocationID).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (e *AirportExecutor) Update(ctx context.Context, tx pgx.Tx, key int64, payload any) error {
	a, ok := payload.(*domain.Airport)
	if !ok {
		return fmt.Errorf("airport update wants *domain.Airport, got %T", payload)
	}
	res, err := tx.Exec(ctx, `UPDATE airports SET name=$2, code=$3, location_id=$4, updated_at=now() WHERE id=$1`, key, a.Name, a.Code, a.LocationID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return txn.ErrNoRowsAffected
	}
	return nil
}

func (e *AirportExecutor) UpdateParams(ctx context.Context, tx pgx.Tx, key int64, params map[string]any) error {
	clause, args, err := buildPatch(params, airportPatchColumns)
	if err != nil {
		return err
	}
	res, err := tx.Exec(ctx, `UPDATE airports SET `+clause+`, updated_at=now() WHERE id=$1`, append([]any{key}, args...)...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return txn.ErrNoRowsAffected
	}
	return nil
}

func (e *AirportExecutor) Delete(ctx context.Context, tx pgx.Tx, key int64) error {
	res, err := tx.Exec(ctx, `DELETE FROM airports WHERE id=$1`, key)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return txn.ErrNoRowsAffected
	}
	return nil
}

var _ txn.Executor = (*AirportExecutor)(nil)

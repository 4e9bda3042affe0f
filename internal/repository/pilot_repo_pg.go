package repository

import (
	"context"
	"fmt"

	"github.com/dcastano/aeroops/internal/domain"
	"github.com/dcastano/aeroops/internal/txn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PilotRepository interface {
	List(ctx context.Context) ([]domain.Pilot, error)
	GetByID(ctx context.Context, id int64) (*domain.Pilot, error)
}

type PGPilotRepository struct {
	db *pgxpool.Pool
}

func NewPilotRepository(db *pgxpool.Pool) *PGPilotRepository {
	return &PGPilotRepository{db: db}
}

func (r *PGPilotRepository) List(ctx context.Context) ([]domain.Pilot, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, license, created_at, updated_at FROM pilots ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pilots := make([]domain.Pilot, 0)
	for rows.Next() {
		var p domain.Pilot
		if err := rows.Scan(&p.ID, &p.Name, &p.License, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		pilots = append(pilots, p)
	}
	return pilots, rows.Err()
}

func (r *PGPilotRepository) GetByID(ctx context.Context, id int64) (*domain.Pilot, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, license, created_at, updated_at FROM pilots WHERE id=$1`, id)
	var p domain.Pilot
	if err := row.Scan(&p.ID, &p.Name, &p.License, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

var _ PilotRepository = (*PGPilotRepository)(nil)

var pilotPatchColumns = map[string]bool{
	"name":    true,
	"license": true,
}

type PilotExecutor struct{}

func NewPilotExecutor() *PilotExecutor {
	return &PilotExecutor{}
}

func (e *PilotExecutor) Create(ctx context.Context, tx pgx.Tx, payload any) error {
	p, ok := payload.(*domain.Pilot)
	if !ok {
		return fmt.Errorf("pilot create wants *domain.Pilot, got %T", payload)
	}
	return tx.QueryRow(ctx, `INSERT INTO pilots (name, license) VALUES ($1, $2) RETURNING id, created_at, updated_at`, p.Name, p.License).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (e *PilotExecutor) Update(ctx context.Context, tx pgx.Tx, key int64, payload any) error {
	p, ok := payload.(*domain.Pilot)
	if !ok {
		return fmt.Errorf("pilot update wants *domain.Pilot, got %T", payload)
	}
	res, err := tx.Exec(ctx, `UPDATE pilots SET name=$2, license=$3, updated_at=now() WHERE id=$1`, key, p.Name, p.License)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return txn.ErrNoRowsAffected
	}
	return nil
}

func (e *PilotExecutor) UpdateParams(ctx context.Context, tx pgx.Tx, key int64, params map[string]any) error {
	clause, args, err := buildPatch(params, pilotPatchColumns)
	if err != nil {
		return err
	}
	res, err := tx.Exec(ctx, `UPDATE pilots SET `+clause+`, updated_at=now() WHERE id=$1`, append([]any{key}, args...)...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return txn.ErrNoRowsAffected
	}
	return nil
}

func (e *PilotExecutor) Delete(ctx context.Context, tx pgx.Tx, key int64) error {
	res, err := tx.Exec(ctx, `DELETE FROM pilots WHERE id=$1`, key)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return txn.ErrNoRowsAffected
	}
	return nil
}

var _ txn.Executor = (*PilotExecutor)(nil)

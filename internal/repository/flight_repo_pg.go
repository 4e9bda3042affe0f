package repository

import (
	"context"
	"fmt"

	"github.com/dcastano/aeroops/internal/domain"
	"github.com/dcastano/aeroops/internal/txn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) *PGFlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `f.id, f.aircraft_id, f.pilot_id, f.copilot_id, f.crew_id, f.total_passengers, f.reserved_passengers, f.status, f.created_at, f.updated_at,
	a.id, a.model, a.capacity, a.created_at, a.updated_at`

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	var a domain.Aircraft
	if err := row.Scan(
		&f.ID, &f.AircraftID, &f.PilotID, &f.CopilotID, &f.CrewID, &f.TotalPassengers, &f.ReservedPassengers, &f.Status, &f.CreatedAt, &f.UpdatedAt,
		&a.ID, &a.Model, &a.Capacity, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	f.Aircraft = &a
	return &f, nil
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights f JOIN aircraft a ON a.id = f.aircraft_id ORDER BY f.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights f JOIN aircraft a ON a.id = f.aircraft_id WHERE f.id=$1`, id))
}

var _ FlightRepository = (*PGFlightRepository)(nil)

// Seat-adjustment params understood by the flight executor. Every other key
// is a plain column patch.
const (
	ParamReserveSeats = "reserve_seats"
	ParamReleaseSeats = "release_seats"
)

var flightPatchColumns = map[string]bool{
	"status":      true,
	"aircraft_id": true,
	"pilot_id":    true,
	"copilot_id":  true,
	"crew_id":     true,
}

// FlightExecutor is the coordinator executor for flights. Seat adjustments
// go through a single conditional UPDATE joined against the aircraft
// capacity, so the availability check and the counter write sit in one
// statement: the row lock taken by UPDATE is the serialization point, and a
// refused condition rolls the whole transaction back with the counters
// untouched.
type FlightExecutor struct{}

func NewFlightExecutor() *FlightExecutor {
	return &FlightExecutor{}
}

func (e *FlightExecutor) Create(ctx context.Context, tx pgx.Tx, payload any) error {
	f, ok := payload.(*domain.Flight)
	if !ok {
		return fmt.Errorf("flight create wants *domain.Flight, got %T", payload)
	}
	return tx.QueryRow(ctx, `INSERT INTO flights (aircraft_id, pilot_id, copilot_id, crew_id, total_passengers, reserved_passengers, status) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at`,
		f.AircraftID, f.PilotID, f.CopilotID, f.CrewID, f.TotalPassengers, f.ReservedPassengers, f.Status).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
}

func (e *FlightExecutor) Update(ctx context.Context, tx pgx.Tx, key int64, payload any) error {
	f, ok := payload.(*domain.Flight)
	if !ok {
		return fmt.Errorf("flight update wants *domain.Flight, got %T", payload)
	}
	res, err := tx.Exec(ctx, `UPDATE flights SET aircraft_id=$2, pilot_id=$3, copilot_id=$4, crew_id=$5, status=$6, updated_at=now() WHERE id=$1`,
		key, f.AircraftID, f.PilotID, f.CopilotID, f.CrewID, f.Status)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return txn.ErrNoRowsAffected
	}
	return nil
}

func (e *FlightExecutor) UpdateParams(ctx context.Context, tx pgx.Tx, key int64, params map[string]any) error {
	if n, ok := intParam(params, ParamReserveSeats); ok {
		return e.reserveSeats(ctx, tx, key, n)
	}
	if n, ok := intParam(params, ParamReleaseSeats); ok {
		return e.releaseSeats(ctx, tx, key, n)
	}

	clause, args, err := buildPatch(params, flightPatchColumns)
	if err != nil {
		return err
	}
	res, err := tx.Exec(ctx, `UPDATE flights SET `+clause+`, updated_at=now() WHERE id=$1`, append([]any{key}, args...)...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return txn.ErrNoRowsAffected
	}
	return nil
}

func (e *FlightExecutor) Delete(ctx context.Context, tx pgx.Tx, key int64) error {
	res, err := tx.Exec(ctx, `DELETE FROM flights WHERE id=$1`, key)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return txn.ErrNoRowsAffected
	}
	return nil
}

// reserveSeats increments reserved_passengers only while
// capacity - (reserved + n) - total stays non-negative. Zero rows affected
// means the reservation would oversell the aircraft (or the flight is gone)
// and the transaction aborts.
func (e *FlightExecutor) reserveSeats(ctx context.Context, tx pgx.Tx, key int64, n int) error {
	if n <= 0 {
		return fmt.Errorf("seat count must be positive, got %d", n)
	}
	res, err := tx.Exec(ctx, `UPDATE flights f SET reserved_passengers = f.reserved_passengers + $2, updated_at = now()
		FROM aircraft a
		WHERE f.id = $1 AND a.id = f.aircraft_id
		AND a.capacity - (f.reserved_passengers + $2) - f.total_passengers >= 0`, key, n)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return txn.ErrCheckViolated
	}
	return nil
}

// releaseSeats is the inverse adjustment; the counter never drops below
// zero.
func (e *FlightExecutor) releaseSeats(ctx context.Context, tx pgx.Tx, key int64, n int) error {
	if n <= 0 {
		return fmt.Errorf("seat count must be positive, got %d", n)
	}
	res, err := tx.Exec(ctx, `UPDATE flights SET reserved_passengers = reserved_passengers - $2, updated_at = now()
		WHERE id = $1 AND reserved_passengers - $2 >= 0`, key, n)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return txn.ErrCheckViolated
	}
	return nil
}

func intParam(params map[string]any, key string) (int, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}

var _ txn.Executor = (*FlightExecutor)(nil)

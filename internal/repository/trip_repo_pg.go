package repository

import (
	"context"
	"fmt"

	"github.com/dcastano/aeroops/internal/domain"
	"github.com/dcastano/aeroops/internal/txn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TripRepository interface {
	List(ctx context.Context) ([]domain.Trip, error)
	GetByID(ctx context.Context, id int64) (*domain.Trip, error)
}

type PGTripRepository struct {
	db *pgxpool.Pool
}

func NewTripRepository(db *pgxpool.Pool) *PGTripRepository {
	return &PGTripRepository{db: db}
}

const tripColumns = `t.id, t.departure_time, t.arrival_time, t.status, t.origin_id, t.destination_id, t.flight_id, t.created_at, t.updated_at,
	o.id, o.name, o.code, o.location_id, o.created_at, o.updated_at,
	d.id, d.name, d.code, d.location_id, d.created_at, d.updated_at,
	f.id, f.aircraft_id, f.pilot_id, f.copilot_id, f.crew_id, f.total_passengers, f.reserved_passengers, f.status, f.created_at, f.updated_at,
	a.id, a.model, a.capacity, a.created_at, a.updated_at`

const tripJoins = ` FROM trips t
	JOIN airports o ON o.id = t.origin_id
	JOIN airports d ON d.id = t.destination_id
	JOIN flights f ON f.id = t.flight_id
	JOIN aircraft a ON a.id = f.aircraft_id`

func scanTrip(row pgx.Row) (*domain.Trip, error) {
	var t domain.Trip
	var origin, dest domain.Airport
	var f domain.Flight
	var a domain.Aircraft
	if err := row.Scan(
		&t.ID, &t.DepartureTime, &t.ArrivalTime, &t.Status, &t.OriginID, &t.DestinationID, &t.FlightID, &t.CreatedAt, &t.UpdatedAt,
		&origin.ID, &origin.Name, &origin.Code, &origin.LocationID, &origin.CreatedAt, &origin.UpdatedAt,
		&dest.ID, &dest.Name, &dest.Code, &dest.LocationID, &dest.CreatedAt, &dest.UpdatedAt,
		&f.ID, &f.AircraftID, &f.PilotID, &f.CopilotID, &f.CrewID, &f.TotalPassengers, &f.ReservedPassengers, &f.Status, &f.CreatedAt, &f.UpdatedAt,
		&a.ID, &a.Model, &a.Capacity, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	f.Aircraft = &a
	t.Origin = &origin
	t.Destination = &dest
	t.Flight = &f
	return &t, nil
}

func (r *PGTripRepository) List(ctx context.Context) ([]domain.Trip, error) {
	rows, err := r.db.Query(ctx, `SELECT `+tripColumns+tripJoins+` ORDER BY t.departure_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := make([]domain.Trip, 0)
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *t)
	}
	return trips, rows.Err()
}

func (r *PGTripRepository) GetByID(ctx context.Context, id int64) (*domain.Trip, error) {
	t, err := scanTrip(r.db.QueryRow(ctx, `SELECT `+tripColumns+tripJoins+` WHERE t.id=$1`, id))
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT id, trip_id, kind, name, price_cents, created_at, updated_at FROM fares WHERE trip_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var fare domain.Fare
		if err := rows.Scan(&fare.ID, &fare.TripID, &fare.Kind, &fare.Name, &fare.PriceCents, &fare.CreatedAt, &fare.UpdatedAt); err != nil {
			return nil, err
		}
		t.Fares = append(t.Fares, fare)
	}
	return t, rows.Err()
}

var _ TripRepository = (*PGTripRepository)(nil)

var tripPatchColumns = map[string]bool{
	"status":         true,
	"departure_time": true,
	"arrival_time":   true,
	"origin_id":      true,
	"destination_id": true,
	"flight_id":      true,
}

type TripExecutor struct{}

func NewTripExecutor() *TripExecutor {
	return &TripExecutor{}
}

func (e *TripExecutor) Create(ctx context.Context, tx pgx.Tx, payload any) error {
	t, ok := payload.(*domain.Trip)
	if !ok {
		return fmt.Errorf("trip create wants *domain.Trip, got %T", payload)
	}
	return tx.QueryRow(ctx, `INSERT INTO trips (departure_time, arrival_time, status, origin_id, destination_id, flight_id) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`,
		t.DepartureTime, t.ArrivalTime, t.Status, t.OriginID, t.DestinationID, t.FlightID).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (e *TripExecutor) Update(ctx context.Context, tx pgx.Tx, key int64, payload any) error {
	t, ok := payload.(*domain.Trip)
	if !ok {
		return fmt.Errorf("trip update wants *domain.Trip, got %T", payload)
	}
	res, err := tx.Exec(ctx, `UPDATE trips SET departure_time=$2, arrival_time=$3, status=$4, origin_id=$5, destination_id=$6, flight_id=$7, updated_at=now() WHERE id=$1`,
		key, t.DepartureTime, t.ArrivalTime, t.Status, t.OriginID, t.DestinationID, t.FlightID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return txn.ErrNoRowsAffected
	}
	return nil
}

func (e *TripExecutor) UpdateParams(ctx context.Context, tx pgx.Tx, key int64, params map[string]any) error {
	clause, args, err := buildPatch(params, tripPatchColumns)
	if err != nil {
		return err
	}
	res, err := tx.Exec(ctx, `UPDATE trips SET `+clause+`, updated_at=now() WHERE id=$1`, append([]any{key}, args...)...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return txn.ErrNoRowsAffected
	}
	return nil
}

func (e *TripExecutor) Delete(ctx context.Context, tx pgx.Tx, key int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM fares WHERE trip_id=$1`, key); err != nil {
		return err
	}
	res, err := tx.Exec(ctx, `DELETE FROM trips WHERE id=$1`, key)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return txn.ErrNoRowsAffected
	}
	return nil
}

var _ txn.Executor = (*TripExecutor)(nil)

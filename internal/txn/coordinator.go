package txn

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind tags the mutation a coordinator op performs. The vocabulary is stable:
// services branch on these tokens, never on SQL shape.
type Kind string

const (
	KindCreate           Kind = "Create"
	KindUpdate           Kind = "Update"
	KindDelete           Kind = "Delete"
	KindUpdateWithParams Kind = "Update-With-Parameters"
)

// Outcome is the uniform success/failure channel every transactional write
// reports through. Callers branch on token identity only.
type Outcome string

const (
	OutcomeSuccess Outcome = "Éxito"
	OutcomeFailure Outcome = "Error"
)

// FailureClass refines OutcomeFailure without widening the two-branch
// contract: callers that only care about success keep checking Outcome,
// callers that need detail inspect the class.
type FailureClass string

const (
	FailureNone        FailureClass = ""
	FailureConstraint  FailureClass = "constraint_violation"
	FailureNotFound    FailureClass = "not_found"
	FailureUnavailable FailureClass = "store_unavailable"
)

type Result struct {
	Outcome Outcome
	Class   FailureClass
	Err     error
}

func (r Result) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}

// Op is one tagged mutation against a single entity type. Create and Update
// carry a pointer payload; executors scan RETURNING columns back into it.
// UpdateWithParams carries a column patch keyed by entity id.
type Op struct {
	Kind    Kind
	Entity  string
	Key     int64
	Payload any
	Params  map[string]any
}

// Executor applies the four mutation kinds for one entity type on a
// transaction owned by the coordinator. Any returned error aborts the whole
// transaction.
type Executor interface {
	Create(ctx context.Context, tx pgx.Tx, payload any) error
	Update(ctx context.Context, tx pgx.Tx, key int64, payload any) error
	UpdateParams(ctx context.Context, tx pgx.Tx, key int64, params map[string]any) error
	Delete(ctx context.Context, tx pgx.Tx, key int64) error
}

// TxBeginner is satisfied by *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Coordinator executes tagged ops against registered entity executors inside
// one database transaction per Execute call: exactly one commit or one full
// rollback, no retries, no partial writes.
type Coordinator struct {
	db        TxBeginner
	executors map[string]Executor
}

func NewCoordinator(db TxBeginner) *Coordinator {
	return &Coordinator{db: db, executors: make(map[string]Executor)}
}

// Register wires the executor for an entity name. Registration happens at
// startup; the map is read-only afterwards.
func (c *Coordinator) Register(entity string, ex Executor) {
	c.executors[entity] = ex
}

// Execute runs all ops in order inside a single transaction. The first
// failing op aborts and rolls back everything before it.
func (c *Coordinator) Execute(ctx context.Context, ops ...Op) Result {
	if len(ops) == 0 {
		return failure(errors.New("no operations given"))
	}

	tx, err := c.db.Begin(ctx)
	if err != nil {
		return failure(fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback(ctx)

	for _, op := range ops {
		if err := c.apply(ctx, tx, op); err != nil {
			return failure(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return failure(fmt.Errorf("commit: %w", err))
	}
	return Result{Outcome: OutcomeSuccess}
}

func (c *Coordinator) apply(ctx context.Context, tx pgx.Tx, op Op) error {
	ex, ok := c.executors[op.Entity]
	if !ok {
		return fmt.Errorf("no executor registered for entity %q", op.Entity)
	}

	switch op.Kind {
	case KindCreate:
		return ex.Create(ctx, tx, op.Payload)
	case KindUpdate:
		return ex.Update(ctx, tx, op.Key, op.Payload)
	case KindUpdateWithParams:
		return ex.UpdateParams(ctx, tx, op.Key, op.Params)
	case KindDelete:
		return ex.Delete(ctx, tx, op.Key)
	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}

func failure(err error) Result {
	return Result{Outcome: OutcomeFailure, Class: Classify(err), Err: err}
}

// Classify maps a store error onto the coarse failure taxonomy. Integrity
// violations (class 23) and check failures are constraint errors; missing
// rows are not-found; anything else counts as the store being unavailable.
func Classify(err error) FailureClass {
	if err == nil {
		return FailureNone
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, ErrNoRowsAffected) {
		return FailureNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "23" {
			return FailureConstraint
		}
	}
	if errors.Is(err, ErrCheckViolated) {
		return FailureConstraint
	}
	return FailureUnavailable
}

// ErrNoRowsAffected is returned by executors when an update or delete
// matched nothing.
var ErrNoRowsAffected = errors.New("no rows affected")

// ErrCheckViolated is returned by executors whose conditional write was
// refused, e.g. a seat reservation that would oversell the aircraft.
var ErrCheckViolated = errors.New("check violated")

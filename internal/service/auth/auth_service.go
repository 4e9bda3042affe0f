package auth

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/dcastano/aeroops/internal/client"
	"github.com/dcastano/aeroops/internal/domain"
	"github.com/dcastano/aeroops/internal/hash"
	"github.com/dcastano/aeroops/internal/kafka"
	"github.com/dcastano/aeroops/internal/repository"
	"github.com/dcastano/aeroops/internal/token"
	"github.com/dcastano/aeroops/internal/txn"
	"github.com/jackc/pgx/v5"
)

type AuthUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Activate(ctx context.Context, input ActivateInput) error
}

// Coordinator is the transactional write channel; satisfied by
// *txn.Coordinator.
type Coordinator interface {
	Execute(ctx context.Context, ops ...txn.Op) txn.Result
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

var (
	// ErrAlreadyRegistered: the identifier is taken. Distinct from
	// ErrNotCreated, both map to a 400, never a 401.
	ErrAlreadyRegistered = errors.New("account already exists")
	// ErrNotCreated: the registration transaction rolled back.
	ErrNotCreated = errors.New("user not created")
	// ErrUnauthorized is the single error every login failure collapses to,
	// so callers cannot tell a wrong password from a missing or blocked
	// account.
	ErrUnauthorized = errors.New("unauthorized")
)

type RegisterInput struct {
	Identifier string
	Password   string
	Name       string
	Surname    string
	Age        int
	Card       CardInput
}

type CardInput struct {
	Holder  string
	Address string
	Number  string
	Expiry  string
	CVV     string
}

type RegisterResult struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
	Message    string `json:"message"`
}

type LoginInput struct {
	Identifier string
	Password   string
}

type LoginResult struct {
	AccessToken string `json:"access_token"`
	Identifier  string `json:"identifier"`
	Role        string `json:"role"`
	Message     string `json:"message"`
}

type ActivateInput struct {
	Identifier string
	Code       string
}

type AuthService struct {
	accounts    repository.AccountRepository
	coordinator Coordinator
	hasher      hash.Hasher
	validator   client.AccountValidator
	signer      token.Signer
	producer    Producer
	topic       string
	defaultRole string
}

func NewAuthService(
	accounts repository.AccountRepository,
	coordinator Coordinator,
	hasher hash.Hasher,
	validator client.AccountValidator,
	signer token.Signer,
	producer Producer,
	topic string,
	defaultRole string,
) *AuthService {
	if defaultRole == "" {
		defaultRole = "user"
	}
	return &AuthService{
		accounts:    accounts,
		coordinator: coordinator,
		hasher:      hasher,
		validator:   validator,
		signer:      signer,
		producer:    producer,
		topic:       topic,
		defaultRole: defaultRole,
	}
}

// Register runs the registration saga: duplicate check, one transaction for
// the User+Card+Account triple, then the external validator, then a second
// transaction for the hashed activation code. The two transactions are
// deliberately separate: a validator failure after the first commit leaves
// the account unactivated instead of rolling it back, since the validator
// cannot join the local transaction.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	existing, err := s.accounts.FindByIdentifier(ctx, input.Identifier)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	reg := &domain.Registration{
		User: domain.User{Name: input.Name, Surname: input.Surname, Age: input.Age},
		Card: domain.Card{
			Holder:  input.Card.Holder,
			Address: input.Card.Address,
			Number:  input.Card.Number,
			Expiry:  input.Card.Expiry,
			CVV:     input.Card.CVV,
		},
		Account: domain.Account{
			Identifier:   input.Identifier,
			PasswordHash: passwordHash,
			Role:         s.defaultRole,
			Status:       domain.AccountStatusInactive,
		},
	}

	res := s.coordinator.Execute(ctx, txn.Op{
		Kind:    txn.KindCreate,
		Entity:  repository.EntityAccount,
		Payload: reg,
	})
	if !res.Succeeded() {
		log.Printf("registration transaction failed for %s: %v", input.Identifier, res.Err)
		return nil, ErrNotCreated
	}

	s.activate(ctx, reg.Account)
	s.publishAccountEvent(ctx, "account_registered", reg.Account, input.Name)

	return &RegisterResult{
		Name:       input.Name,
		Identifier: input.Identifier,
		Message:    "user created",
	}, nil
}

// activate asks the external validator for an activation code and persists
// its hash. Any failure here is logged and swallowed: the account stays
// committed but unactivated, and the worker sweep picks it up later.
func (s *AuthService) activate(ctx context.Context, account domain.Account) {
	result, err := s.validator.ValidateAccount(ctx, account)
	if err != nil {
		log.Printf("account validator unreachable for %s: %v", account.Identifier, err)
		return
	}
	if result.Status != client.StatusAccepted {
		log.Printf("account validator rejected %s with status %d", account.Identifier, result.Status)
		return
	}

	codeHash, err := s.hasher.Hash(result.Code)
	if err != nil {
		log.Printf("hash activation code for %s: %v", account.Identifier, err)
		return
	}

	res := s.coordinator.Execute(ctx, txn.Op{
		Kind:   txn.KindUpdateWithParams,
		Entity: repository.EntityAccount,
		Key:    account.ID,
		Params: map[string]any{"activation_hash": codeHash},
	})
	if !res.Succeeded() {
		log.Printf("persist activation code for %s: %v", account.Identifier, res.Err)
	}
}

// Login gates on account status before the password so a blocked or
// inactive account fails even with the right credential. All failure
// branches surface the same ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	rec, err := s.accounts.FindByIdentifier(ctx, input.Identifier)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if rec.Account.Status != domain.AccountStatusActive {
		return nil, ErrUnauthorized
	}
	if !s.hasher.Compare(input.Password, rec.Account.PasswordHash) {
		return nil, ErrUnauthorized
	}

	accessToken, err := s.signer.Sign(rec.Account.Identifier, rec.Account.Role)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken: accessToken,
		Identifier:  rec.Account.Identifier,
		Role:        rec.Account.Role,
		Message:     "session active",
	}, nil
}

// Activate confirms the one-time code the validator issued and moves the
// account to ACTIVE. Unknown identifiers and wrong codes are
// indistinguishable.
func (s *AuthService) Activate(ctx context.Context, input ActivateInput) error {
	rec, err := s.accounts.FindByIdentifier(ctx, input.Identifier)
	if err != nil {
		return ErrUnauthorized
	}
	if rec.Account.ActivationHash == "" {
		return ErrUnauthorized
	}
	if !s.hasher.Compare(input.Code, rec.Account.ActivationHash) {
		return ErrUnauthorized
	}

	res := s.coordinator.Execute(ctx, txn.Op{
		Kind:   txn.KindUpdateWithParams,
		Entity: repository.EntityAccount,
		Key:    rec.Account.ID,
		Params: map[string]any{"status": string(domain.AccountStatusActive)},
	})
	if !res.Succeeded() {
		return res.Err
	}

	s.publishAccountEvent(ctx, "account_activated", rec.Account, rec.User.Name)
	return nil
}

func (s *AuthService) publishAccountEvent(ctx context.Context, eventType string, account domain.Account, name string) {
	if s.producer == nil || s.topic == "" {
		return
	}
	event := kafka.AccountEvent{
		Type:       eventType,
		Identifier: account.Identifier,
		Name:       name,
		AccountID:  account.ID,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.topic, account.Identifier, event); err != nil {
		log.Printf("publish %s event for %s: %v", eventType, account.Identifier, err)
	}
}

var _ AuthUseCase = (*AuthService)(nil)

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dcastano/aeroops/internal/client"
	"github.com/dcastano/aeroops/internal/domain"
	"github.com/dcastano/aeroops/internal/repository"
	"github.com/dcastano/aeroops/internal/txn"
)

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByIdentifier(ctx context.Context, identifier string) (*repository.AccountRecord, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.AccountRecord), args.Error(1)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListUnactivatedBefore(ctx context.Context, cutoff time.Time) ([]domain.Account, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

type MockCoordinator struct {
	mock.Mock
}

func (m *MockCoordinator) Execute(ctx context.Context, ops ...txn.Op) txn.Result {
	args := m.Called(ctx, ops)
	return args.Get(0).(txn.Result)
}

type MockHasher struct {
	mock.Mock
}

func (m *MockHasher) Hash(plaintext string) (string, error) {
	args := m.Called(plaintext)
	return args.String(0), args.Error(1)
}

func (m *MockHasher) Compare(plaintext, digest string) bool {
	args := m.Called(plaintext, digest)
	return args.Bool(0)
}

type MockValidator struct {
	mock.Mock
}

func (m *MockValidator) ValidateAccount(ctx context.Context, account domain.Account) (*client.ValidationResult, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.ValidationResult), args.Error(1)
}

type MockSigner struct {
	mock.Mock
}

func (m *MockSigner) Sign(identifier, role string) (string, error) {
	args := m.Called(identifier, role)
	return args.String(0), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func newService(accounts *MockAccountRepository, coordinator *MockCoordinator, hasher *MockHasher, validator *MockValidator, signer *MockSigner, producer *MockProducer) *AuthService {
	return NewAuthService(accounts, coordinator, hasher, validator, signer, producer, "notifications", "user")
}

func registerInput() RegisterInput {
	return RegisterInput{
		Identifier: "a@b.com",
		Password:   "secret-password",
		Name:       "John",
		Surname:    "Doe",
		Age:        30,
		Card: CardInput{
			Holder:  "John Doe",
			Address: "Main St 1",
			Number:  "4111111111111111",
			Expiry:  "12-27",
			CVV:     "123",
		},
	}
}

func isKind(kind txn.Kind) interface{} {
	return mock.MatchedBy(func(ops []txn.Op) bool {
		return len(ops) == 1 && ops[0].Kind == kind
	})
}

func TestRegister_Success(t *testing.T) {
	accounts := new(MockAccountRepository)
	coordinator := new(MockCoordinator)
	hasher := new(MockHasher)
	validator := new(MockValidator)
	signer := new(MockSigner)
	producer := new(MockProducer)
	svc := newService(accounts, coordinator, hasher, validator, signer, producer)

	accounts.On("FindByIdentifier", mock.Anything, "a@b.com").Return(nil, pgx.ErrNoRows)
	hasher.On("Hash", "secret-password").Return("$pw-digest", nil)
	coordinator.On("Execute", mock.Anything, isKind(txn.KindCreate)).
		Run(func(args mock.Arguments) {
			reg := args.Get(1).([]txn.Op)[0].Payload.(*domain.Registration)
			reg.Account.ID = 42
		}).
		Return(txn.Result{Outcome: txn.OutcomeSuccess}).Once()
	validator.On("ValidateAccount", mock.Anything, mock.Anything).
		Return(&client.ValidationResult{Status: client.StatusAccepted, Code: "654321"}, nil)
	hasher.On("Hash", "654321").Return("$code-digest", nil)
	coordinator.On("Execute", mock.Anything, isKind(txn.KindUpdateWithParams)).
		Return(txn.Result{Outcome: txn.OutcomeSuccess}).Once()
	producer.On("Publish", mock.Anything, "notifications", "a@b.com", mock.Anything).Return(nil)

	result, err := svc.Register(context.Background(), registerInput())

	assert.NoError(t, err)
	assert.Equal(t, "John", result.Name)
	assert.Equal(t, "a@b.com", result.Identifier)
	assert.Equal(t, "user created", result.Message)
	coordinator.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestRegister_DuplicateIdentifier(t *testing.T) {
	accounts := new(MockAccountRepository)
	coordinator := new(MockCoordinator)
	hasher := new(MockHasher)
	validator := new(MockValidator)
	svc := newService(accounts, coordinator, hasher, validator, new(MockSigner), new(MockProducer))

	accounts.On("FindByIdentifier", mock.Anything, "a@b.com").
		Return(&repository.AccountRecord{Account: domain.Account{Identifier: "a@b.com"}}, nil)

	result, err := svc.Register(context.Background(), registerInput())

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	coordinator.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestRegister_TransactionFails(t *testing.T) {
	accounts := new(MockAccountRepository)
	coordinator := new(MockCoordinator)
	hasher := new(MockHasher)
	validator := new(MockValidator)
	svc := newService(accounts, coordinator, hasher, validator, new(MockSigner), new(MockProducer))

	accounts.On("FindByIdentifier", mock.Anything, "a@b.com").Return(nil, pgx.ErrNoRows)
	hasher.On("Hash", "secret-password").Return("$pw-digest", nil)
	coordinator.On("Execute", mock.Anything, mock.Anything).
		Return(txn.Result{Outcome: txn.OutcomeFailure, Class: txn.FailureConstraint, Err: errors.New("duplicate key")})

	result, err := svc.Register(context.Background(), registerInput())

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNotCreated)
	// The saga never reaches the external validator when the local
	// transaction rolls back.
	validator.AssertNotCalled(t, "ValidateAccount", mock.Anything, mock.Anything)
}

func TestRegister_ValidatorUnreachable_AccountStaysCommitted(t *testing.T) {
	accounts := new(MockAccountRepository)
	coordinator := new(MockCoordinator)
	hasher := new(MockHasher)
	validator := new(MockValidator)
	producer := new(MockProducer)
	svc := newService(accounts, coordinator, hasher, validator, new(MockSigner), producer)

	accounts.On("FindByIdentifier", mock.Anything, "a@b.com").Return(nil, pgx.ErrNoRows)
	hasher.On("Hash", "secret-password").Return("$pw-digest", nil)
	coordinator.On("Execute", mock.Anything, isKind(txn.KindCreate)).
		Return(txn.Result{Outcome: txn.OutcomeSuccess}).Once()
	validator.On("ValidateAccount", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))
	producer.On("Publish", mock.Anything, "notifications", "a@b.com", mock.Anything).Return(nil)

	result, err := svc.Register(context.Background(), registerInput())

	// Registration still reports success; the account stays unactivated.
	assert.NoError(t, err)
	assert.Equal(t, "user created", result.Message)
	coordinator.AssertNumberOfCalls(t, "Execute", 1)
}

func TestRegister_ValidatorRejects_NoCodePersisted(t *testing.T) {
	accounts := new(MockAccountRepository)
	coordinator := new(MockCoordinator)
	hasher := new(MockHasher)
	validator := new(MockValidator)
	producer := new(MockProducer)
	svc := newService(accounts, coordinator, hasher, validator, new(MockSigner), producer)

	accounts.On("FindByIdentifier", mock.Anything, "a@b.com").Return(nil, pgx.ErrNoRows)
	hasher.On("Hash", "secret-password").Return("$pw-digest", nil)
	coordinator.On("Execute", mock.Anything, isKind(txn.KindCreate)).
		Return(txn.Result{Outcome: txn.OutcomeSuccess}).Once()
	validator.On("ValidateAccount", mock.Anything, mock.Anything).
		Return(&client.ValidationResult{Status: 500}, nil)
	producer.On("Publish", mock.Anything, "notifications", "a@b.com", mock.Anything).Return(nil)

	result, err := svc.Register(context.Background(), registerInput())

	assert.NoError(t, err)
	assert.NotNil(t, result)
	coordinator.AssertNumberOfCalls(t, "Execute", 1)
}

func activeRecord() *repository.AccountRecord {
	return &repository.AccountRecord{
		Account: domain.Account{
			ID:           42,
			Identifier:   "a@b.com",
			PasswordHash: "$pw-digest",
			Role:         "user",
			Status:       domain.AccountStatusActive,
		},
		User: domain.User{Name: "John", Surname: "Doe"},
	}
}

func TestLogin_Success(t *testing.T) {
	accounts := new(MockAccountRepository)
	hasher := new(MockHasher)
	signer := new(MockSigner)
	svc := newService(accounts, new(MockCoordinator), hasher, new(MockValidator), signer, new(MockProducer))

	accounts.On("FindByIdentifier", mock.Anything, "a@b.com").Return(activeRecord(), nil)
	hasher.On("Compare", "secret-password", "$pw-digest").Return(true)
	signer.On("Sign", "a@b.com", "user").Return("signed.jwt.token", nil)

	result, err := svc.Login(context.Background(), LoginInput{Identifier: "a@b.com", Password: "secret-password"})

	assert.NoError(t, err)
	assert.Equal(t, "signed.jwt.token", result.AccessToken)
	assert.Equal(t, "a@b.com", result.Identifier)
	assert.Equal(t, "user", result.Role)
	assert.Equal(t, "session active", result.Message)
}

func TestLogin_UnknownIdentifier(t *testing.T) {
	accounts := new(MockAccountRepository)
	svc := newService(accounts, new(MockCoordinator), new(MockHasher), new(MockValidator), new(MockSigner), new(MockProducer))

	accounts.On("FindByIdentifier", mock.Anything, "ghost@b.com").Return(nil, pgx.ErrNoRows)

	result, err := svc.Login(context.Background(), LoginInput{Identifier: "ghost@b.com", Password: "whatever"})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogin_WrongPassword(t *testing.T) {
	accounts := new(MockAccountRepository)
	hasher := new(MockHasher)
	svc := newService(accounts, new(MockCoordinator), hasher, new(MockValidator), new(MockSigner), new(MockProducer))

	accounts.On("FindByIdentifier", mock.Anything, "a@b.com").Return(activeRecord(), nil)
	hasher.On("Compare", "wrong", "$pw-digest").Return(false)

	result, err := svc.Login(context.Background(), LoginInput{Identifier: "a@b.com", Password: "wrong"})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogin_StatusGatesBeforePassword(t *testing.T) {
	for _, status := range []domain.AccountStatus{domain.AccountStatusInactive, domain.AccountStatusBlocked} {
		t.Run(string(status), func(t *testing.T) {
			rec := activeRecord()
			rec.Account.Status = status
			accounts := new(MockAccountRepository)
			hasher := new(MockHasher)
			svc := newService(accounts, new(MockCoordinator), hasher, new(MockValidator), new(MockSigner), new(MockProducer))

			accounts.On("FindByIdentifier", mock.Anything, "a@b.com").Return(rec, nil)

			result, err := svc.Login(context.Background(), LoginInput{Identifier: "a@b.com", Password: "secret-password"})

			assert.Nil(t, result)
			assert.ErrorIs(t, err, ErrUnauthorized)
			// A non-active account never gets as far as the password check.
			hasher.AssertNotCalled(t, "Compare", mock.Anything, mock.Anything)
		})
	}
}

func TestActivate_Success(t *testing.T) {
	rec := activeRecord()
	rec.Account.Status = domain.AccountStatusInactive
	rec.Account.ActivationHash = "$code-digest"
	accounts := new(MockAccountRepository)
	coordinator := new(MockCoordinator)
	hasher := new(MockHasher)
	producer := new(MockProducer)
	svc := newService(accounts, coordinator, hasher, new(MockValidator), new(MockSigner), producer)

	accounts.On("FindByIdentifier", mock.Anything, "a@b.com").Return(rec, nil)
	hasher.On("Compare", "654321", "$code-digest").Return(true)
	coordinator.On("Execute", mock.Anything, isKind(txn.KindUpdateWithParams)).
		Return(txn.Result{Outcome: txn.OutcomeSuccess}).Once()
	producer.On("Publish", mock.Anything, "notifications", "a@b.com", mock.Anything).Return(nil)

	err := svc.Activate(context.Background(), ActivateInput{Identifier: "a@b.com", Code: "654321"})

	assert.NoError(t, err)
	coordinator.AssertExpectations(t)
}

func TestActivate_WrongCode(t *testing.T) {
	rec := activeRecord()
	rec.Account.ActivationHash = "$code-digest"
	accounts := new(MockAccountRepository)
	coordinator := new(MockCoordinator)
	hasher := new(MockHasher)
	svc := newService(accounts, coordinator, hasher, new(MockValidator), new(MockSigner), new(MockProducer))

	accounts.On("FindByIdentifier", mock.Anything, "a@b.com").Return(rec, nil)
	hasher.On("Compare", "000000", "$code-digest").Return(false)

	err := svc.Activate(context.Background(), ActivateInput{Identifier: "a@b.com", Code: "000000"})

	assert.ErrorIs(t, err, ErrUnauthorized)
	coordinator.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestActivate_NoPendingCode(t *testing.T) {
	rec := activeRecord()
	rec.Account.ActivationHash = ""
	accounts := new(MockAccountRepository)
	svc := newService(accounts, new(MockCoordinator), new(MockHasher), new(MockValidator), new(MockSigner), new(MockProducer))

	accounts.On("FindByIdentifier", mock.Anything, "a@b.com").Return(rec, nil)

	err := svc.Activate(context.Background(), ActivateInput{Identifier: "a@b.com", Code: "654321"})

	assert.ErrorIs(t, err, ErrUnauthorized)
}

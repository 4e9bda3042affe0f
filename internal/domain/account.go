package domain

import "time"

type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "ACTIVE"
	AccountStatusInactive AccountStatus = "INACTIVE"
	AccountStatusBlocked  AccountStatus = "BLOCKED"
)

// Accounts are never deleted, only moved between statuses.
type Account struct {
	ID             int64
	Identifier     string
	PasswordHash   string
	Role           string
	Status         AccountStatus
	ActivationHash string
	UserID         int64
	CardID         int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type User struct {
	ID        int64
	Name      string
	Surname   string
	Age       int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Card struct {
	ID        int64
	Holder    string
	Address   string
	Number    string
	Expiry    string // MM-YY
	CVV       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MaskedNumber keeps only the last four digits of the card number.
func (c Card) MaskedNumber() string {
	if len(c.Number) <= 4 {
		return c.Number
	}
	masked := make([]byte, len(c.Number))
	for i := range masked {
		masked[i] = '*'
	}
	copy(masked[len(masked)-4:], c.Number[len(c.Number)-4:])
	return string(masked)
}

// Registration is the User+Card+Account triple created as one atomic group.
// The account carries the foreign keys of the freshly inserted user and card.
type Registration struct {
	User    User
	Card    Card
	Account Account
}

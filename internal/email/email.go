package email

import (
	"context"
	"fmt"

	"github.com/dcastano/aeroops/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) SendAccountNotice(ctx context.Context, event kafka.AccountEvent) error {
	fmt.Printf("send email to %s about %s\n", event.Identifier, event.Type)
	return nil
}

func (s *Sender) SendBookingNotice(ctx context.Context, event kafka.BookingEvent) error {
	fmt.Printf("send email to %s about %s for trip %d (%d seats)\n", event.Identifier, event.Type, event.TripID, event.Seats)
	return nil
}

// SendActivationReminder nudges an account that registered but was never
// activated by the external validator.
func (s *Sender) SendActivationReminder(ctx context.Context, identifier string) error {
	fmt.Printf("send activation reminder to %s\n", identifier)
	return nil
}

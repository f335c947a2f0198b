package journey

import (
	"fmt"
	"time"
)

// Policy holds the failure probabilities and delays of every stage.
type Policy struct {
	LoginFailure        float64
	SearchFailure       float64
	EventFailure        float64
	TicketsUnavailable  float64
	HoldTimeout         float64
	OrderFailure        float64
	PaymentFailure      float64
	NotificationFailure float64

	NetworkDelay        time.Duration
	QueueDelay          time.Duration
	TicketTimeout       time.Duration
	FrontEndActionDelay time.Duration
}

// DefaultPolicy returns the simulator's default failure rates and delays.
func DefaultPolicy() Policy {
	return Policy{
		LoginFailure:        0.02,
		SearchFailure:       0.01,
		EventFailure:        0.01,
		TicketsUnavailable:  0.2,
		HoldTimeout:         0.3,
		OrderFailure:        0.03,
		PaymentFailure:      0.03,
		NotificationFailure: 0.03,

		NetworkDelay:        NetworkDelay,
		QueueDelay:          QueueDelay,
		TicketTimeout:       TicketTimeout,
		FrontEndActionDelay: FrontEndActionDelay,
	}
}

// NoFailures returns the default delays with every failure disabled.
func NoFailures() Policy {
	p := DefaultPolicy()
	p.LoginFailure = 0
	p.SearchFailure = 0
	p.EventFailure = 0
	p.TicketsUnavailable = 0
	p.HoldTimeout = 0
	p.OrderFailure = 0
	p.PaymentFailure = 0
	p.NotificationFailure = 0
	return p
}

// Validate rejects probabilities outside [0,1] and negative delays.
func (p Policy) Validate() error {
	probs := map[string]float64{
		"login failure":        p.LoginFailure,
		"search failure":       p.SearchFailure,
		"event failure":        p.EventFailure,
		"tickets unavailable":  p.TicketsUnavailable,
		"hold timeout":         p.HoldTimeout,
		"order failure":        p.OrderFailure,
		"payment failure":      p.PaymentFailure,
		"notification failure": p.NotificationFailure,
	}
	for name, v := range probs {
		if v < 0 || v > 1 {
			return fmt.Errorf("journey: %s probability %v out of range [0,1]", name, v)
		}
	}
	delays := map[string]time.Duration{
		"network delay":          p.NetworkDelay,
		"queue delay":            p.QueueDelay,
		"ticket timeout":         p.TicketTimeout,
		"front end action delay": p.FrontEndActionDelay,
	}
	for name, d := range delays {
		if d < 0 {
			return fmt.Errorf("journey: %s %v must not be negative", name, d)
		}
	}
	return nil
}

package journey

import (
	"context"
	"fmt"
	"time"
)

const (
	authService         = "auth-service"
	eventService        = "event-service"
	ticketService       = "ticket-service"
	orderService        = "order-service"
	billingService      = "billing-service"
	notificationService = "notification-service"
)

const maxSearchResults = 9

// State is what one stage hands to the next. It is passed by value; each stage
// returns an extended copy.
type State struct {
	UserID     string
	EventID    string
	NumTickets int
	OrderID    string
	Amount     float64
}

func (j *Journey) fails(p float64) bool {
	return j.rng.Float64() < p
}

// missed is fails counted from the top of the range: a draw below 1-p
// passes. The ticket service decides availability and purchase this way.
func (j *Journey) missed(p float64) bool {
	return j.rng.Float64() >= 1-p
}

// logIn simulates POST /login on the auth service and mints the user ID.
func (j *Journey) logIn(ctx context.Context, ts time.Time) (State, error) {
	c := j.begin(ctx, authService, "login", Advance(ts, j.policy.NetworkDelay, j.rng))

	userID := newID(j.rng)
	if j.fails(j.policy.LoginFailure) {
		err := NewOperationFailure(authService, "Failed login - Invalid credentials")
		c.error(Fields{Err: err})
		c.info(Fields{Message: "HTTP request", Method: "POST", URL: "/login", Status: 401})
		return State{}, c.finish(err)
	}
	c.info(Fields{Message: "User logged in", UserID: userID})
	c.info(Fields{Message: "HTTP request", Method: "POST", URL: "/login", Status: 200})
	return State{UserID: userID}, c.finish(nil)
}

// searchEvents simulates GET /events?category= and returns up to nine event IDs.
func (j *Journey) searchEvents(ctx context.Context, ts time.Time, category string) ([]string, error) {
	c := j.begin(ctx, eventService, "search_events", Advance(ts, j.policy.NetworkDelay, j.rng))
	url := "/events?category=" + category

	if j.fails(j.policy.SearchFailure) {
		err := NewOperationFailure(eventService, "Error searching for events - database query timed out")
		c.error(Fields{Err: err})
		c.info(Fields{Message: "HTTP request", Method: "GET", URL: url, Status: 500})
		return nil, c.finish(err)
	}
	// Every candidate event takes a fresh draw, so short result lists are rare.
	var eventIDs []string
	for len(eventIDs) < maxSearchResults && float64(len(eventIDs)) < j.rng.Float64()*10 {
		eventIDs = append(eventIDs, newID(j.rng))
	}
	c.info(Fields{Message: fmt.Sprintf("Found %d events", len(eventIDs)), Category: category})
	c.info(Fields{Message: "HTTP request", Method: "GET", URL: url, Status: 200})
	return eventIDs, c.finish(nil)
}

// getEvent simulates GET /events/{id}. Nothing it returns is used downstream.
func (j *Journey) getEvent(ctx context.Context, ts time.Time, eventID string) error {
	c := j.begin(ctx, eventService, "get_event", Advance(ts, j.policy.NetworkDelay, j.rng))
	url := "/events/" + eventID

	if j.fails(j.policy.EventFailure) {
		err := NewOperationFailure(eventService, "Error fetching event details - database query timed out")
		c.error(Fields{Err: err})
		c.info(Fields{Message: "HTTP request", Method: "GET", URL: url, Status: 500})
		return c.finish(err)
	}
	c.info(Fields{Message: "Fetched event details", EventID: eventID})
	c.info(Fields{Message: "HTTP request", Method: "GET", URL: url, Status: 200})
	return c.finish(nil)
}

// purchaseTickets checks availability, reserves, waits for the user to pay
// and hands the purchase to the order service.
func (j *Journey) purchaseTickets(ctx context.Context, ts time.Time, s State) (State, error) {
	c := j.begin(ctx, ticketService, "purchase_tickets", Advance(ts, j.policy.NetworkDelay, j.rng))
	body := &Body{EventID: s.EventID, NumTickets: s.NumTickets, UserID: s.UserID}

	c.info(Fields{Message: fmt.Sprintf("Checking availability for %d tickets", s.NumTickets), EventID: s.EventID})
	c.info(Fields{
		Message: "HTTP request",
		Method:  "GET",
		URL:     fmt.Sprintf("/availability?eventId=%s&numTickets=%d", s.EventID, s.NumTickets),
		Status:  200,
	})

	if j.missed(j.policy.TicketsUnavailable) {
		c.warn(Fields{Message: "Tickets not available", EventID: s.EventID})
		return s, c.finish(NewOperationFailure(ticketService, "Tickets not available"))
	}

	c.info(Fields{Message: fmt.Sprintf("Reserved %d tickets", s.NumTickets), EventID: s.EventID, UserID: s.UserID})
	c.info(Fields{Message: "HTTP request", Method: "POST", URL: "/tickets/reserve", Status: 200, Body: body})

	if j.missed(j.policy.HoldTimeout) {
		// The hold expires and the release job runs one full timeout later.
		c.ts = AdvanceFixed(AdvanceFixed(c.ts, j.policy.TicketTimeout), j.policy.TicketTimeout)
		c.warn(Fields{
			Message: fmt.Sprintf("Released hold on %d tickets after timeout", s.NumTickets),
			EventID: s.EventID,
			UserID:  s.UserID,
		})
		return s, c.finish(NewOperationFailure(ticketService, "User did not purchase tickets"))
	}

	c.ts = Advance(c.ts, j.policy.TicketTimeout, j.rng)
	c.info(Fields{Message: fmt.Sprintf("Purchased %d tickets", s.NumTickets), EventID: s.EventID, UserID: s.UserID})
	c.info(Fields{Message: "HTTP request", Method: "POST", URL: "/tickets/purchase", Status: 200, Body: body})
	c.info(Fields{Message: "Creating purchase event", EventID: s.EventID, UserID: s.UserID, NumTickets: s.NumTickets})
	if err := c.finish(nil); err != nil {
		return s, err
	}
	return j.createOrder(c.ctx, c.ts, s)
}

// createOrder consumes the purchase event from the queue, mints the order and
// prices it.
func (j *Journey) createOrder(ctx context.Context, ts time.Time, s State) (State, error) {
	c := j.begin(ctx, orderService, "create_order", Advance(ts, j.policy.QueueDelay, j.rng))

	c.info(Fields{Message: "Processing purchase event", EventID: s.EventID, UserID: s.UserID, NumTickets: s.NumTickets})
	if j.fails(j.policy.OrderFailure) {
		err := NewOperationFailure(orderService, "Error creating order - could not hold lock on database table")
		c.error(Fields{Err: err})
		return s, c.finish(err)
	}

	s.OrderID = newID(j.rng)
	c.info(Fields{Message: "Created Order", OrderID: s.OrderID})

	s.Amount = price(s.NumTickets, j.rng)
	c.info(Fields{Message: "Initiating payment", OrderID: s.OrderID, Amount: s.Amount, UserID: s.UserID, EventID: s.EventID})
	if err := c.finish(nil); err != nil {
		return s, err
	}
	return j.processPayment(c.ctx, c.ts, s)
}

// processPayment simulates POST /payment on the billing service.
func (j *Journey) processPayment(ctx context.Context, ts time.Time, s State) (State, error) {
	c := j.begin(ctx, billingService, "process_payment", Advance(ts, j.policy.NetworkDelay, j.rng))
	body := &Body{OrderID: s.OrderID, Amount: s.Amount, UserID: s.UserID, EventID: s.EventID}

	if j.fails(j.policy.PaymentFailure) {
		err := NewOperationFailure(billingService, "Payment failed - insufficient funds")
		c.error(Fields{Err: err, OrderID: s.OrderID})
		c.info(Fields{Message: "HTTP request", OrderID: s.OrderID, Method: "POST", URL: "/payment", Status: 500, Body: body})
		return s, c.finish(err)
	}
	c.info(Fields{Message: "Payment successful", OrderID: s.OrderID, UserID: s.UserID, EventID: s.EventID})
	c.info(Fields{Message: "HTTP request", OrderID: s.OrderID, Method: "POST", URL: "/payment", Status: 200, Body: body})
	c.info(Fields{Message: "Creating Payment successful event", OrderID: s.OrderID})
	if err := c.finish(nil); err != nil {
		return s, err
	}
	return j.sendNotification(c.ctx, c.ts, s)
}

// sendNotification consumes the payment event and emails the confirmation.
// The user has already been charged, so a failure here becomes a complaint.
func (j *Journey) sendNotification(ctx context.Context, ts time.Time, s State) (State, error) {
	c := j.begin(ctx, notificationService, "send_notification", Advance(ts, j.policy.QueueDelay, j.rng))

	c.info(Fields{Message: "Processing Payment successful event", OrderID: s.OrderID})
	if j.fails(j.policy.NotificationFailure) {
		err := NewCustomerComplaint("Order confirmation failed - Email service returned 429, too many requests error", s.UserID, s.OrderID)
		c.error(Fields{Err: err, OrderID: s.OrderID, EventID: s.EventID})
		return s, c.finish(err)
	}
	c.info(Fields{Message: "Order confirmation sent", OrderID: s.OrderID, UserID: s.UserID})
	return s, c.finish(nil)
}

// price is numTickets times a unit price drawn from [20,70) in cents.
func price(numTickets int, rng Source) float64 {
	unit := round2(rng.Float64()*50 + 20)
	return round2(float64(numTickets) * unit)
}

package journey

import (
	"time"
)

// Source is the random source a journey draws from. *rand.Rand satisfies it.
// Read is used to mint correlation and entity IDs so that seeded runs are
// reproducible end to end.
type Source interface {
	Float64() float64
	Intn(n int) int
	Read(p []byte) (n int, err error)
}

const (
	NetworkDelay        = 1 * time.Second
	QueueDelay          = 15 * time.Second
	TicketTimeout       = 10 * time.Second
	FrontEndActionDelay = 25 * time.Second
)

// Advance moves ts forward by a uniform random duration in [0, max).
func Advance(ts time.Time, max time.Duration, rng Source) time.Time {
	return ts.Add(time.Duration(rng.Float64() * float64(max)))
}

// AdvanceFixed moves ts forward by exactly d.
func AdvanceFixed(ts time.Time, d time.Duration) time.Time {
	return ts.Add(d)
}

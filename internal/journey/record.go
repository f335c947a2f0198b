package journey

import (
	"time"
)

// Level is the severity of an emitted record.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// TimestampLayout renders timestamps the way a JavaScript Date.toISOString
// does, which is what the log pipeline downstream indexes on.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Record is one structured log line produced by a simulated service.
// Only the fields relevant to the call are populated.
type Record struct {
	Level         Level    `json:"level"`
	Service       string   `json:"service"`
	CorrelationID string   `json:"correlationId"`
	Timestamp     string   `json:"timestamp"`
	Message       string   `json:"message"`
	Method        string   `json:"method,omitempty"`
	URL           string   `json:"url,omitempty"`
	Status        int      `json:"status,omitempty"`
	Body          *Body    `json:"body,omitempty"`
	ResponseTime  *float64 `json:"responseTime,omitempty"`
	StackTrace    string   `json:"stackTrace,omitempty"`
	UserID        string   `json:"userId,omitempty"`
	EventID       string   `json:"eventId,omitempty"`
	OrderID       string   `json:"orderId,omitempty"`
	Amount        float64  `json:"amount,omitempty"`
	Category      string   `json:"category,omitempty"`
	NumTickets    int      `json:"numTickets,omitempty"`

	// At is the simulated instant behind Timestamp.
	At time.Time `json:"-"`
}

// Body is the request payload logged alongside an HTTP call.
type Body struct {
	OrderID    string  `json:"orderId,omitempty"`
	EventID    string  `json:"eventId,omitempty"`
	NumTickets int     `json:"numTickets,omitempty"`
	UserID     string  `json:"userId,omitempty"`
	Amount     float64 `json:"amount,omitempty"`
}

// Fields is what a stage hands to the emitter for a single record.
type Fields struct {
	Timestamp  time.Time
	Message    string
	Err        error
	Method     string
	URL        string
	Status     int
	Body       *Body
	UserID     string
	EventID    string
	OrderID    string
	Amount     float64
	Category   string
	NumTickets int
}

// IsHTTP reports whether the record describes an HTTP call.
func (r Record) IsHTTP() bool {
	return r.Method != ""
}

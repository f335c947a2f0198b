package journey

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

var testNow = time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)

type memorySink struct {
	mu      sync.Mutex
	records []Record
	closed  bool
}

func (m *memorySink) Write(_ context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func (m *memorySink) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *memorySink) all() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Record(nil), m.records...)
}

func (m *memorySink) byService(service string) []Record {
	var out []Record
	for _, r := range m.all() {
		if r.Service == service {
			out = append(out, r)
		}
	}
	return out
}

func newTestJourney(sink Sink, seed int64, p Policy) *Journey {
	return New(Config{
		Sink:   sink,
		Rand:   rand.New(rand.NewSource(seed)),
		Policy: p,
		Now:    func() time.Time { return testNow },
	})
}

func messages(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Message
	}
	return out
}

// constSource returns the same draw every time. IDs come out identical.
type constSource float64

func (c constSource) Float64() float64 { return float64(c) }

func (c constSource) Intn(n int) int { return int(float64(c) * float64(n)) }

func (c constSource) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(i)
	}
	return len(p), nil
}

func newDrawJourney(sink Sink, draw float64, p Policy) *Journey {
	return New(Config{
		Sink:   sink,
		Rand:   constSource(draw),
		Policy: p,
		Now:    func() time.Time { return testNow },
	})
}

package postgres

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/iho/coffre/internal/usecase"
)

// ULIDGenerator generates ULID-based IDs. IDs generated within the same
// millisecond still sort in generation order.
type ULIDGenerator struct {
	mu      sync.Mutex
	clock   usecase.Clock
	entropy *ulid.MonotonicEntropy
}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator(clock usecase.Clock) *ULIDGenerator {
	if clock == nil {
		clock = usecase.SystemClock{}
	}
	return &ULIDGenerator{
		clock:   clock,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.clock.Now()), g.entropy).String()
}

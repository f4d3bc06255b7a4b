// Package idgen builds the string identifiers used for invoices and payments.
package idgen

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	DefaultInvoicePrefix = "INV-"
	PaymentPrefix        = "PAY-"
)

// Generator yields prefix + ULID identifiers. ULIDs from one Generator are strictly
// increasing even within the same millisecond; the primary key still enforces uniqueness
// across processes.
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

func New() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

func (g *Generator) Next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
	return prefix + id.String()
}

func (g *Generator) Invoice(prefix string) string {
	if prefix == "" {
		prefix = DefaultInvoicePrefix
	}
	return g.Next(prefix)
}

func (g *Generator) Payment() string {
	return g.Next(PaymentPrefix)
}

package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insight"
	"golang.org/x/sync/singleflight"
)

// Coalescer lets concurrent requests for the same transaction set share one
// run of the wrapped generator.
type Coalescer struct {
	next  Generator
	bound time.Duration
	group singleflight.Group
}

// NewCoalescer wraps next. A shared run ignores the cancellation of any
// single caller and is limited to bound instead; zero means no extra bound.
func NewCoalescer(next Generator, bound time.Duration) *Coalescer {
	return &Coalescer{next: next, bound: bound}
}

// Generate returns the shared result, or runs next directly for a caller
// that gives up while waiting.
func (c *Coalescer) Generate(ctx context.Context, txs []domain.TransactionRecord) insight.Insight {
	key := Fingerprint(txs)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		shared := context.WithoutCancel(ctx)
		if c.bound > 0 {
			var cancel context.CancelFunc
			shared, cancel = context.WithTimeout(shared, c.bound)
			defer cancel()
		}
		return c.next.Generate(shared, txs), nil
	})

	select {
	case res := <-ch:
		return res.Val.(insight.Insight).Clone()
	case <-ctx.Done():
		// ctx is done so this skips the remote step.
		return c.next.Generate(ctx, txs)
	}
}

// fingerprintEntry is the canonical encoding of one record. JSON string
// escaping keeps separators inside IDs from merging records.
type fingerprintEntry struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Amount     string `json:"amount"`
	Category   string `json:"category"`
	OccurredOn string `json:"occurredOn"`
}

// Fingerprint identifies a transaction set independent of order.
func Fingerprint(txs []domain.TransactionRecord) string {
	lines := make([]string, 0, len(txs))
	for _, tx := range txs {
		// Marshalling a struct of strings cannot fail.
		line, _ := json.Marshal(fingerprintEntry{
			ID:         tx.ID,
			Kind:       string(tx.Kind),
			Amount:     tx.Amount.String(),
			Category:   string(tx.Category),
			OccurredOn: tx.OccurredOn.String(),
		})
		lines = append(lines, string(line))
	}
	sort.Strings(lines)

	h := sha256.New()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Package exchange models the USD/VES exchange rate as an append-only
// history instead of a single mutable value.
package exchange

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

// RateProvider supplies exchange rates to anything that converts money
type RateProvider interface {
	// Current returns the latest known rate
	Current(ctx context.Context) (valueobject.ExchangeRate, error)
	// AsOf returns the rate in effect at t
	AsOf(ctx context.Context, t time.Time) (valueobject.ExchangeRate, error)
	// Subscribe returns a channel receiving each newly recorded rate and a
	// function that cancels the subscription
	Subscribe() (<-chan valueobject.ExchangeRate, func())
}

// RateRecord is one stored entry of the rate history
type RateRecord struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Rate           valueobject.ExchangeRate
	CreatedAt      time.Time
}

// RateRepository persists the rate history of an organization
type RateRepository interface {
	// Append stores a new rate; history is never rewritten
	Append(ctx context.Context, record *RateRecord) error
	// EffectiveAt returns the latest entry whose effective time is <= t
	EffectiveAt(ctx context.Context, orgID uuid.UUID, t time.Time) (*RateRecord, error)
	// History returns entries with effective time in [from, to), oldest first
	History(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]RateRecord, error)
}

// History is an in-memory, time-ordered rate log
type History []valueobject.ExchangeRate

// Append adds r keeping the log ordered by effective time
func (h History) Append(r valueobject.ExchangeRate) History {
	out := append(h, r)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EffectiveAt().Before(out[j].EffectiveAt())
	})
	return out
}

// AsOf returns the latest rate effective at or before t
func (h History) AsOf(t time.Time) (valueobject.ExchangeRate, error) {
	idx := sort.Search(len(h), func(i int) bool {
		return h[i].EffectiveAt().After(t)
	})
	if idx == 0 {
		return valueobject.ExchangeRate{}, shared.NewDomainError(shared.CodeNotFound,
			"No exchange rate in effect at "+t.Format(time.RFC3339))
	}
	return h[idx-1], nil
}

package exchange

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

func mustRate(t *testing.T, v string, at time.Time) valueobject.ExchangeRate {
	t.Helper()
	r, err := valueobject.NewExchangeRate(decimal.RequireFromString(v), at, "bcv")
	require.NoError(t, err)
	return r
}

func TestHistory_AsOf(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 9, d, 9, 0, 0, 0, time.UTC) }

	var h History
	h = h.Append(mustRate(t, "38.10", day(3)))
	h = h.Append(mustRate(t, "36.50", day(1)))
	h = h.Append(mustRate(t, "39.00", day(5)))

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"exactly at first", day(1), "36.50"},
		{"between entries", day(4), "38.10"},
		{"after last", day(20), "39.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := h.AsOf(tt.at)
			require.NoError(t, err)
			assert.True(t, r.UsdToVes().Equal(decimal.RequireFromString(tt.want)))
		})
	}

	_, err := h.AsOf(day(1).Add(-time.Minute))
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

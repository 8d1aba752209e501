package event

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowi/backend/internal/domain/ledger"
	"github.com/flowi/backend/internal/domain/sales"
)

func TestHandlerRegistry_Register(t *testing.T) {
	t.Run("specific types", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newTestHandler()
		r.Register(h, ledger.EventTypePaymentApplied, ledger.EventTypeLedgerEntryPaid)

		assert.Len(t, r.GetHandlers(ledger.EventTypePaymentApplied), 1)
		assert.Len(t, r.GetHandlers(ledger.EventTypeLedgerEntryPaid), 1)
		assert.Empty(t, r.GetHandlers(sales.EventTypeSaleRecorded))
	})

	t.Run("no types means every event", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newTestHandler()
		r.Register(h)

		assert.Len(t, r.GetHandlers(sales.EventTypeQuotationExpired), 1)
		assert.Len(t, r.GetHandlers("anything"), 1)
	})

	t.Run("registering twice is a no-op", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newTestHandler()
		r.Register(h, ledger.EventTypePaymentApplied)
		r.Register(h, ledger.EventTypePaymentApplied)
		r.Register(h)

		assert.Len(t, r.GetHandlers(ledger.EventTypePaymentApplied), 1)
		assert.Equal(t, 1, r.Count())
	})

	t.Run("specific handlers come before wildcard ones", func(t *testing.T) {
		r := NewHandlerRegistry()
		wild := newTestHandler()
		specific := newTestHandler()
		r.Register(wild)
		r.Register(specific, ledger.EventTypeLedgerEntryOverdue)

		got := r.GetHandlers(ledger.EventTypeLedgerEntryOverdue)
		assert.Len(t, got, 2)
		assert.Same(t, specific, got[0])
		assert.Same(t, wild, got[1])
	})
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	r := NewHandlerRegistry()
	keep := newTestHandler()
	drop := newTestHandler()
	r.Register(keep, ledger.EventTypePaymentApplied)
	r.Register(drop, ledger.EventTypePaymentApplied, ledger.EventTypeLedgerEntryPaid)
	r.Register(drop)

	r.Unregister(drop)

	assert.Equal(t, 1, r.Count())
	assert.Len(t, r.GetHandlers(ledger.EventTypePaymentApplied), 1)
	assert.Empty(t, r.GetHandlers(ledger.EventTypeLedgerEntryPaid))
}

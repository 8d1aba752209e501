package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/flowi/backend/internal/domain/shared"
)

// Quotation lifecycle events
const (
	quotationEventSend    = "send"
	quotationEventApprove = "approve"
	quotationEventReject  = "reject"
	quotationEventExpire  = "expire"
	quotationEventConvert = "convert"
)

// QuotationFSM wraps a quotation with its state machine
type QuotationFSM struct {
	quotation *Quotation
	fsm       *fsm.FSM
}

// NewQuotationFSM creates a new quotation state machine positioned at the
// quotation's current status
func NewQuotationFSM(q *Quotation) *QuotationFSM {
	qfsm := &QuotationFSM{quotation: q}

	qfsm.fsm = fsm.NewFSM(
		string(q.Status),
		fsm.Events{
			// draft → sent
			{Name: quotationEventSend, Src: []string{string(QuotationStatusDraft)}, Dst: string(QuotationStatusSent)},

			// sent → approved
			{Name: quotationEventApprove, Src: []string{string(QuotationStatusSent)}, Dst: string(QuotationStatusApproved)},

			// sent/approved → rejected
			{Name: quotationEventReject, Src: []string{string(QuotationStatusSent), string(QuotationStatusApproved)}, Dst: string(QuotationStatusRejected)},

			// any open status → expired
			{Name: quotationEventExpire, Src: []string{string(QuotationStatusDraft), string(QuotationStatusSent), string(QuotationStatusApproved)}, Dst: string(QuotationStatusExpired)},

			// approved → converted, one way
			{Name: quotationEventConvert, Src: []string{string(QuotationStatusApproved)}, Dst: string(QuotationStatusConverted)},
		},
		fsm.Callbacks{},
	)

	return qfsm
}

// fire runs event and copies the resulting state back onto the quotation
func (q *QuotationFSM) fire(ctx context.Context, event string) error {
	if err := q.fsm.Event(ctx, event); err != nil {
		var noTransition fsm.NoTransitionError
		if errors.As(err, &noTransition) {
			return nil
		}
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot %s quotation %s in %s status", event, q.quotation.QuotationNumber, q.quotation.Status))
	}
	q.quotation.Status = QuotationStatus(q.fsm.Current())
	return nil
}

// Current returns the current state
func (q *QuotationFSM) Current() string {
	return q.fsm.Current()
}

// Can checks if a transition is possible
func (q *QuotationFSM) Can(event string) bool {
	return q.fsm.Can(event)
}

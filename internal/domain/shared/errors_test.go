package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewDomainError(CodeOverpayment, "payment of 25.00 exceeds outstanding 20.00")

	assert.True(t, errors.Is(err, ErrOverpayment))
	assert.False(t, errors.Is(err, ErrTerminalState))
	assert.True(t, errors.Is(fmt.Errorf("apply: %w", err), ErrOverpayment))
}

func TestWrapStorageError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, WrapStorageError(nil, "load entry"))
	})

	t.Run("raw errors become storage unavailable and keep the cause", func(t *testing.T) {
		cause := errors.New("connection reset by peer")
		err := WrapStorageError(cause, "load entry")
		assert.True(t, errors.Is(err, ErrStorageUnavailable))
		assert.True(t, errors.Is(err, cause))
		assert.Contains(t, err.Error(), "connection reset by peer")
	})

	t.Run("domain errors pass through", func(t *testing.T) {
		err := WrapStorageError(ErrNotFound, "load entry")
		assert.Equal(t, ErrNotFound, err)
	})
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, CodeExpired, ErrorCode(fmt.Errorf("wrap: %w", ErrExpired)))
	assert.Equal(t, "", ErrorCode(errors.New("plain")))
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2}, 21, Filter{Page: 2, PageSize: 10})
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 10, Filter{Page: 2, PageSize: 10}.Offset())
}

func TestNewFilter(t *testing.T) {
	f := NewFilter(0, 0, "", "")
	assert.Equal(t, Filter{Page: 1, PageSize: DefaultPageSize, OrderBy: "created_at", OrderDir: "desc"}, f)
	assert.Equal(t, 0, f.Offset())

	f = NewFilter(3, 500, "due_date", "asc")
	assert.Equal(t, MaxPageSize, f.PageSize)
	assert.Equal(t, "due_date", f.OrderBy)
	assert.Equal(t, "asc", f.OrderDir)
	assert.Equal(t, 2*MaxPageSize, f.Offset())
}

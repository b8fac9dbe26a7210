package orders

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/anishff444/nepwears/internal/domain"
	apperrors "github.com/anishff444/nepwears/pkg/errors"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) OrderHistory(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockAPI) OrderStatus(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func TestHistory_ReturnsOrders(t *testing.T) {
	m := new(mockAPI)
	ctx := context.Background()
	m.On("OrderHistory", ctx).Return([]domain.Order{{ID: "o-1", TotalAmount: 2200}}, nil)

	got := NewService(m, slog.Default()).History(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, "o-1", got[0].ID)
}

func TestHistory_FailureYieldsEmptyListAndLogs(t *testing.T) {
	m := new(mockAPI)
	ctx := context.Background()
	m.On("OrderHistory", ctx).Return(nil, apperrors.BadGateway("Internal Server Error"))

	var buf bytes.Buffer
	svc := NewService(m, slog.New(slog.NewJSONHandler(&buf, nil)))

	got := svc.History(ctx)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Contains(t, buf.String(), "failed to load order history")
}

func TestHistory_NilListBecomesEmpty(t *testing.T) {
	m := new(mockAPI)
	ctx := context.Background()
	m.On("OrderHistory", ctx).Return([]domain.Order(nil), nil)

	got := NewService(m, slog.Default()).History(ctx)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStatus(t *testing.T) {
	m := new(mockAPI)
	ctx := context.Background()
	m.On("OrderStatus", ctx, "o-1").Return(&domain.Order{ID: "o-1", PaymentStatus: domain.PaymentCompleted}, nil)
	m.On("OrderStatus", ctx, "o-404").Return(nil, apperrors.NotFound("order", "o-404"))

	svc := NewService(m, slog.Default())

	order, err := svc.Status(ctx, "o-1")
	require.NoError(t, err)
	assert.True(t, order.IsPaid())

	_, err = svc.Status(ctx, "o-404")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kickzshop/checkout/internal/domain"
)

var orderCols = []string{
	"id", "code", "user_id", "cart_id", "total_amount", "payment_status", "status",
	"shipping_address", "pg_name", "pg_response", "created_at", "updated_at",
}

func orderRow(id int64, code string, payload any) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(orderCols).
		AddRow(id, code, int64(3), int64(7), int64(25000), "PENDING", "PENDING",
			"221B Baker Street", "cashfree", payload, now, now)
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	params := domain.CreateOrderParams{
		Code:            "KICKZ-3-AB12CD34EF",
		UserID:          3,
		CartID:          7,
		TotalAmount:     25000,
		ShippingAddress: "221B Baker Street",
		GatewayName:     "cashfree",
	}

	t.Run("persists a pending order", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
			WithArgs(params.Code, params.UserID, params.CartID, params.TotalAmount,
				params.ShippingAddress, params.GatewayName).
			WillReturnRows(orderRow(11, params.Code, nil))

		order, err := New(mock).CreateOrder(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, int64(11), order.ID)
		assert.Equal(t, domain.PaymentPending, order.PaymentStatus)
		assert.Nil(t, order.GatewayResponse)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps a unique violation to ErrDuplicateOrderCode", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
			WithArgs(params.Code, params.UserID, params.CartID, params.TotalAmount,
				params.ShippingAddress, params.GatewayName).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_orders_code"})

		_, err = New(mock).CreateOrder(ctx, params)
		assert.ErrorIs(t, err, domain.ErrDuplicateOrderCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAttachGatewayResponse(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	payload := []byte(`{"payment_session_id":"sess_123"}`)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE orders SET pg_response")).
		WithArgs(int64(11), payload).
		WillReturnRows(orderRow(11, "KICKZ-3-AB12CD34EF", payload))

	order, err := New(mock).AttachGatewayResponse(context.Background(), 11, payload)
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(order.GatewayResponse))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkOrderFailed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	payload := []byte(`{"message":"order amount invalid"}`)
	mock.ExpectExec(regexp.QuoteMeta("payment_status = 'FAILED'")).
		WithArgs(int64(11), payload).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, New(mock).MarkOrderFailed(context.Background(), 11, payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderByCode(t *testing.T) {
	ctx := context.Background()

	t.Run("scopes by code and owner", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta("FROM orders")).
			WithArgs("KICKZ-3-AB12CD34EF", int64(3)).
			WillReturnRows(orderRow(11, "KICKZ-3-AB12CD34EF", nil))

		order, err := New(mock).GetOrderByCode(ctx, 3, "KICKZ-3-AB12CD34EF")
		require.NoError(t, err)
		assert.Equal(t, "KICKZ-3-AB12CD34EF", order.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("another user's code reports Order not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta("FROM orders")).
			WithArgs("KICKZ-3-AB12CD34EF", int64(99)).
			WillReturnRows(pgxmock.NewRows(orderCols))

		_, err = New(mock).GetOrderByCode(ctx, 99, "KICKZ-3-AB12CD34EF")
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"id", "name", "email", "mobile_number", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(3), "Arjun Mehta", "arjun@example.com", "+919876543210", time.Now()))

	user, err := New(mock).GetUser(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "arjun@example.com", user.Email)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs(int64(404)).
		WillReturnRows(pgxmock.NewRows(cols))

	_, err = New(mock).GetUser(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

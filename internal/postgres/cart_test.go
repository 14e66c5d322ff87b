package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kickzshop/checkout/internal/domain"
)

var cartColumns = []string{"id", "user_id", "active", "total_cart_value", "created_at", "updated_at"}

func TestClaimCart(t *testing.T) {
	ctx := context.Background()

	t.Run("claims an active cart exactly once", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE carts")).
			WithArgs(int64(7), int64(3)).
			WillReturnRows(pgxmock.NewRows(cartColumns).
				AddRow(int64(7), int64(3), false, int64(30000), now, now))

		cart, err := New(mock).ClaimCart(ctx, 7, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(7), cart.ID)
		assert.False(t, cart.Active)
		assert.True(t, cart.TotalValue.Valid)
		assert.Equal(t, int64(30000), cart.TotalValue.Int64)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inactive or foreign cart reports Cart not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE carts")).
			WithArgs(int64(7), int64(3)).
			WillReturnRows(pgxmock.NewRows(cartColumns))

		_, err = New(mock).ClaimCart(ctx, 7, 3)
		assert.ErrorIs(t, err, domain.ErrCartNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReleaseCart(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE carts SET active = TRUE")).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, New(mock).ReleaseCart(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCartItems(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"id", "cart_id", "product_variant_id", "name", "price", "unit_price", "quantity", "qty"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM cart_items")).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(1), int64(7), int64(41), "Air Max 95", int64(10000), nil, int64(2), nil).
			AddRow(int64(2), int64(7), nil, nil, nil, int64(5000), nil, int64(1)))

	items, err := New(mock).GetCartItems(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.True(t, items[0].Price.Valid)
	assert.False(t, items[0].UnitPrice.Valid)
	assert.Equal(t, "Air Max 95", items[0].Name.String)

	assert.False(t, items[1].Price.Valid)
	assert.Equal(t, int64(5000), items[1].UnitPrice.Int64)
	assert.Equal(t, int32(1), items[1].Qty.Int32)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager(t *testing.T) {
	ctx := context.Background()

	t.Run("commits when fn succeeds", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE carts SET active = TRUE")).
			WithArgs(int64(7)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		err = NewTxManager(mock).WithTx(ctx, func(ctx context.Context, s domain.Store) error {
			return s.ReleaseCart(ctx, 7)
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err = NewTxManager(mock).WithTx(ctx, func(ctx context.Context, s domain.Store) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("converts a panic into an internal error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		err = NewTxManager(mock).WithTx(ctx, func(ctx context.Context, s domain.Store) error {
			panic("unexpected")
		})
		require.Error(t, err)
		assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

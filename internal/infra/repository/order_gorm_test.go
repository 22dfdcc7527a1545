package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/infra/repository"
	repo "storefront/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderGorm_MarkShipped(t *testing.T) {
	db, mock := newMockDB(t)
	r := repository.NewOrderGormRepository(db)

	tn := "9400111"
	u := repo.ShipmentUpdate{TrackingNumber: &tn, ShippedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}

	//1件目: 書けた
	mock.ExpectExec(`UPDATE "orders" SET .+ WHERE .*id = .+status <> `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	//2件目: 既にshipped
	mock.ExpectExec(`UPDATE "orders" SET .+ WHERE .*id = .+status <> `).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := r.MarkShipped(context.Background(), 7, u)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.MarkShipped(context.Background(), 7, u)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderGorm_UpdateStatus(t *testing.T) {
	db, mock := newMockDB(t)
	r := repository.NewOrderGormRepository(db)

	mock.ExpectExec(`UPDATE "orders" SET "status"=.+ WHERE .*id = .+status = `).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := r.UpdateStatus(context.Background(), 7, model.OrderStatusCreated, model.OrderStatusProcessing)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderGorm_UpdateStatusError(t *testing.T) {
	db, mock := newMockDB(t)
	r := repository.NewOrderGormRepository(db)

	mock.ExpectExec(`UPDATE "orders"`).WillReturnError(errors.New("conn reset"))

	_, err := r.UpdateStatus(context.Background(), 7, model.OrderStatusCreated, model.OrderStatusProcessing)
	assert.Error(t, err)
}

func TestOrderGorm_FindByExternalIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	r := repository.NewOrderGormRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE fulfillment_external_id = `).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := r.FindByExternalID(context.Background(), "ext404")

	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderGorm_FindByPaymentSessionID(t *testing.T) {
	db, mock := newMockDB(t)
	r := repository.NewOrderGormRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE payment_session_id = `).
		WillReturnRows(sqlmock.NewRows([]string{"id", "payment_session_id", "customer_email", "status", "amount_total", "currency"}).
			AddRow(3, "cs_1", "jane@example.com", "processing", 4999, "usd"))
	mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE "order_items"."order_id" = `).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "variant_id", "name", "unit_price", "quantity"}).
			AddRow(1, 3, 9, "Tee", 2500, 2))

	o, found, err := r.FindByPaymentSessionID(context.Background(), "cs_1")

	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(3), o.ID)
	assert.Equal(t, model.OrderStatusProcessing, o.Status)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "Tee", o.Items[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderGorm_FindByPaymentSessionIDMissing(t *testing.T) {
	db, mock := newMockDB(t)
	r := repository.NewOrderGormRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE payment_session_id = `).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, found, err := r.FindByPaymentSessionID(context.Background(), "cs_none")

	require.NoError(t, err)
	assert.False(t, found)
}

func TestOrderGorm_ListPending(t *testing.T) {
	db, mock := newMockDB(t)
	r := repository.NewOrderGormRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE status IN \(.+\) ORDER BY id asc`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(1, "created").AddRow(2, "processing"))
	mock.ExpectQuery(`SELECT \* FROM "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

	orders, err := r.ListPending(context.Background())

	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, model.OrderStatusProcessing, orders[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderGorm_CreateDuplicateSession(t *testing.T) {
	db, mock := newMockDB(t)
	r := repository.NewOrderGormRepository(db)

	mock.ExpectQuery(`INSERT INTO "orders"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_orders_payment_session_id"})

	err := r.Create(context.Background(), &model.Order{PaymentSessionID: "cs_1", Status: model.OrderStatusCreated})

	assert.ErrorIs(t, err, repo.ErrDuplicate)
	assert.Contains(t, err.Error(), "idx_orders_payment_session_id")
}

func TestOrderGorm_CreateOtherError(t *testing.T) {
	db, mock := newMockDB(t)
	r := repository.NewOrderGormRepository(db)

	mock.ExpectQuery(`INSERT INTO "orders"`).WillReturnError(errors.New("conn reset"))

	err := r.Create(context.Background(), &model.Order{PaymentSessionID: "cs_1", Status: model.OrderStatusCreated})

	require.Error(t, err)
	assert.NotErrorIs(t, err, repo.ErrDuplicate)
}

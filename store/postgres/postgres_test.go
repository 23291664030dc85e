package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kevin07696/gateway-kit/gateway"
	"github.com/kevin07696/gateway-kit/store"
)

var recordColumns = []string{
	"id", "gateway", "operation", "order_id", "authorization_token",
	"success", "message", "error_code", "amount", "currency", "params", "created_at",
}

func newMockStore(t *testing.T) (pgxmock.PgxPoolIface, *RecordStore) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, New(mock, zap.NewNop(), time.Second)
}

func sampleRecord() *store.Record {
	return store.FromResult("adyen", gateway.OpAuthorize,
		gateway.NewMoney(1000, "USD"), "order-1",
		&gateway.Result{
			Success:       true,
			Message:       "Authorised",
			Authorization: "7914775043909934",
			Params:        map[string]string{"resultCode": "Authorised"},
		})
}

func TestSave(t *testing.T) {
	mock, s := newMockStore(t)
	rec := sampleRecord()

	mock.ExpectExec("INSERT INTO gateway_operations").
		WithArgs(rec.ID, "adyen", "authorize", "order-1", "7914775043909934",
			true, "Authorised", "", int64(1000), "USD", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.Save(context.Background(), rec)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDeclinedRecord(t *testing.T) {
	mock, s := newMockStore(t)
	rec := store.FromResult("ogone", gateway.OpPurchase,
		gateway.NewMoney(1500, "EUR"), "order-2",
		&gateway.Result{
			Success:   false,
			Message:   "Authorization refused",
			ErrorCode: gateway.ErrCardDeclined,
			Params:    map[string]string{"NCERROR": "30051001"},
		})

	mock.ExpectExec("INSERT INTO gateway_operations").
		WithArgs(rec.ID, "ogone", "purchase", "order-2", "",
			false, "Authorization refused", "card_declined", int64(1500), "EUR", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.Save(context.Background(), rec)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByAuthorization(t *testing.T) {
	mock, s := newMockStore(t)
	id := uuid.New()
	created := time.Now().UTC()

	mock.ExpectQuery("FROM gateway_operations").
		WithArgs("adyen", "7914775043909934").
		WillReturnRows(pgxmock.NewRows(recordColumns).AddRow(
			id, "adyen", "authorize", "order-1", "7914775043909934",
			true, "Authorised", "", int64(1000), "USD",
			[]byte(`{"resultCode":"Authorised"}`), created,
		))

	rec, err := s.FindByAuthorization(context.Background(), "adyen", "7914775043909934")

	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "authorize", rec.Operation)
	assert.Equal(t, int64(1000), rec.Amount)
	assert.Equal(t, "Authorised", rec.Params["resultCode"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByAuthorizationNotFound(t *testing.T) {
	mock, s := newMockStore(t)

	mock.ExpectQuery("FROM gateway_operations").
		WithArgs("adyen", "missing").
		WillReturnRows(pgxmock.NewRows(recordColumns))

	_, err := s.FindByAuthorization(context.Background(), "adyen", "missing")

	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByOrder(t *testing.T) {
	mock, s := newMockStore(t)
	created := time.Now().UTC()

	mock.ExpectQuery("FROM gateway_operations").
		WithArgs("cybersource", "order-9").
		WillReturnRows(pgxmock.NewRows(recordColumns).
			AddRow(uuid.New(), "cybersource", "authorize", "order-9", "123;tokA",
				true, "Successful transaction", "", int64(500), "USD", []byte(`{}`), created).
			AddRow(uuid.New(), "cybersource", "capture", "order-9", "456;tokB",
				true, "Successful transaction", "", int64(500), "USD", []byte(`{}`), created.Add(time.Minute)))

	records, err := s.ListByOrder(context.Background(), "cybersource", "order-9")

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "authorize", records[0].Operation)
	assert.Equal(t, "capture", records[1].Operation)
	require.NoError(t, mock.ExpectationsWereMet())
}

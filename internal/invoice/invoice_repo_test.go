package invoice_test

import (
	"context"
	"regexp"
	"testing"

	"go-derma/internal/invoice"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newRepoMock(t *testing.T) (invoice.Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	assert.NoError(t, err)
	return invoice.NewRepository(gdb), mock
}

func TestRepository_UpdateStatusBySet(t *testing.T) {
	ctx := context.Background()

	t.Run("touches only the named set", func(t *testing.T) {
		repo, mock := newRepoMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "invoices" SET "status"=$1,"updated_at"=$2 WHERE set_number = $3`)).
			WithArgs("Approved", sqlmock.AnyArg(), "S1").
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectCommit()

		n, err := repo.UpdateStatusBySet(ctx, "S1", invoice.StatusApproved)
		assert.NoError(t, err)
		assert.Equal(t, int64(3), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NO_SET matches blank and null", func(t *testing.T) {
		repo, mock := newRepoMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "invoices" SET "status"=$1,"updated_at"=$2 WHERE (set_number = '' OR set_number IS NULL)`)).
			WithArgs("On Hold", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		n, err := repo.UpdateStatusBySet(ctx, invoice.NoSet, invoice.StatusOnHold)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown set affects nothing", func(t *testing.T) {
		repo, mock := newRepoMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`WHERE set_number = $3`)).
			WithArgs("Rejected", sqlmock.AnyArg(), "S404").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		n, err := repo.UpdateStatusBySet(ctx, "S404", invoice.StatusRejected)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_UpdateStatus(t *testing.T) {
	repo, mock := newRepoMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "invoices" SET "status"=$1,"updated_at"=$2 WHERE id = $3`)).
		WithArgs("Rejected", sqlmock.AnyArg(), "inv-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := repo.UpdateStatus(context.Background(), "inv-1", invoice.StatusRejected)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByOwnerAndSet(t *testing.T) {
	repo, mock := newRepoMock(t)
	mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE created_by = \$1 AND \(+set_number = '' OR set_number IS NULL\)+ ORDER BY created_at DESC`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	invoices, err := repo.FindByOwnerAndSet(context.Background(), "u-1", invoice.NoSet)
	assert.NoError(t, err)
	assert.Empty(t, invoices)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByOwners(t *testing.T) {
	t.Run("empty list skips the query", func(t *testing.T) {
		repo, mock := newRepoMock(t)
		invoices, err := repo.FindByOwners(context.Background(), nil)
		assert.NoError(t, err)
		assert.Nil(t, invoices)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filters by owner list", func(t *testing.T) {
		repo, mock := newRepoMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "invoices" WHERE created_by IN ($1,$2) ORDER BY created_at ASC`)).
			WithArgs("u-1", "u-2").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByOwners(context.Background(), []string{"u-1", "u-2"})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

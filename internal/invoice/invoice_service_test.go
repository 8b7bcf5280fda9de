package invoice_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-derma/internal/invoice"
	invoiceerrors "go-derma/internal/invoice/errors"
	invoiceMock "go-derma/internal/invoice/mock"
	"go-derma/internal/messaging/outbox"
	outboxMock "go-derma/internal/messaging/outbox/mock"
	"go-derma/internal/shared/apperror"
	counterMock "go-derma/internal/shared/counter/mock"
	"go-derma/internal/user"
	userMock "go-derma/internal/user/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type serviceDeps struct {
	sqlMock   sqlmock.Sqlmock
	service   invoice.Service
	repo      *invoiceMock.MockRepository
	userRepo  *userMock.MockRepository
	counter   *counterMock.MockRepository
	outbox    *outboxMock.MockRepository
	redismock redismock.ClientMock
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	sqlDB, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	assert.NoError(t, err)

	rdb, redisMock := redismock.NewClientMock()
	repo := invoiceMock.NewMockRepository(ctrl)
	userRepo := userMock.NewMockRepository(ctrl)
	counterRepo := counterMock.NewMockRepository(ctrl)
	outboxRepo := outboxMock.NewMockRepository(ctrl)

	return &serviceDeps{
		sqlMock:   sqlMock,
		service:   invoice.NewService(gdb, repo, userRepo, counterRepo, outboxRepo, rdb),
		repo:      repo,
		userRepo:  userRepo,
		counter:   counterRepo,
		outbox:    outboxRepo,
		redismock: redisMock,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func dec(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func intPtr(v int) *int { return &v }

func TestInvoiceTotals(t *testing.T) {
	inv := invoice.Invoice{Items: []invoice.Item{
		{Rate: decimal.RequireFromString("100"), Qty: 2, Discount: decimal.RequireFromString("10")},
		{Rate: decimal.RequireFromString("50.50"), Qty: 1, Discount: decimal.Zero},
	}}

	totals := inv.Totals()
	assert.Equal(t, "250.5", totals.Subtotal.String())
	assert.Equal(t, "10", totals.Discount.String())
	assert.Equal(t, "240.5", totals.Total.String())
	assert.Equal(t, "190", inv.Items[0].Amount().String())
}

func TestInvoiceTotals_DiscountIsPerLineAmount(t *testing.T) {
	// 100x2 less 10, plus 50x1: the discount is subtracted once, not per unit.
	inv := invoice.Invoice{Items: []invoice.Item{
		{Rate: decimal.RequireFromString("100"), Qty: 2, Discount: decimal.RequireFromString("10")},
		{Rate: decimal.RequireFromString("50"), Qty: 1, Discount: decimal.Zero},
	}}

	totals := inv.Totals()
	assert.Equal(t, "250", totals.Subtotal.String())
	assert.Equal(t, "10", totals.Discount.String())
	assert.Equal(t, "240", totals.Total.String())
	assert.Equal(t, "50", inv.Items[1].Amount().String())
}

func TestStatusFromAction(t *testing.T) {
	assert.Equal(t, invoice.StatusApproved, invoice.StatusFromAction("approve"))
	assert.Equal(t, invoice.StatusRejected, invoice.StatusFromAction("reject"))
	assert.Equal(t, invoice.StatusOnHold, invoice.StatusFromAction("hold"))
	assert.Equal(t, invoice.StatusPending, invoice.StatusFromAction("whatever"))
	assert.False(t, invoice.Status("Paid").Valid())
}

func validCreate() invoice.CreateInvoiceRequest {
	return invoice.CreateInvoiceRequest{
		CustomerDetails: invoice.CustomerDetails{Name: "  Acme Clinic ", SetNumber: "S1"},
		Products: []invoice.ProductInput{
			{ProductName: "Serum", Rate: dec("100"), Quantity: intPtr(2), Discount: dec("10")},
			{ProductName: "Cream", Rate: dec("50")},
		},
	}
}

func TestInvoiceService_Create(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.NewString()

	t.Run("success - generated invoice number", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		deps.counter.EXPECT().GetNextValue(ctx, "global", "invoice_number").Return(int64(7), nil)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
			assert.Equal(t, "INV-000007", *inv.InvoiceNumber)
			assert.Equal(t, "Acme Clinic", inv.CustomerName)
			assert.Equal(t, invoice.StatusPending, inv.Status)
			assert.Len(t, inv.Items, 2)
			assert.Equal(t, 1, inv.Items[1].Qty)
			assert.True(t, inv.Items[1].Discount.IsZero())
			return nil
		})
		deps.redismock.ExpectIncr(invoice.SetsGenerationKey).SetVal(1)

		resp, err := deps.service.Create(ctx, ownerID, validCreate())
		assert.NoError(t, err)
		assert.Equal(t, "INV-000007", resp.InvoiceNo)
		assert.Equal(t, "240", resp.Total.String())
		assert.Equal(t, ownerID, resp.CreatedBy)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("duplicate invoice number", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		req := validCreate()
		req.CustomerDetails.InvoiceNumber = "INV-1"
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_invoices_number"})

		_, err := deps.service.Create(ctx, ownerID, req)
		assert.ErrorIs(t, err, invoiceerrors.ErrDuplicateInvoiceNumber)
	})

	t.Run("negative rate rejected before any write", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validCreate()
		req.Products[0].Rate = dec("-1")

		_, err := deps.service.Create(ctx, ownerID, req)
		httpErr := apperror.ToHTTP(err)
		assert.Equal(t, 400, httpErr.Status)
		assert.Equal(t, apperror.CodeValidation, httpErr.Code)
	})

	t.Run("blank customer name", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validCreate()
		req.CustomerDetails.Name = "   "

		_, err := deps.service.Create(ctx, ownerID, req)
		assert.Equal(t, apperror.CodeValidation, apperror.ToHTTP(err).Code)
	})
}

func TestInvoiceService_SearchMine(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t)
	ownerID := uuid.NewString()

	deps.repo.EXPECT().FindByOwnerAndSet(ctx, ownerID, "S9").Return(nil, nil)

	_, err := deps.service.SearchMine(ctx, ownerID, "S9")
	assert.ErrorIs(t, err, invoiceerrors.ErrNoBillsForSet)
}

func TestInvoiceService_ListSets(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t)

	alice := user.User{ID: uuid.New(), Email: "alice@example.com"}
	bob := uuid.New()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	inv1 := invoice.Invoice{ID: uuid.New(), SetNumber: "S1", CreatedBy: alice.ID, Status: invoice.StatusPending, CreatedAt: base}
	inv2 := invoice.Invoice{ID: uuid.New(), SetNumber: "", CreatedBy: bob, Status: invoice.StatusApproved, CreatedAt: base.Add(24 * time.Hour)}
	inv3 := invoice.Invoice{ID: uuid.New(), SetNumber: "S1", CreatedBy: bob, Status: invoice.StatusRejected, CreatedAt: base.Add(48 * time.Hour)}

	expected := []invoice.SetSummary{
		{SetNumber: invoice.NoSet, Invoices: []string{inv2.ID.String()}, User: "Unknown", Date: "2026-03-02", Status: invoice.StatusApproved, Count: 1},
		{SetNumber: "S1", Invoices: []string{inv1.ID.String(), inv3.ID.String()}, User: "alice@example.com", Date: "2026-03-01", Status: invoice.StatusPending, Count: 2},
	}
	payload, _ := json.Marshal(expected)

	ownerIDs := []string{alice.ID.String(), bob.String()}
	all := []invoice.Invoice{inv1, inv2, inv3}

	deps.redismock.ExpectGet(invoice.SetsGenerationKey).RedisNil()
	deps.redismock.ExpectGet(invoice.SetsCacheKeyFor(0)).RedisNil()
	deps.repo.EXPECT().FindAllOrdered(ctx).Return(all, nil)
	deps.userRepo.EXPECT().FindByIDs(ctx, ownerIDs).Return([]user.User{alice}, nil)
	deps.redismock.ExpectSet(invoice.SetsCacheKeyFor(0), payload, 5*time.Minute).SetVal("OK")

	sets, err := deps.service.ListSets(ctx)
	assert.NoError(t, err)
	assert.Equal(t, expected, sets)

	t.Run("cache hit skips the database", func(t *testing.T) {
		deps.redismock.ExpectGet(invoice.SetsGenerationKey).RedisNil()
		deps.redismock.ExpectGet(invoice.SetsCacheKeyFor(0)).SetVal(string(payload))

		cached, err := deps.service.ListSets(ctx)
		assert.NoError(t, err)
		assert.Equal(t, expected, cached)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("bumped generation ignores the old entry", func(t *testing.T) {
		// v0 still holds data, but after an invalidation readers only look at v1.
		deps.redismock.ExpectGet(invoice.SetsGenerationKey).SetVal("1")
		deps.redismock.ExpectGet(invoice.SetsCacheKeyFor(1)).RedisNil()
		deps.repo.EXPECT().FindAllOrdered(ctx).Return(all, nil)
		deps.userRepo.EXPECT().FindByIDs(ctx, ownerIDs).Return([]user.User{alice}, nil)
		deps.redismock.ExpectSet(invoice.SetsCacheKeyFor(1), payload, 5*time.Minute).SetVal("OK")

		fresh, err := deps.service.ListSets(ctx)
		assert.NoError(t, err)
		assert.Equal(t, expected, fresh)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("unreadable generation bypasses the cache", func(t *testing.T) {
		deps.redismock.ExpectGet(invoice.SetsGenerationKey).SetErr(errors.New("redis down"))
		deps.repo.EXPECT().FindAllOrdered(ctx).Return(all, nil)
		deps.userRepo.EXPECT().FindByIDs(ctx, ownerIDs).Return([]user.User{alice}, nil)

		fresh, err := deps.service.ListSets(ctx)
		assert.NoError(t, err)
		assert.Equal(t, expected, fresh)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})
}

func TestSetsCacheKeyFor(t *testing.T) {
	assert.Equal(t, "invoices:sets:v0", invoice.SetsCacheKeyFor(0))
	assert.Equal(t, "invoices:sets:v12", invoice.SetsCacheKeyFor(12))
}

func TestInvoiceService_UpdateSetStatus(t *testing.T) {
	ctx := context.Background()
	reviewer := uuid.NewString()

	t.Run("hold moves whole set and queues event", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().UpdateStatusBySet(ctx, "S1", invoice.StatusOnHold).Return(int64(3), nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, evt outbox.Event) error {
			assert.Equal(t, "invoice_set_status_changed", evt.EventType)
			assert.Equal(t, "S1", evt.AggregateID)
			return nil
		})
		deps.redismock.ExpectIncr(invoice.SetsGenerationKey).SetVal(1)

		resp, err := deps.service.UpdateSetStatus(ctx, reviewer, "S1", "hold")
		assert.NoError(t, err)
		assert.Equal(t, int64(3), resp.Affected)
		assert.Equal(t, invoice.StatusOnHold, resp.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("unknown set", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().UpdateStatusBySet(ctx, "nope", invoice.StatusPending).Return(int64(0), nil)

		_, err := deps.service.UpdateSetStatus(ctx, reviewer, "nope", "bogus")
		assert.ErrorIs(t, err, invoiceerrors.ErrSetNotFound)
	})
}

func TestInvoiceService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("invalid status", func(t *testing.T) {
		deps := setupServiceTest(t)
		_, err := deps.service.UpdateStatus(ctx, id.String(), "Paid")
		assert.ErrorIs(t, err, invoiceerrors.ErrInvalidStatus)
	})

	t.Run("unknown invoice", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().UpdateStatus(ctx, id.String(), invoice.StatusApproved).Return(int64(0), nil)

		_, err := deps.service.UpdateStatus(ctx, id.String(), invoice.StatusApproved)
		assert.ErrorIs(t, err, invoiceerrors.ErrInvoiceNotFound)
	})

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().UpdateStatus(ctx, id.String(), invoice.StatusApproved).Return(int64(1), nil)
		deps.redismock.ExpectIncr(invoice.SetsGenerationKey).SetVal(1)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(&invoice.Invoice{ID: id, Status: invoice.StatusApproved}, nil)

		resp, err := deps.service.UpdateStatus(ctx, id.String(), invoice.StatusApproved)
		assert.NoError(t, err)
		assert.Equal(t, invoice.StatusApproved, resp.Status)
	})
}

func TestInvoiceService_GetDetail(t *testing.T) {
	ctx := context.Background()

	t.Run("malformed id is not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		_, err := deps.service.GetDetail(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, invoiceerrors.ErrInvoiceNotFound)
	})

	t.Run("creator email and totals", func(t *testing.T) {
		deps := setupServiceTest(t)
		owner := uuid.New()
		id := uuid.New()
		no := "INV-9"
		inv := &invoice.Invoice{
			ID: id, InvoiceNumber: &no, CustomerName: "Acme", CreatedBy: owner,
			CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			Items:     []invoice.Item{{Name: "Serum", Rate: decimal.RequireFromString("10"), Qty: 3, Discount: decimal.RequireFromString("5")}},
		}
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(inv, nil)
		deps.userRepo.EXPECT().FindByID(ctx, owner.String()).Return(&user.User{ID: owner, Email: "o@example.com"}, nil)

		resp, err := deps.service.GetDetail(ctx, id.String())
		assert.NoError(t, err)
		assert.Equal(t, "o@example.com", resp.CreatedBy)
		assert.Equal(t, "2026-01-02", resp.Date)
		assert.Equal(t, "25", resp.Total.String())
		assert.Equal(t, "25", resp.Products[0].Amount.String())
	})

	t.Run("missing creator shows Unknown", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(&invoice.Invoice{ID: id, CreatedBy: uuid.New()}, nil)
		deps.userRepo.EXPECT().FindByID(ctx, gomock.Any()).Return(nil, gorm.ErrRecordNotFound)

		resp, err := deps.service.GetDetail(ctx, id.String())
		assert.NoError(t, err)
		assert.Equal(t, "Unknown", resp.CreatedBy)
	})
}

func TestInvoiceService_RenderPDF(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t)
	id := uuid.New()
	no := "INV-1"

	deps.repo.EXPECT().FindByID(ctx, id.String()).Return(&invoice.Invoice{ID: id, InvoiceNumber: &no, CustomerName: "Acme (Pune)"}, nil)
	deps.userRepo.EXPECT().FindByID(ctx, gomock.Any()).Return(&user.User{Email: "o@example.com"}, nil)

	name, body, err := deps.service.RenderPDF(ctx, id.String())
	assert.NoError(t, err)
	assert.Equal(t, "invoice-INV-1.pdf", name)
	assert.Contains(t, string(body), "%PDF-1.4")
	assert.Contains(t, string(body), `Acme \(Pune\)`)
}

func TestInvoiceService_Edit(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	owner := uuid.New()

	t.Run("partial update keeps absent fields", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		no := "INV-1"
		existing := &invoice.Invoice{ID: id, InvoiceNumber: &no, CustomerName: "Old", SetNumber: "S1", Status: invoice.StatusPending, CreatedBy: owner}
		newName := "New Name"
		date := "2026-02-03"

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(existing, nil)
		deps.repo.EXPECT().ReplaceItems(ctx, id.String(), gomock.Any()).Return(nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
			assert.Equal(t, "New Name", inv.CustomerName)
			assert.Equal(t, "S1", inv.SetNumber)
			assert.Equal(t, owner, inv.CreatedBy)
			assert.Equal(t, time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), inv.CreatedAt)
			return nil
		})
		deps.redismock.ExpectIncr(invoice.SetsGenerationKey).SetVal(1)
		deps.userRepo.EXPECT().FindByID(ctx, owner.String()).Return(&user.User{ID: owner, Email: "o@example.com"}, nil)

		products := []invoice.ProductInput{{ProductName: "Toner", Rate: dec("20")}}
		resp, err := deps.service.Edit(ctx, id.String(), invoice.EditInvoiceRequest{
			CustomerName: &newName,
			Date:         &date,
			Products:     &products,
		})
		assert.NoError(t, err)
		assert.Equal(t, "INV-1", resp.InvoiceNo)
		assert.Equal(t, "20", resp.Total.String())
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("bad date", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		bad := "03/02/2026"
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(&invoice.Invoice{ID: id}, nil)

		_, err := deps.service.Edit(ctx, id.String(), invoice.EditInvoiceRequest{Date: &bad})
		assert.ErrorIs(t, err, invoiceerrors.ErrInvalidDate)
	})

	t.Run("unknown invoice", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Edit(ctx, id.String(), invoice.EditInvoiceRequest{})
		assert.ErrorIs(t, err, invoiceerrors.ErrInvoiceNotFound)
	})
}

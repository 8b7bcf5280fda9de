package punch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-derma/internal/messaging/outbox"
	outboxMock "go-derma/internal/messaging/outbox/mock"
	"go-derma/internal/punch"
	puncherrors "go-derma/internal/punch/errors"
	punchMock "go-derma/internal/punch/mock"
	"go-derma/internal/user"
	userMock "go-derma/internal/user/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	ist   = time.FixedZone("IST", 5*3600+1800)
	fixed = time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC) // 16:00 IST
)

type serviceDeps struct {
	sqlMock  sqlmock.Sqlmock
	service  punch.Service
	repo     *punchMock.MockRepository
	userRepo *userMock.MockRepository
	outbox   *outboxMock.MockRepository
}

func setupServiceTest(t *testing.T, oncePerDay bool) *serviceDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	sqlDB, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	assert.NoError(t, err)

	repo := punchMock.NewMockRepository(ctrl)
	userRepo := userMock.NewMockRepository(ctrl)
	outboxRepo := outboxMock.NewMockRepository(ctrl)

	svc := punch.NewService(gdb, repo, userRepo, outboxRepo, punch.Options{
		OncePerDay: oncePerDay,
		Location:   ist,
		Now:        func() time.Time { return fixed },
	})

	return &serviceDeps{sqlMock: sqlMock, service: svc, repo: repo, userRepo: userRepo, outbox: outboxRepo}
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

func ptr[T any](v T) *T { return &v }

func TestResolveStatus(t *testing.T) {
	in := fixed
	assert.Equal(t, punch.StatusForcedLogout, punch.ResolveOutStatus(in, in.Add(6*time.Hour+59*time.Minute), 7*time.Hour))
	assert.Equal(t, punch.StatusCompleted, punch.ResolveOutStatus(in, in.Add(7*time.Hour), 7*time.Hour))

	assert.Equal(t, punch.BreakNormal, punch.ResolveBreakStatus(in, in.Add(60*time.Minute), time.Hour))
	assert.Equal(t, punch.BreakExceeded, punch.ResolveBreakStatus(in, in.Add(61*time.Minute), time.Hour))
}

func TestPunchService_PunchIn(t *testing.T) {
	ctx := context.Background()
	userID := uuid.NewString()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		expectTx(t, deps.sqlMock, true)

		dayStart := time.Date(2026, 3, 10, 0, 0, 0, 0, ist)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindActiveByUser(ctx, userID).Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().ExistsPunchInBetween(ctx, userID, dayStart, dayStart.Add(24*time.Hour)).Return(false, nil)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, p *punch.Punch) error {
			assert.Equal(t, punch.StatusActive, p.Status)
			assert.Equal(t, fixed, p.PunchInTime)
			assert.Nil(t, p.PunchOutTime)
			return nil
		})

		resp, err := deps.service.PunchIn(ctx, userID)
		assert.NoError(t, err)
		assert.Equal(t, userID, resp.UserID)
		assert.Nil(t, resp.TotalSeconds)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("already active", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindActiveByUser(ctx, userID).Return(&punch.Punch{ID: uuid.New()}, nil)

		_, err := deps.service.PunchIn(ctx, userID)
		assert.ErrorIs(t, err, puncherrors.ErrAlreadyPunchedIn)
	})

	t.Run("already punched in today", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindActiveByUser(ctx, userID).Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().ExistsPunchInBetween(ctx, userID, gomock.Any(), gomock.Any()).Return(true, nil)

		_, err := deps.service.PunchIn(ctx, userID)
		assert.ErrorIs(t, err, puncherrors.ErrAlreadyPunchedInToday)
	})

	t.Run("daily throttle disabled", func(t *testing.T) {
		deps := setupServiceTest(t, false)
		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindActiveByUser(ctx, userID).Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		_, err := deps.service.PunchIn(ctx, userID)
		assert.NoError(t, err)
	})

	t.Run("concurrent insert hits unique index", func(t *testing.T) {
		deps := setupServiceTest(t, false)
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindActiveByUser(ctx, userID).Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_punches_one_active"})

		_, err := deps.service.PunchIn(ctx, userID)
		assert.ErrorIs(t, err, puncherrors.ErrAlreadyPunchedIn)
	})

	t.Run("invalid user id", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		_, err := deps.service.PunchIn(ctx, "nope")
		assert.ErrorIs(t, err, puncherrors.ErrInvalidUserID)
	})
}

func TestPunchService_PunchOut(t *testing.T) {
	ctx := context.Background()
	userID := uuid.NewString()

	t.Run("short shift is forced logout", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		expectTx(t, deps.sqlMock, true)

		row := &punch.Punch{ID: uuid.New(), UserID: uuid.MustParse(userID), PunchInTime: fixed.Add(-2 * time.Hour), Status: punch.StatusActive}
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindActiveByUser(ctx, userID).Return(row, nil)
		deps.repo.EXPECT().PunchOut(ctx, row.ID.String(), fixed, punch.StatusForcedLogout).Return(int64(1), nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, evt outbox.Event) error {
			assert.Equal(t, "punch_completed", evt.EventType)
			assert.Equal(t, row.ID.String(), evt.AggregateID)
			return nil
		})

		resp, err := deps.service.PunchOut(ctx, userID)
		assert.NoError(t, err)
		assert.Equal(t, punch.StatusForcedLogout, resp.Status)
		assert.Equal(t, int64(7200), *resp.TotalSeconds)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("full shift completes", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		expectTx(t, deps.sqlMock, true)

		row := &punch.Punch{ID: uuid.New(), PunchInTime: fixed.Add(-8 * time.Hour)}
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindActiveByUser(ctx, userID).Return(row, nil)
		deps.repo.EXPECT().PunchOut(ctx, row.ID.String(), fixed, punch.StatusCompleted).Return(int64(1), nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		resp, err := deps.service.PunchOut(ctx, userID)
		assert.NoError(t, err)
		assert.Equal(t, punch.StatusCompleted, resp.Status)
	})

	t.Run("not punched in", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindActiveByUser(ctx, userID).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.PunchOut(ctx, userID)
		assert.ErrorIs(t, err, puncherrors.ErrNotPunchedIn)
	})

	t.Run("lost race", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		expectTx(t, deps.sqlMock, false)

		row := &punch.Punch{ID: uuid.New(), PunchInTime: fixed.Add(-time.Hour)}
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindActiveByUser(ctx, userID).Return(row, nil)
		deps.repo.EXPECT().PunchOut(ctx, row.ID.String(), fixed, gomock.Any()).Return(int64(0), nil)

		_, err := deps.service.PunchOut(ctx, userID)
		assert.ErrorIs(t, err, puncherrors.ErrNotPunchedIn)
	})
}

func TestPunchService_Breaks(t *testing.T) {
	ctx := context.Background()
	userID := uuid.NewString()

	t.Run("start break", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		row := &punch.Punch{ID: uuid.New(), PunchInTime: fixed.Add(-time.Hour)}
		deps.repo.EXPECT().FindActiveByUser(ctx, userID).Return(row, nil)
		deps.repo.EXPECT().StartBreak(ctx, row.ID.String(), fixed).Return(int64(1), nil)

		resp, err := deps.service.StartBreak(ctx, userID)
		assert.NoError(t, err)
		assert.Equal(t, fixed, *resp.BreakStartTime)
	})

	t.Run("start break without punch", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		deps.repo.EXPECT().FindActiveByUser(ctx, userID).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.StartBreak(ctx, userID)
		assert.ErrorIs(t, err, puncherrors.ErrPunchInFirst)
	})

	t.Run("second break rejected", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		row := &punch.Punch{ID: uuid.New(), BreakStartTime: ptr(fixed.Add(-time.Hour))}
		deps.repo.EXPECT().FindActiveByUser(ctx, userID).Return(row, nil)

		_, err := deps.service.StartBreak(ctx, userID)
		assert.ErrorIs(t, err, puncherrors.ErrBreakAlreadyStarted)
	})

	t.Run("end break exceeded", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		row := &punch.Punch{ID: uuid.New(), BreakStartTime: ptr(fixed.Add(-75 * time.Minute))}
		deps.repo.EXPECT().FindActiveByUser(ctx, userID).Return(row, nil)
		deps.repo.EXPECT().EndBreak(ctx, row.ID.String(), fixed, punch.BreakExceeded).Return(int64(1), nil)

		resp, err := deps.service.EndBreak(ctx, userID)
		assert.NoError(t, err)
		assert.Equal(t, punch.BreakExceeded, *resp.BreakStatus)
	})

	t.Run("end break without start", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		deps.repo.EXPECT().FindActiveByUser(ctx, userID).Return(&punch.Punch{ID: uuid.New()}, nil)

		_, err := deps.service.EndBreak(ctx, userID)
		assert.ErrorIs(t, err, puncherrors.ErrNoActiveBreak)
	})

	t.Run("end break twice", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		row := &punch.Punch{ID: uuid.New(), BreakStartTime: ptr(fixed.Add(-time.Hour)), BreakEndTime: ptr(fixed)}
		deps.repo.EXPECT().FindActiveByUser(ctx, userID).Return(row, nil)

		_, err := deps.service.EndBreak(ctx, userID)
		assert.ErrorIs(t, err, puncherrors.ErrNoActiveBreak)
	})
}

func TestPunchService_CloseActive(t *testing.T) {
	ctx := context.Background()
	userID := uuid.NewString()

	t.Run("no open punch is a no-op", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		deps.repo.EXPECT().FindActiveByUser(ctx, userID).Return(nil, gorm.ErrRecordNotFound)

		resp, err := deps.service.CloseActive(ctx, userID)
		assert.NoError(t, err)
		assert.Nil(t, resp)
	})

	t.Run("closes open punch", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		expectTx(t, deps.sqlMock, true)

		row := &punch.Punch{ID: uuid.New(), PunchInTime: fixed.Add(-8 * time.Hour)}
		deps.repo.EXPECT().FindActiveByUser(ctx, userID).Return(row, nil)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindActiveByUser(ctx, userID).Return(row, nil)
		deps.repo.EXPECT().PunchOut(ctx, row.ID.String(), fixed, punch.StatusCompleted).Return(int64(1), nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		resp, err := deps.service.CloseActive(ctx, userID)
		assert.NoError(t, err)
		assert.NotNil(t, resp)
		assert.Equal(t, punch.StatusCompleted, resp.Status)
	})
}

func TestPunchService_SetApproval(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		deps.repo.EXPECT().SetAdminApproved(ctx, id.String(), true).Return(int64(1), nil)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(&punch.Punch{ID: id, AdminApproved: true}, nil)

		resp, err := deps.service.SetApproval(ctx, id.String(), true)
		assert.NoError(t, err)
		assert.True(t, resp.AdminApproved)
	})

	t.Run("unknown id", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		deps.repo.EXPECT().SetAdminApproved(ctx, id.String(), false).Return(int64(0), nil)

		_, err := deps.service.SetApproval(ctx, id.String(), false)
		assert.ErrorIs(t, err, puncherrors.ErrPunchNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		_, err := deps.service.SetApproval(ctx, "x", true)
		assert.ErrorIs(t, err, puncherrors.ErrPunchNotFound)
	})
}

func TestPunchService_Today(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t, true)

	alice := user.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}
	bob := user.User{ID: uuid.New(), Name: "Bob", Email: "bob@example.com"}
	ghost := uuid.New()

	out := fixed.Add(-time.Hour)
	latest := punch.Punch{ID: uuid.New(), UserID: alice.ID, PunchInTime: fixed.Add(-3 * time.Hour), PunchOutTime: &out, CreatedAt: fixed.Add(-3 * time.Hour)}
	older := punch.Punch{ID: uuid.New(), UserID: alice.ID, PunchInTime: fixed.Add(-5 * time.Hour), CreatedAt: fixed.Add(-5 * time.Hour)}
	orphan := punch.Punch{ID: uuid.New(), UserID: ghost, PunchInTime: fixed.Add(-4 * time.Hour), CreatedAt: fixed.Add(-4 * time.Hour)}

	dayStart := time.Date(2026, 3, 10, 0, 0, 0, 0, ist)
	deps.userRepo.EXPECT().FindAll(ctx).Return([]user.User{alice, bob}, nil)
	deps.repo.EXPECT().FindCreatedBetween(ctx, dayStart, dayStart.Add(24*time.Hour)).
		Return([]punch.Punch{latest, orphan, older}, nil)

	rows, err := deps.service.Today(ctx)
	assert.NoError(t, err)
	assert.Len(t, rows, 3)

	assert.Equal(t, "Alice", rows[0].Name)
	assert.Equal(t, latest.ID.String(), *rows[0].PunchID)
	assert.Equal(t, int64(7200), *rows[0].TotalSeconds)

	assert.Equal(t, "Bob", rows[1].Name)
	assert.Nil(t, rows[1].PunchID)
	assert.Nil(t, rows[1].PunchInTime)

	assert.Equal(t, ghost.String(), rows[2].UserID)
	assert.Nil(t, rows[2].TotalSeconds)
}

func TestPunchService_AllRecordsAndRecent(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t, true)

	owner := user.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}
	punches := []punch.Punch{{ID: uuid.New(), UserID: owner.ID}, {ID: uuid.New(), UserID: owner.ID}}

	deps.repo.EXPECT().FindAll(ctx).Return(punches, nil)
	deps.userRepo.EXPECT().FindByIDs(ctx, []string{owner.ID.String()}).Return([]user.User{owner}, nil)

	records, err := deps.service.AllRecords(ctx)
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "alice@example.com", records[1].UserEmail)

	deps.repo.EXPECT().FindByUserSince(ctx, owner.ID.String(), fixed.Add(-30*24*time.Hour)).Return(punches[:1], nil)
	recent, err := deps.service.Recent(ctx, owner.ID.String())
	assert.NoError(t, err)
	assert.Len(t, recent, 1)

	deps.repo.EXPECT().FindByUserSince(ctx, owner.ID.String(), gomock.Any()).Return(nil, errors.New("db down"))
	_, err = deps.service.Recent(ctx, owner.ID.String())
	assert.Error(t, err)
}

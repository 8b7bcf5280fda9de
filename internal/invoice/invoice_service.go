package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-derma/internal/events"
	invoiceerrors "go-derma/internal/invoice/errors"
	"go-derma/internal/messaging/outbox"
	"go-derma/internal/shared/apperror"
	"go-derma/internal/shared/contextutil"
	"go-derma/internal/shared/counter"
	"go-derma/internal/user"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	SetsCacheKey      = "invoices:sets"
	SetsGenerationKey = "invoices:sets:gen"
	setsCacheTTL      = 5 * time.Minute

	counterScope = "global"
	counterType  = "invoice_number"
)

const unknownUser = "Unknown"

//go:generate mockgen -source=invoice_service.go -destination=mock/invoice_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, ownerID string, req CreateInvoiceRequest) (InvoiceResponse, error)
	ListMine(ctx context.Context, ownerID string) ([]InvoiceResponse, error)
	SearchMine(ctx context.Context, ownerID, setNumber string) ([]InvoiceResponse, error)
	ListSets(ctx context.Context) ([]SetSummary, error)
	GetDetail(ctx context.Context, id string) (InvoiceDetailResponse, error)
	RenderPDF(ctx context.Context, id string) (string, []byte, error)
	UpdateSetStatus(ctx context.Context, reviewerID, setNumber, action string) (BulkStatusResponse, error)
	UpdateStatus(ctx context.Context, id string, status Status) (InvoiceResponse, error)
	Edit(ctx context.Context, id string, req EditInvoiceRequest) (InvoiceDetailResponse, error)
}

type service struct {
	db       *gorm.DB
	repo     Repository
	userRepo user.Repository
	counter  counter.Repository
	outbox   outbox.Repository
	rdb      *redis.Client
	sf       *singleflight.Group
	logger   *zap.Logger
}

// NewService wires the invoice workflow. rdb may be nil, which disables the
// set listing cache.
func NewService(
	db *gorm.DB,
	repo Repository,
	userRepo user.Repository,
	counterRepo counter.Repository,
	outboxRepo outbox.Repository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("invoice.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("invoice.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		userRepo: userRepo,
		counter:  counterRepo,
		outbox:   outboxRepo,
		rdb:      rdb,
		sf:       &singleflight.Group{},
		logger:   l,
	}
}

// SetsCacheKeyFor is the set listing key for one cache generation.
func SetsCacheKeyFor(gen int64) string {
	return fmt.Sprintf("%s:v%d", SetsCacheKey, gen)
}

// invalidateSets bumps the generation instead of deleting, so a fill that
// read the old generation can only write a key nobody reads anymore.
func (s *service) invalidateSets(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Incr(ctx, SetsGenerationKey).Err(); err != nil {
		s.logger.Error("failed to invalidate invoice set cache",
			zap.String("key", SetsGenerationKey),
			zap.Error(err),
		)
	}
}

// setsKey returns the key of the current generation. ok is false when the
// generation can't be read and the cache must be bypassed.
func (s *service) setsKey(ctx context.Context) (key string, ok bool) {
	if s.rdb == nil {
		return SetsCacheKey, false
	}
	gen, err := s.rdb.Get(ctx, SetsGenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Warn("invoice set cache generation unavailable", zap.Error(err))
		return SetsCacheKey, false
	}
	return SetsCacheKeyFor(gen), true
}

func (s *service) Create(ctx context.Context, ownerID string, req CreateInvoiceRequest) (InvoiceResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create invoice requested",
		zap.String("request_id", rid),
		zap.String("owner_id", ownerID),
		zap.Int("products", len(req.Products)),
	)

	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return InvoiceResponse{}, invoiceerrors.ErrInvalidOwner
	}

	customer := strings.TrimSpace(req.CustomerDetails.Name)
	if customer == "" {
		return InvoiceResponse{}, apperror.RequiredField("Name")
	}

	inv := &Invoice{
		ID:           uuid.New(),
		CustomerName: customer,
		SetNumber:    strings.TrimSpace(req.CustomerDetails.SetNumber),
		Status:       StatusPending,
		CreatedBy:    owner,
	}

	inv.Items, err = buildItems(inv.ID, req.Products)
	if err != nil {
		return InvoiceResponse{}, err
	}

	number := strings.TrimSpace(req.CustomerDetails.InvoiceNumber)
	if number == "" {
		next, err := s.counter.GetNextValue(ctx, counterScope, counterType)
		if err != nil {
			s.logger.Error("create invoice generate number failed", zap.String("request_id", rid), zap.Error(err))
			return InvoiceResponse{}, err
		}
		number = fmt.Sprintf("INV-%06d", next)
	}
	inv.InvoiceNumber = &number

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("create invoice begin tx failed", zap.String("request_id", rid), zap.Error(tx.Error))
		return InvoiceResponse{}, tx.Error
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, inv); err != nil {
		s.logger.Warn("create invoice persist failed", zap.String("request_id", rid), zap.Error(err))
		return InvoiceResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("create invoice commit failed", zap.String("request_id", rid), zap.Error(err))
		return InvoiceResponse{}, err
	}

	s.invalidateSets(ctx)

	s.logger.Info("create invoice success",
		zap.String("request_id", rid),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", number),
	)
	return ToResponse(*inv), nil
}

func (s *service) ListMine(ctx context.Context, ownerID string) ([]InvoiceResponse, error) {
	if _, err := uuid.Parse(ownerID); err != nil {
		return nil, invoiceerrors.ErrInvalidOwner
	}
	invoices, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("list own invoices failed", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return ToListResponse(invoices), nil
}

func (s *service) SearchMine(ctx context.Context, ownerID, setNumber string) ([]InvoiceResponse, error) {
	if _, err := uuid.Parse(ownerID); err != nil {
		return nil, invoiceerrors.ErrInvalidOwner
	}
	invoices, err := s.repo.FindByOwnerAndSet(ctx, ownerID, strings.TrimSpace(setNumber))
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if len(invoices) == 0 {
		return nil, invoiceerrors.ErrNoBillsForSet
	}
	return ToListResponse(invoices), nil
}

func (s *service) ListSets(ctx context.Context) ([]SetSummary, error) {
	// 1. Cek Redis pada generasi yang berlaku
	key, cached := s.setsKey(ctx)
	if cached {
		if raw, err := s.rdb.Get(ctx, key).Result(); err == nil {
			var resp []SetSummary
			if json.Unmarshal([]byte(raw), &resp) == nil {
				return resp, nil
			}
		}
	}

	// 2. Singleflight supaya dashboard admin tidak menghantam DB bersamaan
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		invoices, err := s.repo.FindAllOrdered(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp, err := s.groupSets(ctx, invoices)
		if err != nil {
			return nil, err
		}

		if cached {
			if data, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, key, data, setsCacheTTL)
			}
		}
		return resp, nil
	})
	if err != nil {
		s.logger.Error("list invoice sets failed", zap.Error(err))
		return nil, err
	}

	return v.([]SetSummary), nil
}

// groupSets expects invoices oldest first. Each set takes its submitter, date
// and status from its first invoice; sets come out newest first.
func (s *service) groupSets(ctx context.Context, invoices []Invoice) ([]SetSummary, error) {
	index := make(map[string]int)
	sets := make([]SetSummary, 0)
	firstBy := make([]string, 0)

	for _, inv := range invoices {
		key := inv.SetKey()
		i, ok := index[key]
		if !ok {
			i = len(sets)
			index[key] = i
			sets = append(sets, SetSummary{
				SetNumber: key,
				Invoices:  []string{},
				Date:      inv.CreatedAt.UTC().Format(dateLayout),
				Status:    inv.Status,
			})
			firstBy = append(firstBy, inv.CreatedBy.String())
		}
		sets[i].Invoices = append(sets[i].Invoices, inv.ID.String())
		sets[i].Count++
	}

	emails, err := s.emailsByID(ctx, firstBy)
	if err != nil {
		return nil, err
	}

	resp := make([]SetSummary, len(sets))
	for i := range sets {
		set := sets[i]
		set.User = emails[firstBy[i]]
		if set.User == "" {
			set.User = unknownUser
		}
		resp[len(sets)-1-i] = set
	}
	return resp, nil
}

func (s *service) emailsByID(ctx context.Context, ids []string) (map[string]string, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	users, err := s.userRepo.FindByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	emails := make(map[string]string, len(users))
	for _, u := range users {
		emails[u.ID.String()] = u.Email
	}
	return emails, nil
}

func (s *service) creatorEmail(ctx context.Context, inv *Invoice) string {
	u, err := s.userRepo.FindByID(ctx, inv.CreatedBy.String())
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("lookup invoice creator failed", zap.String("invoice_id", inv.ID.String()), zap.Error(err))
		}
		return unknownUser
	}
	return u.Email
}

func (s *service) GetDetail(ctx context.Context, id string) (InvoiceDetailResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return InvoiceDetailResponse{}, invoiceerrors.ErrInvoiceNotFound
	}
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return InvoiceDetailResponse{}, mapRepositoryError(err)
	}
	return ToDetailResponse(*inv, s.creatorEmail(ctx, inv)), nil
}

func (s *service) RenderPDF(ctx context.Context, id string) (string, []byte, error) {
	detail, err := s.GetDetail(ctx, id)
	if err != nil {
		return "", nil, err
	}

	body, err := buildInvoicePDF(invoicePDFLines(detail))
	if err != nil {
		s.logger.Error("render invoice pdf failed", zap.String("invoice_id", id), zap.Error(err))
		return "", nil, err
	}

	name := detail.InvoiceNo
	if name == "" {
		name = detail.ID
	}
	return fmt.Sprintf("invoice-%s.pdf", name), body, nil
}

func (s *service) UpdateSetStatus(ctx context.Context, reviewerID, setNumber, action string) (BulkStatusResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	setNumber = strings.TrimSpace(setNumber)
	status := StatusFromAction(action)

	s.logger.Debug("update set status requested",
		zap.String("request_id", rid),
		zap.String("set_number", setNumber),
		zap.String("action", action),
	)

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("update set status begin tx failed", zap.String("request_id", rid), zap.Error(tx.Error))
		return BulkStatusResponse{}, tx.Error
	}
	defer tx.Rollback()

	affected, err := s.repo.WithTx(tx).UpdateStatusBySet(ctx, setNumber, status)
	if err != nil {
		s.logger.Error("update set status persist failed", zap.String("set_number", setNumber), zap.Error(err))
		return BulkStatusResponse{}, err
	}
	if affected == 0 {
		return BulkStatusResponse{}, invoiceerrors.ErrSetNotFound
	}

	if s.outbox != nil {
		evt, err := outbox.NewEvent(ctx, "invoice_set", setNumber, events.EventInvoiceSetStatusChanged, events.InvoiceSetTopic,
			events.InvoiceSetStatusChangedEvent{
				EventType:  events.EventInvoiceSetStatusChanged,
				RequestID:  rid,
				SetNumber:  setNumber,
				Status:     string(status),
				Affected:   affected,
				ReviewedBy: reviewerID,
				OccurredAt: time.Now().UTC(),
			})
		if err != nil {
			return BulkStatusResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, evt); err != nil {
			s.logger.Error("update set status outbox persist failed", zap.String("set_number", setNumber), zap.Error(err))
			return BulkStatusResponse{}, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("update set status commit failed", zap.String("request_id", rid), zap.Error(err))
		return BulkStatusResponse{}, err
	}

	s.invalidateSets(ctx)

	s.logger.Info("update set status success",
		zap.String("request_id", rid),
		zap.String("set_number", setNumber),
		zap.String("status", string(status)),
		zap.Int64("affected", affected),
	)
	return BulkStatusResponse{SetNumber: setNumber, Status: status, Affected: affected}, nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, status Status) (InvoiceResponse, error) {
	if !status.Valid() {
		return InvoiceResponse{}, invoiceerrors.ErrInvalidStatus
	}
	if _, err := uuid.Parse(id); err != nil {
		return InvoiceResponse{}, invoiceerrors.ErrInvoiceNotFound
	}

	affected, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return InvoiceResponse{}, err
	}
	if affected == 0 {
		return InvoiceResponse{}, invoiceerrors.ErrInvoiceNotFound
	}

	s.invalidateSets(ctx)

	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return InvoiceResponse{}, mapRepositoryError(err)
	}
	s.logger.Info("update invoice status success", zap.String("invoice_id", id), zap.String("status", string(status)))
	return ToResponse(*inv), nil
}

func parseInvoiceDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, invoiceerrors.ErrInvalidDate
}

// Edit applies a partial update. Ownership is never changed and products,
// when given, replace the existing lines.
func (s *service) Edit(ctx context.Context, id string, req EditInvoiceRequest) (InvoiceDetailResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	if _, err := uuid.Parse(id); err != nil {
		return InvoiceDetailResponse{}, invoiceerrors.ErrInvoiceNotFound
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("edit invoice begin tx failed", zap.String("request_id", rid), zap.Error(tx.Error))
		return InvoiceDetailResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	inv, err := qtx.FindByID(ctx, id)
	if err != nil {
		return InvoiceDetailResponse{}, mapRepositoryError(err)
	}

	if req.InvoiceNumber != nil {
		if number := strings.TrimSpace(*req.InvoiceNumber); number != "" {
			inv.InvoiceNumber = &number
		} else {
			inv.InvoiceNumber = nil
		}
	}
	if req.CustomerName != nil {
		name := strings.TrimSpace(*req.CustomerName)
		if name == "" {
			return InvoiceDetailResponse{}, apperror.RequiredField("CustomerName")
		}
		inv.CustomerName = name
	}
	if req.SetNumber != nil {
		inv.SetNumber = strings.TrimSpace(*req.SetNumber)
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return InvoiceDetailResponse{}, invoiceerrors.ErrInvalidStatus
		}
		inv.Status = *req.Status
	}
	if req.Date != nil {
		date, err := parseInvoiceDate(*req.Date)
		if err != nil {
			return InvoiceDetailResponse{}, err
		}
		inv.CreatedAt = date
	}
	if req.Products != nil {
		items, err := buildItems(inv.ID, *req.Products)
		if err != nil {
			return InvoiceDetailResponse{}, err
		}
		if err := qtx.ReplaceItems(ctx, id, items); err != nil {
			s.logger.Error("edit invoice replace items failed", zap.String("invoice_id", id), zap.Error(err))
			return InvoiceDetailResponse{}, err
		}
		inv.Items = items
	}
	inv.UpdatedAt = time.Now().UTC()

	if err := qtx.Update(ctx, inv); err != nil {
		s.logger.Warn("edit invoice persist failed", zap.String("invoice_id", id), zap.Error(err))
		return InvoiceDetailResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("edit invoice commit failed", zap.String("request_id", rid), zap.Error(err))
		return InvoiceDetailResponse{}, err
	}

	s.invalidateSets(ctx)

	s.logger.Info("edit invoice success", zap.String("request_id", rid), zap.String("invoice_id", id))
	return ToDetailResponse(*inv, s.creatorEmail(ctx, inv)), nil
}

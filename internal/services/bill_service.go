package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/billsplit/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/dto"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/models"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/reqctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const billNumberPrefix = "BF"

var (
	ErrPrivateBillAnonymous = apperrors.BadRequest("User must be authenticated for private bills")
	ErrBillItemIndex        = apperrors.BadRequest("bill_item_index does not match any bill item")
)

// FileURLResolver turns a stored file id into a short-lived download URL.
// It returns nil when the URL cannot be produced.
type FileURLResolver interface {
	ResolveURL(ctx context.Context, fileID uuid.UUID) *string
}

type BillService struct {
	db      *gorm.DB
	files   FileURLResolver
	metrics metrics.Recorder
	now     func() time.Time
}

func NewBillService(db *gorm.DB, files FileURLResolver, rec metrics.Recorder) *BillService {
	if rec == nil {
		rec = metrics.Nop
	}
	return &BillService{db: db, files: files, metrics: rec, now: time.Now}
}

// NewBillNumber returns BF + UTC timestamp + the hex digits of a random UUID.
func (s *BillService) NewBillNumber() string {
	return billNumberPrefix +
		s.now().UTC().Format("20060102150405") +
		strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *BillService) Create(ctx context.Context, actor *dto.CurrentUser, req *dto.BillRequest) (*dto.BillNumberResponse, error) {
	if req.ShareType == models.SharePrivate && actor == nil {
		return nil, ErrPrivateBillAnonymous
	}

	bill := billFromRequest(req)
	bill.ID = uuid.New()
	bill.BillNumber = s.NewBillNumber()
	bill.CreatedBy = actorID(actor)

	items, participants, err := childrenFromRequest(bill.ID, req, bill.CreatedBy)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&bill).Error; err != nil {
			return err
		}
		return insertChildren(tx, items, participants)
	})
	if err != nil {
		return nil, writeError(err)
	}

	s.metrics.BillWritten("create")
	return &dto.BillNumberResponse{BillNumber: bill.BillNumber}, nil
}

// Update overwrites every column of the bill and replaces its items and
// participants with the ones in req.
func (s *BillService) Update(ctx context.Context, actor *dto.CurrentUser, billNumber string, req *dto.BillRequest) (*dto.BillNumberResponse, error) {
	by := actorID(actor)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Bill
		if err := tx.Where("bill_number = ?", billNumber).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("")
			}
			return err
		}
		if actor == nil && (existing.ShareType == models.SharePrivate || req.ShareType == models.SharePrivate) {
			return ErrPrivateBillAnonymous
		}

		bill := billFromRequest(req)
		bill.ID = existing.ID
		bill.BillNumber = existing.BillNumber
		bill.CreatedAt = existing.CreatedAt
		bill.CreatedBy = existing.CreatedBy
		if bill.CreatedBy == nil {
			bill.CreatedBy = by
		}
		bill.UpdatedBy = by

		items, participants, err := childrenFromRequest(bill.ID, req, by)
		if err != nil {
			return err
		}

		if err := tx.Save(&bill).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("bill_id = ?", bill.ID).Delete(&models.BillParticipant{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("bill_id = ?", bill.ID).Delete(&models.BillItem{}).Error; err != nil {
			return err
		}
		return insertChildren(tx, items, participants)
	})
	if err != nil {
		return nil, writeError(err)
	}

	s.metrics.BillWritten("update")
	return &dto.BillNumberResponse{BillNumber: billNumber}, nil
}

// GetByBillNumber hides private bills from anonymous callers.
func (s *BillService) GetByBillNumber(ctx context.Context, actor *dto.CurrentUser, billNumber string) (*dto.BillDetail, error) {
	bill, items, participants, err := s.load(ctx, billNumber)
	if err != nil {
		return nil, err
	}
	if bill.ShareType == models.SharePrivate && actor == nil {
		return nil, apperrors.NotFound("")
	}
	return s.detail(ctx, bill, items, participants), nil
}

// GetSharedByBillNumber additionally limits a private bill to its creator and
// the users listed among its participants. Everyone else gets NotFound.
func (s *BillService) GetSharedByBillNumber(ctx context.Context, actor *dto.CurrentUser, billNumber string) (*dto.BillDetail, error) {
	bill, items, participants, err := s.load(ctx, billNumber)
	if err != nil {
		return nil, err
	}
	if bill.ShareType == models.SharePrivate {
		if actor == nil {
			return nil, apperrors.NotFound("")
		}
		owner := bill.CreatedBy != nil && *bill.CreatedBy == actor.UserID
		if !owner && !isParticipant(participants, actor.Email) {
			return nil, apperrors.NotFound("")
		}
	}
	return s.detail(ctx, bill, items, participants), nil
}

// List returns bills newest first.
func (s *BillService) List(ctx context.Context, limit, offset int) (*dto.BillListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Bill{}).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(err)
	}

	var bills []models.Bill
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").Order("bill_number DESC").
		Limit(limit).Offset(offset).
		Find(&bills).Error; err != nil {
		return nil, apperrors.Wrap(err)
	}

	loc := reqctx.Timezone(ctx)
	resp := &dto.BillListResponse{
		Bills:  make([]dto.BillSummary, 0, len(bills)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for i := range bills {
		resp.Bills = append(resp.Bills, dto.NewBillSummary(&bills[i], loc))
	}
	return resp, nil
}

func (s *BillService) load(ctx context.Context, billNumber string) (*models.Bill, []models.BillItem, []models.BillParticipant, error) {
	db := s.db.WithContext(ctx)

	var bill models.Bill
	if err := db.Where("bill_number = ?", billNumber).First(&bill).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, apperrors.NotFound("")
		}
		return nil, nil, nil, apperrors.Wrap(err)
	}

	var items []models.BillItem
	if err := db.Where("bill_id = ?", bill.ID).Order("position").Find(&items).Error; err != nil {
		return nil, nil, nil, apperrors.Wrap(err)
	}
	var participants []models.BillParticipant
	if err := db.Where("bill_id = ?", bill.ID).Order("position").Find(&participants).Error; err != nil {
		return nil, nil, nil, apperrors.Wrap(err)
	}
	return &bill, items, participants, nil
}

func (s *BillService) detail(ctx context.Context, bill *models.Bill, items []models.BillItem, participants []models.BillParticipant) *dto.BillDetail {
	detail := dto.NewBillDetail(bill, items, participants, reqctx.Timezone(ctx))
	if s.files == nil {
		return detail
	}
	if bill.BillFileID != nil {
		detail.BillFileURL = s.files.ResolveURL(ctx, *bill.BillFileID)
	}
	if bill.PaymentFileID != nil {
		detail.PaymentFileURL = s.files.ResolveURL(ctx, *bill.PaymentFileID)
	}
	return detail
}

func isParticipant(participants []models.BillParticipant, email string) bool {
	if email == "" {
		return false
	}
	for _, p := range participants {
		if p.Email != nil && strings.EqualFold(*p.Email, email) {
			return true
		}
	}
	return false
}

func actorID(actor *dto.CurrentUser) *string {
	if actor == nil {
		return nil
	}
	id := actor.UserID
	return &id
}

func writeError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Service("Bill number already exists", err)
	}
	return apperrors.Wrap(err)
}

func billFromRequest(req *dto.BillRequest) models.Bill {
	status := req.Status
	if status == 0 {
		status = models.BillStatusDraft
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	return models.Bill{
		BillFileID:    req.BillFileID,
		Type:          req.Type,
		ShareType:     req.ShareType,
		Status:        status,
		Subtotal:      req.Subtotal.Decimal,
		TaxFlag:       req.TaxFlag,
		TaxPercent:    req.TaxPercent,
		TaxAmount:     req.TaxAmount,
		TipFlag:       req.TipFlag,
		TipPercent:    req.TipPercent,
		TipAmount:     req.TipAmount,
		Total:         req.Total.Decimal,
		Currency:      currency,
		NumberPeople:  req.NumberPeople,
		PaymentFlag:   req.PaymentFlag,
		PaymentMethod: req.PaymentMethod,
		PaymentNote:   req.PaymentNote,
		PaymentFileID: req.PaymentFileID,
	}
}

func childrenFromRequest(billID uuid.UUID, req *dto.BillRequest, by *string) ([]models.BillItem, []models.BillParticipant, error) {
	items := make([]models.BillItem, 0, len(req.BillItems))
	for i, in := range req.BillItems {
		quantity := decimal.NewFromInt(1)
		if in.Quantity.Valid {
			quantity = in.Quantity.Decimal
		}
		items = append(items, models.BillItem{
			ID:          uuid.New(),
			BillID:      billID,
			Position:    i,
			Name:        in.Name,
			Description: in.Description,
			Quantity:    quantity,
			UnitPrice:   in.UnitPrice,
			Total:       in.Total,
			Audit:       models.Audit{CreatedBy: by},
		})
	}

	participants := make([]models.BillParticipant, 0, len(req.BillParticipants))
	for i, in := range req.BillParticipants {
		p := models.BillParticipant{
			ID:          uuid.New(),
			BillID:      billID,
			Position:    i,
			Amount:      in.Amount.Decimal,
			Email:       in.Email,
			Description: in.Description,
			PaymentFlag: in.PaymentFlag,
			Audit:       models.Audit{CreatedBy: by},
		}
		if in.BillItemIndex != nil {
			idx := *in.BillItemIndex
			if idx < 0 || idx >= len(items) {
				return nil, nil, ErrBillItemIndex
			}
			p.BillItemID = &items[idx].ID
		}
		participants = append(participants, p)
	}
	return items, participants, nil
}

func insertChildren(tx *gorm.DB, items []models.BillItem, participants []models.BillParticipant) error {
	if len(items) > 0 {
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
	}
	if len(participants) > 0 {
		if err := tx.Create(&participants).Error; err != nil {
			return err
		}
	}
	return nil
}

package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/billsplit/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillRequest is the full bill payload for both create and update. Update
// overwrites every column from it, so clients always send the whole bill.
type BillRequest struct {
	BillFileID    *uuid.UUID          `json:"bill_file_id"`
	Type          models.BillType     `json:"type" validate:"required,oneof=1 2"`
	ShareType     models.ShareType    `json:"share_type" validate:"required,oneof=1 2"`
	Status        models.BillStatus   `json:"status" validate:"omitempty,oneof=1 2 3"`
	Subtotal      decimal.NullDecimal `json:"subtotal"`
	TaxFlag       bool                `json:"tax_flag"`
	TaxPercent    decimal.NullDecimal `json:"tax_percent" validate:"omitempty,gte=0,lte=100"`
	TaxAmount     decimal.NullDecimal `json:"tax_amount"`
	TipFlag       bool                `json:"tip_flag"`
	TipPercent    decimal.NullDecimal `json:"tip_percent" validate:"omitempty,gte=0,lte=100"`
	TipAmount     decimal.NullDecimal `json:"tip_amount"`
	Total         decimal.NullDecimal `json:"total"`
	Currency      string              `json:"currency" validate:"omitempty,max=10"`
	NumberPeople  int                 `json:"number_people" validate:"required,gte=1"`
	PaymentFlag   bool                `json:"payment_flag"`
	PaymentMethod *int16              `json:"payment_method"`
	PaymentNote   *string             `json:"payment_note" validate:"omitempty,max=255"`
	PaymentFileID *uuid.UUID          `json:"payment_file_id"`

	BillItems        []BillItemRequest        `json:"bill_items" validate:"dive"`
	BillParticipants []BillParticipantRequest `json:"bill_participants" validate:"dive"`
}

type BillItemRequest struct {
	Name        *string             `json:"name" validate:"omitempty,max=100"`
	Description *string             `json:"description" validate:"omitempty,max=255"`
	Quantity    decimal.NullDecimal `json:"quantity" validate:"omitempty,gte=0"`
	UnitPrice   decimal.NullDecimal `json:"unit_price" validate:"omitempty,gte=0"`
	Total       decimal.NullDecimal `json:"total" validate:"omitempty,gte=0"`
}

// BillParticipantRequest may point at one of the bill's items by its index in
// bill_items.
type BillParticipantRequest struct {
	BillItemIndex *int                `json:"bill_item_index" validate:"omitempty,gte=0"`
	Amount        decimal.NullDecimal `json:"amount"`
	Email         *string             `json:"email" validate:"omitempty,email,max=255"`
	Description   *string             `json:"description" validate:"omitempty,max=255"`
	PaymentFlag   bool                `json:"payment_flag"`
}

type BillNumberResponse struct {
	BillNumber string `json:"bill_number"`
}

type BillDetail struct {
	ID             uuid.UUID         `json:"id"`
	BillNumber     string            `json:"bill_number"`
	BillFileID     *uuid.UUID        `json:"bill_file_id"`
	BillFileURL    *string           `json:"bill_file_url"`
	Type           models.BillType   `json:"type"`
	ShareType      models.ShareType  `json:"share_type"`
	Status         models.BillStatus `json:"status"`
	Subtotal       string            `json:"subtotal"`
	TaxFlag        bool              `json:"tax_flag"`
	TaxPercent     *string           `json:"tax_percent"`
	TaxAmount      *string           `json:"tax_amount"`
	TipFlag        bool              `json:"tip_flag"`
	TipPercent     *string           `json:"tip_percent"`
	TipAmount      *string           `json:"tip_amount"`
	Total          string            `json:"total"`
	Currency       string            `json:"currency"`
	NumberPeople   int               `json:"number_people"`
	PaymentFlag    bool              `json:"payment_flag"`
	PaymentMethod  *int16            `json:"payment_method"`
	PaymentNote    *string           `json:"payment_note"`
	PaymentFileID  *uuid.UUID        `json:"payment_file_id"`
	PaymentFileURL *string           `json:"payment_file_url"`
	CreatedBy      *string           `json:"created_by"`
	UpdatedBy      *string           `json:"updated_by"`
	CreatedAt      string            `json:"created_at"`
	UpdatedAt      string            `json:"updated_at"`

	BillItems        []BillItemView        `json:"bill_items"`
	BillParticipants []BillParticipantView `json:"bill_participants"`
}

type BillItemView struct {
	ID          uuid.UUID `json:"id"`
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Quantity    string    `json:"quantity"`
	UnitPrice   *string   `json:"unit_price"`
	Total       *string   `json:"total"`
}

type BillParticipantView struct {
	ID          uuid.UUID  `json:"id"`
	BillItemID  *uuid.UUID `json:"bill_item_id"`
	Amount      string     `json:"amount"`
	Email       *string    `json:"email"`
	Description *string    `json:"description"`
	PaymentFlag bool       `json:"payment_flag"`
}

type BillSummary struct {
	BillNumber string            `json:"bill_number"`
	Type       models.BillType   `json:"type"`
	ShareType  models.ShareType  `json:"share_type"`
	Status     models.BillStatus `json:"status"`
	Total      string            `json:"total"`
	Currency   string            `json:"currency"`
	CreatedBy  *string           `json:"created_by"`
	CreatedAt  string            `json:"created_at"`
}

type BillListResponse struct {
	Bills  []BillSummary `json:"bills"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// Money renders a monetary value with two fraction digits.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func NullMoney(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := Money(d.Decimal)
	return &s
}

func formatTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.RFC3339)
}

// NewBillDetail assembles the detail view. File URLs are filled in by the caller.
func NewBillDetail(bill *models.Bill, items []models.BillItem, participants []models.BillParticipant, loc *time.Location) *BillDetail {
	detail := &BillDetail{
		ID:               bill.ID,
		BillNumber:       bill.BillNumber,
		BillFileID:       bill.BillFileID,
		Type:             bill.Type,
		ShareType:        bill.ShareType,
		Status:           bill.Status,
		Subtotal:         Money(bill.Subtotal),
		TaxFlag:          bill.TaxFlag,
		TaxPercent:       NullMoney(bill.TaxPercent),
		TaxAmount:        NullMoney(bill.TaxAmount),
		TipFlag:          bill.TipFlag,
		TipPercent:       NullMoney(bill.TipPercent),
		TipAmount:        NullMoney(bill.TipAmount),
		Total:            Money(bill.Total),
		Currency:         bill.Currency,
		NumberPeople:     bill.NumberPeople,
		PaymentFlag:      bill.PaymentFlag,
		PaymentMethod:    bill.PaymentMethod,
		PaymentNote:      bill.PaymentNote,
		PaymentFileID:    bill.PaymentFileID,
		CreatedBy:        bill.CreatedBy,
		UpdatedBy:        bill.UpdatedBy,
		CreatedAt:        formatTime(bill.CreatedAt, loc),
		UpdatedAt:        formatTime(bill.UpdatedAt, loc),
		BillItems:        make([]BillItemView, 0, len(items)),
		BillParticipants: make([]BillParticipantView, 0, len(participants)),
	}

	for _, item := range items {
		detail.BillItems = append(detail.BillItems, BillItemView{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Quantity:    Money(item.Quantity),
			UnitPrice:   NullMoney(item.UnitPrice),
			Total:       NullMoney(item.Total),
		})
	}
	for _, p := range participants {
		detail.BillParticipants = append(detail.BillParticipants, BillParticipantView{
			ID:          p.ID,
			BillItemID:  p.BillItemID,
			Amount:      Money(p.Amount),
			Email:       p.Email,
			Description: p.Description,
			PaymentFlag: p.PaymentFlag,
		})
	}
	return detail
}

func NewBillSummary(bill *models.Bill, loc *time.Location) BillSummary {
	return BillSummary{
		BillNumber: bill.BillNumber,
		Type:       bill.Type,
		ShareType:  bill.ShareType,
		Status:     bill.Status,
		Total:      Money(bill.Total),
		Currency:   bill.Currency,
		CreatedBy:  bill.CreatedBy,
		CreatedAt:  formatTime(bill.CreatedAt, loc),
	}
}

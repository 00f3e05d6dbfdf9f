package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BillType int16

const (
	BillTypeSimple     BillType = 1
	BillTypeRestaurant BillType = 2
)

type ShareType int16

const (
	SharePrivate ShareType = 1
	SharePublic  ShareType = 2
)

type BillStatus int16

const (
	BillStatusDraft     BillStatus = 1
	BillStatusFinalized BillStatus = 2
	BillStatusCancelled BillStatus = 3
)

// Bill is the root of the bill aggregate. Items and participants are owned by
// the bill and replaced as a whole on update.
type Bill struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	BillNumber    string              `gorm:"size:100;not null;uniqueIndex" json:"bill_number"`
	BillFileID    *uuid.UUID          `gorm:"type:uuid;index" json:"bill_file_id"`
	Type          BillType            `gorm:"type:smallint;not null" json:"type"`
	ShareType     ShareType           `gorm:"type:smallint;not null" json:"share_type"`
	Status        BillStatus          `gorm:"type:smallint;not null" json:"status"`
	Subtotal      decimal.Decimal     `gorm:"type:numeric(16,2);not null" json:"subtotal"`
	TaxFlag       bool                `gorm:"not null" json:"tax_flag"`
	TaxPercent    decimal.NullDecimal `gorm:"type:numeric(5,2)" json:"tax_percent"`
	TaxAmount     decimal.NullDecimal `gorm:"type:numeric(16,2)" json:"tax_amount"`
	TipFlag       bool                `gorm:"not null" json:"tip_flag"`
	TipPercent    decimal.NullDecimal `gorm:"type:numeric(5,2)" json:"tip_percent"`
	TipAmount     decimal.NullDecimal `gorm:"type:numeric(16,2)" json:"tip_amount"`
	Total         decimal.Decimal     `gorm:"type:numeric(16,2);not null" json:"total"`
	Currency      string              `gorm:"size:10;not null" json:"currency"`
	NumberPeople  int                 `gorm:"not null" json:"number_people"`
	PaymentFlag   bool                `gorm:"not null" json:"payment_flag"`
	PaymentMethod *int16              `gorm:"type:smallint" json:"payment_method"`
	PaymentNote   *string             `gorm:"size:255" json:"payment_note"`
	PaymentFileID *uuid.UUID          `gorm:"type:uuid" json:"payment_file_id"`
	Audit
}

type BillItem struct {
	ID          uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	BillID      uuid.UUID           `gorm:"type:uuid;not null;index" json:"bill_id"`
	Position    int                 `gorm:"not null" json:"-"`
	Name        *string             `gorm:"size:100" json:"name"`
	Description *string             `gorm:"size:255" json:"description"`
	Quantity    decimal.Decimal     `gorm:"type:numeric(10,2);not null" json:"quantity"`
	UnitPrice   decimal.NullDecimal `gorm:"type:numeric(16,2)" json:"unit_price"`
	Total       decimal.NullDecimal `gorm:"type:numeric(16,2)" json:"total"`
	Audit
}

type BillParticipant struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BillID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"bill_id"`
	BillItemID  *uuid.UUID      `gorm:"type:uuid;index" json:"bill_item_id"`
	Position    int             `gorm:"not null" json:"-"`
	Amount      decimal.Decimal `gorm:"type:numeric(16,2);not null" json:"amount"`
	Email       *string         `gorm:"size:255" json:"email"`
	Description *string         `gorm:"size:255" json:"description"`
	PaymentFlag bool            `gorm:"not null" json:"payment_flag"`
	Audit
}

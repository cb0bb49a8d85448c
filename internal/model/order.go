package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus represents the fulfilment state of an order.
type OrderStatus string

// The spellings are part of the wire contract with existing clients.
const (
	OrderStatusNotProcessed OrderStatus = "Not Process"
	OrderStatusProcessing   OrderStatus = "Processing"
	OrderStatusShipped      OrderStatus = "Shipped"
	OrderStatusDelivered    OrderStatus = "deliverd"
	OrderStatusCancelled    OrderStatus = "cancel"
)

// OrderStatuses lists every known status in display order.
var OrderStatuses = []OrderStatus{
	OrderStatusNotProcessed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusNotProcessed, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ParseOrderStatus converts a raw string into an OrderStatus.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	s := OrderStatus(raw)
	return s, s.Valid()
}

// CartItem is one line of a shopping cart as sent by the client. Price is the
// client-supplied unit price.
type CartItem struct {
	ID          uuid.UUID       `json:"_id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    json.RawMessage `json:"category,omitempty"`
	Quantity    int             `json:"quantity,omitempty"`
}

// PaymentResult is the gateway outcome stored with an order.
type PaymentResult struct {
	Success       bool            `json:"success"`
	TransactionID string          `json:"transactionId,omitempty"`
	Status        string          `json:"status,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	CurrencyCode  string          `json:"currencyCode,omitempty"`
	Message       string          `json:"message,omitempty"`
}

// Order is created once the payment gateway accepted a sale.
type Order struct {
	ID        uuid.UUID     `json:"_id" gorm:"type:char(36);primaryKey"`
	Products  []CartItem    `json:"products" gorm:"type:json;serializer:json"`
	Payment   PaymentResult `json:"payment" gorm:"type:json;serializer:json"`
	BuyerID   uuid.UUID     `json:"-" gorm:"type:char(36);not null;index"`
	Status    OrderStatus   `json:"status" gorm:"type:varchar(20);not null;default:'Not Process';index"`
	CreatedAt time.Time     `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time     `json:"updatedAt"`

	// Relations
	Buyer *User `json:"-" gorm:"foreignKey:BuyerID"`
}

// BeforeCreate sets UUID and the initial status before creating the record.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = OrderStatusNotProcessed
	}
	return nil
}

// MarshalJSON renders buyer as {_id, name} when loaded and as the bare id otherwise.
func (o Order) MarshalJSON() ([]byte, error) {
	type alias Order
	var buyer interface{} = o.BuyerID
	if o.Buyer != nil {
		buyer = struct {
			ID   uuid.UUID `json:"_id"`
			Name string    `json:"name"`
		}{o.Buyer.ID, o.Buyer.Name}
	}
	return json.Marshal(struct {
		alias
		Buyer interface{} `json:"buyer"`
	}{alias: alias(o), Buyer: buyer})
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// 配送先住所（注文に埋め込み）
type ShippingAddress struct {
	FullName   string `gorm:"column:ship_full_name;type:varchar(255);not null" json:"full_name"`
	Address    string `gorm:"column:ship_address;type:varchar(255);not null" json:"address"`
	City       string `gorm:"column:ship_city;type:varchar(255);not null" json:"city"`
	PostalCode string `gorm:"column:ship_postal_code;type:varchar(20);not null" json:"postal_code"`
	Phone      string `gorm:"column:ship_phone;type:varchar(30);not null" json:"phone"`
}

// 注文
// payment_statusがpaidになるのは、サーバー側でintentの最終ステータスを
// 再確認できた後だけ。クライアント申告の成功は信用しない。
type Order struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64           `gorm:"not null;index" json:"user_id"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null" json:"payment_status"`
	PaymentIntentID string          `gorm:"type:varchar(255)" json:"payment_intent_id"`
	ShippingAddress ShippingAddress `gorm:"embedded" json:"shipping_address"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細
// 商品名・単価・画像は注文確定時点のスナップショット。
// 後から商品が変更・削除されても注文内容は変わらない。
type OrderItem struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID           int64           `gorm:"not null;index" json:"order_id"`
	ProductID         int64           `gorm:"not null;index" json:"product_id"`
	NameSnapshot      string          `gorm:"type:varchar(255);not null" json:"name"`
	UnitPriceSnapshot decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	ImageSnapshot     string          `gorm:"type:varchar(512)" json:"image"`
	Quantity          int64           `gorm:"not null" json:"quantity"`
	CreatedAt         time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}

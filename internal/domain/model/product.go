package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 商品カテゴリ（オーディオ機器）
type ProductCategory string

const (
	CategoryHeadphones ProductCategory = "headphones"
	CategoryEarbuds    ProductCategory = "earbuds"
	CategoryEarphones  ProductCategory = "earphones"
	CategoryWireless   ProductCategory = "wireless"
	CategoryWired      ProductCategory = "wired"
	CategoryGaming     ProductCategory = "gaming"
	CategoryStudio     ProductCategory = "studio"
	CategorySports     ProductCategory = "sports"
)

// 接続方式
type Connectivity string

const (
	ConnectivityWired     Connectivity = "wired"
	ConnectivityWireless  Connectivity = "wireless"
	ConnectivityBluetooth Connectivity = "bluetooth"
	ConnectivityUSB       Connectivity = "usb"
)

type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Image       string          `gorm:"type:varchar(512);not null" json:"image"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Category    ProductCategory `gorm:"type:varchar(50);not null;index" json:"category"`

	// 在庫数（チェックアウト確定時にここを減算する）
	Available int64 `gorm:"not null;default:0" json:"available"`

	Discount     string       `gorm:"type:varchar(20);not null;default:'0%'" json:"discount"`
	Brand        string       `gorm:"type:varchar(255);not null;index" json:"brand"`
	Model        string       `gorm:"type:varchar(255);not null" json:"model"`
	Connectivity Connectivity `gorm:"type:varchar(20);not null" json:"connectivity"`
	Features     []string     `gorm:"serializer:json" json:"features"`
	Color        string       `gorm:"type:varchar(50);not null;default:'Black'" json:"color"`

	// ワイヤレス系のみ
	BatteryLife string `gorm:"type:varchar(50)" json:"battery_life"`

	NoiseCancellation bool    `gorm:"not null;default:false" json:"noise_cancellation"`
	Microphone        bool    `gorm:"not null;default:false" json:"microphone"`
	Rating            float64 `gorm:"not null;default:0" json:"rating"`
	Reviews           int64   `gorm:"not null;default:0" json:"reviews"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c ProductCategory) Valid() bool {
	switch c {
	case CategoryHeadphones, CategoryEarbuds, CategoryEarphones, CategoryWireless,
		CategoryWired, CategoryGaming, CategoryStudio, CategorySports:
		return true
	}
	return false
}

func (c Connectivity) Valid() bool {
	switch c {
	case ConnectivityWired, ConnectivityWireless, ConnectivityBluetooth, ConnectivityUSB:
		return true
	}
	return false
}

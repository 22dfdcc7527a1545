package model

import "time"

type OrderItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64     `gorm:"not null;index" json:"order_id"`
	VariantID int64     `gorm:"not null" json:"variant_id"` // Printfulのsync_variant_id
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	UnitPrice int64     `gorm:"not null" json:"unit_price"` // 最小通貨単位
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

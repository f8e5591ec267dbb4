package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// AllOrderStatuses はステータスフィルタの検証で使う
var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

func IsValidOrderStatus(s string) bool {
	for _, st := range AllOrderStatuses {
		if string(st) == s {
			return true
		}
	}
	return false
}

// 注文。checkoutで一括作成、削除はしない（キャンセルはステータス遷移）。
// total_priceは作成時に確定し、以後再計算しない。
type Order struct {
	ID             int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Code           string      `gorm:"type:varchar(36);not null;uniqueIndex" json:"code"`
	UserID         int64       `gorm:"not null;index" json:"user_id"`
	Status         OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalPrice     int64       `gorm:"not null" json:"total_price"`
	Address        string      `gorm:"type:varchar(255);not null" json:"address"`
	ShippingMethod string      `gorm:"type:varchar(50);not null" json:"shipping_method"`
	PaymentMethod  string      `gorm:"type:varchar(50);not null" json:"payment_method"`
	IdempotencyKey *string     `gorm:"type:varchar(255);uniqueIndex" json:"-"`
	CreatedAt      time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

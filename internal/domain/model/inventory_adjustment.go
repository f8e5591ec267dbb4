package model

import "time"

// 在庫変動の理由
const (
	AdjustmentReasonSellerSet     = "SELLER_SET"
	AdjustmentReasonCheckout      = "CHECKOUT"
	AdjustmentReasonRestockCancel = "RESTOCK_CANCEL"
)

// 在庫変動の履歴

type InventoryAdjustment struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID   int64     `gorm:"not null;index" json:"product_id"`
	ActorUserID int64     `gorm:"not null;index" json:"actor_user_id"`
	Delta       int64     `gorm:"not null" json:"delta"`
	Reason      string    `gorm:"type:varchar(255);not null" json:"reason"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

package model

import "time"

type OrderItemStatus string

const (
	OrderItemStatusPending   OrderItemStatus = "PENDING"
	OrderItemStatusDelivered OrderItemStatus = "DELIVERED"
	OrderItemStatusCompleted OrderItemStatus = "COMPLETED"
	OrderItemStatusCancelled OrderItemStatus = "CANCELLED"
)

var AllOrderItemStatuses = []OrderItemStatus{
	OrderItemStatusPending,
	OrderItemStatusDelivered,
	OrderItemStatusCompleted,
	OrderItemStatusCancelled,
}

func IsValidOrderItemStatus(s string) bool {
	for _, st := range AllOrderItemStatuses {
		if string(st) == s {
			return true
		}
	}
	return false
}

// 許可する遷移の表。後戻りは一切なし。
// COMPLETEDにできるのはPENDINGからだけ（DELIVEREDは購入者向けの参考情報）。
// COMPLETED / CANCELLED / DELIVERED は終端。
var orderItemTransitions = map[OrderItemStatus][]OrderItemStatus{
	OrderItemStatusPending:   {OrderItemStatusDelivered, OrderItemStatusCompleted, OrderItemStatusCancelled},
	OrderItemStatusDelivered: {},
	OrderItemStatusCompleted: {},
	OrderItemStatusCancelled: {},
}

// CanTransitionOrderItem は from → to が許可されているかを返す。
// ルールはここに一元化し、handler側で個別判定しない。
func CanTransitionOrderItem(from, to OrderItemStatus) bool {
	for _, allowed := range orderItemTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// 注文明細。Orderが所有し、作り直しや付け替えはしない。
// 価格と商品名はcheckout時点のスナップショット。
type OrderItem struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64           `gorm:"not null;index" json:"order_id"`
	ProductID           int64           `gorm:"not null;index" json:"product_id"`
	ShopID              int64           `gorm:"not null;index" json:"shop_id"`
	ProductNameSnapshot string          `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	UnitPriceSnapshot   int64           `gorm:"not null" json:"unit_price_snapshot"`
	Quantity            int64           `gorm:"not null" json:"quantity"`
	Status              OrderItemStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt           time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

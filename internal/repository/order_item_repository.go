package repository

import (
	"context"

	"shopapi/internal/domain/model"
)

type OrderItemListFilter struct {
	Page   int
	Limit  int
	Status string
}

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	ListByShopID(ctx context.Context, shopID int64, f OrderItemListFilter) ([]model.OrderItem, int64, error)
	FindByID(ctx context.Context, itemID int64) (model.OrderItem, error)

	// 現在のステータスがfromのときだけtoへ更新（条件付きUPDATE）。
	// 更新できなければfalse。二重適用の防止はここに乗せる。
	UpdateStatusIfCurrent(ctx context.Context, itemID int64, from, to model.OrderItemStatus) (bool, error)

	// レビュー資格：COMPLETEDな注文に紐づく明細が(userID, productID)で存在するか
	ExistsCompletedForUserProduct(ctx context.Context, userID int64, productID int64) (bool, error)
}

package repository

import (
	"context"

	"shopapi/internal/domain/model"
)

type CartItemRepository interface {
	// idsを渡すとそのID群に絞る（nil/空なら全件）
	ListByUserID(ctx context.Context, userID int64, ids []int64) ([]model.CartItem, error)
	// 同一商品はプラス
	UpsertByUserAndProduct(ctx context.Context, userID int64, productID int64, addQty int64) error
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)
	DeleteByID(ctx context.Context, cartItemID int64) error
	DeleteByIDs(ctx context.Context, ids []int64) error
}

package repository

import (
	"context"

	"shopapi/internal/domain/model"
)

type ShopRepository interface {
	Create(ctx context.Context, shop model.Shop) (model.Shop, error)
	FindByID(ctx context.Context, shopID int64) (model.Shop, error)
	FindByOwnerUserID(ctx context.Context, ownerUserID int64) (model.Shop, error)
	Update(ctx context.Context, shop model.Shop) error
}

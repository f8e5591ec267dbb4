package repository

import (
	"context"

	"shopapi/internal/domain/model"
)

type ReviewListQuery struct {
	Page  int
	Limit int
}

type ReviewRepository interface {
	// (user_id, product_id) で upsert。既存行は rating/comment を上書き。
	Upsert(ctx context.Context, review model.Review) (model.Review, error)
	FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.Review, error)
	ListByProductID(ctx context.Context, productID int64, q ReviewListQuery) ([]model.Review, int64, error)
}

package repository

import (
	"context"
	"errors"

	"shopapi/internal/domain/model"
	repo "shopapi/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewGormRepository struct {
	db *gorm.DB
}

func NewReviewGormRepository(db *gorm.DB) *ReviewGormRepository {
	return &ReviewGormRepository{db: db}
}

// (user_id, product_id)のunique制約に乗せたupsert。
// 同時投稿でも重複行にはならず、後勝ちで上書きされる。
func (r *ReviewGormRepository) Upsert(ctx context.Context, review model.Review) (model.Review, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"rating":     review.Rating,
				"comment":    review.Comment,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).
		Create(&review).Error
	if err != nil {
		return model.Review{}, err
	}

	// upsertで既存行が更新されたときはIDが入らないので読み直す
	var saved model.Review
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", review.UserID, review.ProductID).
		First(&saved).Error
	if err != nil {
		return model.Review{}, err
	}
	return saved, nil
}

func (r *ReviewGormRepository) FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.Review, error) {
	var rv model.Review
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&rv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Review{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Review{}, err
	}
	return rv, nil
}

func (r *ReviewGormRepository) ListByProductID(ctx context.Context, productID int64, q repo.ReviewListQuery) ([]model.Review, int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Review{}).Where("product_id = ?", productID)

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return []model.Review{}, 0, err
	}

	var reviews []model.Review
	offset := (q.Page - 1) * q.Limit
	if err := tx.Order("updated_at desc").Limit(q.Limit).Offset(offset).Find(&reviews).Error; err != nil {
		return []model.Review{}, 0, err
	}

	return reviews, total, nil
}

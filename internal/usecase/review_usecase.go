package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"shopapi/internal/domain/model"
	repo "shopapi/internal/repository"
)

// ReviewUsecase はレビュー投稿と一覧。
// 投稿できるのは「COMPLETEDな注文でその商品を買った人」だけ。
type ReviewUsecase struct {
	reviewRepo    repo.ReviewRepository
	orderItemRepo repo.OrderItemRepository
	productRepo   repo.ProductRepository
}

func NewReviewUsecase(
	reviewRepo repo.ReviewRepository,
	orderItemRepo repo.OrderItemRepository,
	productRepo repo.ProductRepository,
) *ReviewUsecase {
	return &ReviewUsecase{
		reviewRepo:    reviewRepo,
		orderItemRepo: orderItemRepo,
		productRepo:   productRepo,
	}
}

type SubmitReviewInput struct {
	Rating  int
	Comment string
}

type ReviewOutput struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ReviewListOutput struct {
	Items []ReviewOutput `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// SubmitReview は投稿（2回目は同じ行を上書き）。
func (u *ReviewUsecase) SubmitReview(ctx context.Context, userID int64, productID int64, in SubmitReviewInput) (ReviewOutput, error) {
	if userID <= 0 {
		return ReviewOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return ReviewOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return ReviewOutput{}, NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}
	comment := strings.TrimSpace(in.Comment)
	if len(comment) > 1000 {
		return ReviewOutput{}, NewHTTPError(http.StatusBadRequest, "comment too long")
	}

	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if err == repo.ErrNotFound {
			return ReviewOutput{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return ReviewOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 購入実績チェック
	eligible, err := u.orderItemRepo.ExistsCompletedForUserProduct(ctx, userID, productID)
	if err != nil {
		return ReviewOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !eligible {
		return ReviewOutput{}, NewHTTPError(http.StatusBadRequest, "not eligible")
	}

	now := time.Now()
	saved, err := u.reviewRepo.Upsert(ctx, model.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    in.Rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return ReviewOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toReviewOutput(saved), nil
}

func (u *ReviewUsecase) ListProductReviews(ctx context.Context, productID int64, q repo.ReviewListQuery) (ReviewListOutput, error) {
	if productID <= 0 {
		return ReviewListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if q.Page < 1 {
		return ReviewListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if q.Limit < 1 || q.Limit > 100 {
		return ReviewListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	reviews, total, err := u.reviewRepo.ListByProductID(ctx, productID, q)
	if err != nil {
		return ReviewListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]ReviewOutput, 0, len(reviews))
	for _, rv := range reviews {
		outs = append(outs, toReviewOutput(rv))
	}

	return ReviewListOutput{Items: outs, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func toReviewOutput(rv model.Review) ReviewOutput {
	return ReviewOutput{
		ID:        rv.ID,
		UserID:    rv.UserID,
		ProductID: rv.ProductID,
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		CreatedAt: rv.CreatedAt,
		UpdatedAt: rv.UpdatedAt,
	}
}

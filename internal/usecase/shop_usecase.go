package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"shopapi/internal/domain/model"
	repo "shopapi/internal/repository"
)

type ShopUsecase struct {
	shopRepo repo.ShopRepository
}

func NewShopUsecase(shopRepo repo.ShopRepository) *ShopUsecase {
	return &ShopUsecase{shopRepo: shopRepo}
}

type ShopInput struct {
	Name        string
	Description string
}

// CreateShop は出店。1ユーザー1店舗まで。
func (u *ShopUsecase) CreateShop(ctx context.Context, userID int64, in ShopInput) (model.Shop, error) {
	if userID <= 0 {
		return model.Shop{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 255 {
		return model.Shop{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}

	// 既に持っていたら拒否
	if _, err := u.shopRepo.FindByOwnerUserID(ctx, userID); err == nil {
		return model.Shop{}, NewHTTPError(http.StatusBadRequest, "shop already exists")
	} else if err != repo.ErrNotFound {
		return model.Shop{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := time.Now()
	created, err := u.shopRepo.Create(ctx, model.Shop{
		OwnerUserID: userID,
		Name:        name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		// owner_user_idのunique制約に弾かれた場合もここに来る
		return model.Shop{}, NewHTTPError(http.StatusBadRequest, "shop already exists")
	}

	return created, nil
}

func (u *ShopUsecase) GetMyShop(ctx context.Context, userID int64) (model.Shop, error) {
	if userID <= 0 {
		return model.Shop{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	s, err := u.shopRepo.FindByOwnerUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return model.Shop{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Shop{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return s, nil
}

func (u *ShopUsecase) UpdateMyShop(ctx context.Context, userID int64, in ShopInput) (model.Shop, error) {
	if userID <= 0 {
		return model.Shop{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 255 {
		return model.Shop{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}

	s, err := u.shopRepo.FindByOwnerUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return model.Shop{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Shop{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	s.Name = name
	s.Description = in.Description
	if err := u.shopRepo.Update(ctx, s); err != nil {
		return model.Shop{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return s, nil
}

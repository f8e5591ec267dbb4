package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"shopapi/internal/domain/model"
	repo "shopapi/internal/repository"
	"shopapi/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestProductUsecase_GetPublicProduct_Inactive_NotFound(t *testing.T) {
	productsRepo := new(ProductRepoMock)
	tx := new(TxManagerMock)
	uc := usecase.NewProductUsecase(productsRepo, tx)

	// 非公開商品は404（存在を漏らさない）
	productsRepo.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "非公開", IsActive: false}, nil)

	_, err := uc.GetPublicProduct(context.Background(), 100)
	assertErrContains(t, err, "not found")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
}

func TestProductUsecase_ListPublicProducts_Success(t *testing.T) {
	productsRepo := new(ProductRepoMock)
	tx := new(TxManagerMock)
	uc := usecase.NewProductUsecase(productsRepo, tx)

	q := repo.ProductListQuery{Page: 1, Limit: 20}
	productsRepo.On("ListPublic", mock.Anything, q).Return([]model.Product{
		{ID: 100, Name: "商品A", Price: 100, IsActive: true},
	}, int64(1), nil)

	out, err := uc.ListPublicProducts(context.Background(), q)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	assert.Equal(t, 1, len(out.Items))
}

func TestProductUsecase_CreateProduct_InvalidName(t *testing.T) {
	productsRepo := new(ProductRepoMock)
	tx := new(TxManagerMock)
	uc := usecase.NewProductUsecase(productsRepo, tx)

	_, err := uc.CreateProduct(context.Background(), 5, usecase.SellerProductInput{Name: "   ", Price: 100})
	assertErrContains(t, err, "invalid name")

	productsRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductUsecase_UpdateProduct_ForeignShop_NotFound(t *testing.T) {
	productsRepo := new(ProductRepoMock)
	tx := new(TxManagerMock)
	uc := usecase.NewProductUsecase(productsRepo, tx)

	// 他店舗の商品は404（存在を漏らさない）
	productsRepo.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, ShopID: 99, Name: "商品A", Price: 100}, nil)

	_, err := uc.UpdateProduct(context.Background(), 5, 100,
		usecase.SellerProductInput{Name: "商品A改", Price: 120})
	assertErrContains(t, err, "not found")

	productsRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductUsecase_SetStock_RecordsAdjustment(t *testing.T) {
	ctx := context.Background()
	sellerID := int64(9)
	shopID := int64(5)

	productsRepo := new(ProductRepoMock)
	invRepo := new(InventoryRepoMock)
	tx := new(TxManagerMock)

	tx.Repos = &TxReposMock{products: productsRepo, inventory: invRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	productsRepo.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, ShopID: shopID, Stock: 3}, nil)
	invRepo.On("SetStock", mock.Anything, int64(100), int64(10)).Return(nil)

	// 3 → 10 なので delta は +7
	invRepo.On("CreateAdjustment", mock.Anything, mock.MatchedBy(func(adj model.InventoryAdjustment) bool {
		return adj.ProductID == 100 && adj.Delta == 7 && adj.Reason == model.AdjustmentReasonSellerSet && adj.ActorUserID == sellerID
	})).Return(nil)

	uc := usecase.NewProductUsecase(productsRepo, tx)

	err := uc.SetStock(ctx, sellerID, shopID, 100, 10)
	assert.NoError(t, err)

	invRepo.AssertExpectations(t)
}

func TestProductUsecase_SetStock_NegativeStock(t *testing.T) {
	productsRepo := new(ProductRepoMock)
	tx := new(TxManagerMock)
	uc := usecase.NewProductUsecase(productsRepo, tx)

	err := uc.SetStock(context.Background(), 9, 5, 100, -1)
	assertErrContains(t, err, "invalid stock")
	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestProductUsecase_DeleteProduct_Success(t *testing.T) {
	productsRepo := new(ProductRepoMock)
	tx := new(TxManagerMock)
	uc := usecase.NewProductUsecase(productsRepo, tx)

	productsRepo.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, ShopID: 5}, nil)
	productsRepo.On("SoftDelete", mock.Anything, int64(100)).Return(nil)

	err := uc.DeleteProduct(context.Background(), 5, 100)
	assert.NoError(t, err)

	productsRepo.AssertExpectations(t)
}

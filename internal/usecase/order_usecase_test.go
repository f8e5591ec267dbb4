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

func validCheckoutInput() usecase.CheckoutInput {
	return usecase.CheckoutInput{
		Address:        "東京都千代田区1-1",
		ShippingMethod: "standard",
		PaymentMethod:  "mock_card",
	}
}

// =====================
// Checkout tests
// =====================

func TestOrderUsecase_Checkout_MissingAddress(t *testing.T) {
	tx := new(TxManagerMock)
	uc := usecase.NewOrderUsecase(tx)

	in := validCheckoutInput()
	in.Address = "  "

	_, err := uc.Checkout(context.Background(), 1, in)
	assertErrContains(t, err, "address is required")
	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestOrderUsecase_Checkout_MissingShippingMethod(t *testing.T) {
	tx := new(TxManagerMock)
	uc := usecase.NewOrderUsecase(tx)

	in := validCheckoutInput()
	in.ShippingMethod = ""

	_, err := uc.Checkout(context.Background(), 1, in)
	assertErrContains(t, err, "shipping_method is required")
}

func TestOrderUsecase_Checkout_MissingPaymentMethod(t *testing.T) {
	tx := new(TxManagerMock)
	uc := usecase.NewOrderUsecase(tx)

	in := validCheckoutInput()
	in.PaymentMethod = ""

	_, err := uc.Checkout(context.Background(), 1, in)
	assertErrContains(t, err, "payment_method is required")
}

func TestOrderUsecase_Checkout_EmptyCart(t *testing.T) {
	ctx := context.Background()
	userID := int64(1)

	tx := new(TxManagerMock)
	cartRepo := new(CartItemRepoMock)
	ordersRepo := new(OrderRepoMock)

	tx.Repos = &TxReposMock{cartItems: cartRepo, orders: ordersRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	cartRepo.On("ListByUserID", mock.Anything, userID, []int64(nil)).Return([]model.CartItem{}, nil)

	uc := usecase.NewOrderUsecase(tx)

	_, err := uc.Checkout(ctx, userID, validCheckoutInput())
	assertErrContains(t, err, "cart empty")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)

	ordersRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderUsecase_Checkout_Success(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	tx := new(TxManagerMock)
	cartRepo := new(CartItemRepoMock)
	productsRepo := new(ProductRepoMock)
	invRepo := new(InventoryRepoMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)

	tx.Repos = &TxReposMock{
		cartItems:  cartRepo,
		products:   productsRepo,
		inventory:  invRepo,
		orders:     ordersRepo,
		orderItems: itemsRepo,
	}
	tx.On("WithinTx", mock.Anything).Return(nil)

	// カート：商品A（100円×2）、商品B（50円×1）→ 合計250円
	cartItems := []model.CartItem{
		{ID: 1, UserID: userID, ProductID: 100, Quantity: 2},
		{ID: 2, UserID: userID, ProductID: 101, Quantity: 1},
	}
	cartRepo.On("ListByUserID", mock.Anything, userID, []int64(nil)).Return(cartItems, nil)

	productsRepo.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, ShopID: 5, Name: "商品A", Price: 100, Stock: 10, IsActive: true}, nil)
	productsRepo.On("FindByID", mock.Anything, int64(101)).
		Return(model.Product{ID: 101, ShopID: 6, Name: "商品B", Price: 50, Stock: 3, IsActive: true}, nil)

	invRepo.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(2)).Return(true, nil)
	invRepo.On("DecreaseStockIfEnough", mock.Anything, int64(101), int64(1)).Return(true, nil)
	invRepo.On("CreateAdjustment", mock.Anything, mock.AnythingOfType("model.InventoryAdjustment")).Return(nil)

	ordersRepo.On("Create", mock.Anything, mock.AnythingOfType("model.Order")).Return(int64(42), nil)
	itemsRepo.On("CreateBulk", mock.Anything, int64(42), mock.Anything).Return(nil)
	cartRepo.On("DeleteByIDs", mock.Anything, []int64{1, 2}).Return(nil)

	uc := usecase.NewOrderUsecase(tx)

	out, err := uc.Checkout(ctx, userID, validCheckoutInput())
	assert.NoError(t, err)

	assert.Equal(t, int64(42), out.ID)
	assert.Equal(t, string(model.OrderStatusPaid), out.Status)
	assert.Equal(t, int64(250), out.TotalPrice)
	assert.NotEmpty(t, out.Code)
	assert.Equal(t, 2, len(out.Items))

	// 明細はPENDINGで、その時点の価格をスナップショット
	assert.Equal(t, "商品A", out.Items[0].Name)
	assert.Equal(t, int64(100), out.Items[0].Price)
	assert.Equal(t, int64(2), out.Items[0].Quantity)
	assert.Equal(t, string(model.OrderItemStatusPending), out.Items[0].Status)
	assert.Equal(t, string(model.OrderItemStatusPending), out.Items[1].Status)

	tx.AssertExpectations(t)
	cartRepo.AssertExpectations(t)
	invRepo.AssertExpectations(t)
	ordersRepo.AssertExpectations(t)
	itemsRepo.AssertExpectations(t)
}

func TestOrderUsecase_Checkout_OutOfStock_Aborts(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	tx := new(TxManagerMock)
	cartRepo := new(CartItemRepoMock)
	productsRepo := new(ProductRepoMock)
	invRepo := new(InventoryRepoMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)

	tx.Repos = &TxReposMock{
		cartItems:  cartRepo,
		products:   productsRepo,
		inventory:  invRepo,
		orders:     ordersRepo,
		orderItems: itemsRepo,
	}
	tx.On("WithinTx", mock.Anything).Return(nil)

	cartItems := []model.CartItem{
		{ID: 1, UserID: userID, ProductID: 100, Quantity: 2},
		{ID: 2, UserID: userID, ProductID: 101, Quantity: 5},
	}
	cartRepo.On("ListByUserID", mock.Anything, userID, []int64(nil)).Return(cartItems, nil)

	productsRepo.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "商品A", Price: 100, IsActive: true}, nil)
	productsRepo.On("FindByID", mock.Anything, int64(101)).
		Return(model.Product{ID: 101, Name: "商品B", Price: 50, IsActive: true}, nil)

	// 2品目で在庫不足 → 全体中断（トランザクションがロールバックする前提）
	invRepo.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(2)).Return(true, nil)
	invRepo.On("DecreaseStockIfEnough", mock.Anything, int64(101), int64(5)).Return(false, nil)
	invRepo.On("CreateAdjustment", mock.Anything, mock.AnythingOfType("model.InventoryAdjustment")).Return(nil)

	uc := usecase.NewOrderUsecase(tx)

	_, err := uc.Checkout(ctx, userID, validCheckoutInput())
	assertErrContains(t, err, "out of stock")

	ordersRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	itemsRepo.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
	cartRepo.AssertNotCalled(t, "DeleteByIDs", mock.Anything, mock.Anything)
}

func TestOrderUsecase_Checkout_InactiveProduct(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	tx := new(TxManagerMock)
	cartRepo := new(CartItemRepoMock)
	productsRepo := new(ProductRepoMock)
	invRepo := new(InventoryRepoMock)

	tx.Repos = &TxReposMock{cartItems: cartRepo, products: productsRepo, inventory: invRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	cartRepo.On("ListByUserID", mock.Anything, userID, []int64(nil)).
		Return([]model.CartItem{{ID: 1, UserID: userID, ProductID: 100, Quantity: 1}}, nil)
	productsRepo.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "非公開", Price: 100, IsActive: false}, nil)

	uc := usecase.NewOrderUsecase(tx)

	_, err := uc.Checkout(ctx, userID, validCheckoutInput())
	assertErrContains(t, err, "invalid product")

	invRepo.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderUsecase_Checkout_IdempotencyKey_ReturnsExisting(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	tx := new(TxManagerMock)
	cartRepo := new(CartItemRepoMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)

	tx.Repos = &TxReposMock{cartItems: cartRepo, orders: ordersRepo, orderItems: itemsRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	existing := model.Order{ID: 42, Code: "abc", UserID: userID, Status: model.OrderStatusPaid, TotalPrice: 250}
	ordersRepo.On("FindByIdempotencyKey", mock.Anything, userID, "key-1").Return(existing, true, nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(42)).Return([]model.OrderItem{}, nil)

	uc := usecase.NewOrderUsecase(tx)

	in := validCheckoutInput()
	in.IdempotencyKey = "key-1"

	out, err := uc.Checkout(ctx, userID, in)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), out.ID)
	assert.Equal(t, int64(250), out.TotalPrice)

	// 既存注文を返すだけ。カートには触らない。
	cartRepo.AssertNotCalled(t, "ListByUserID", mock.Anything, mock.Anything, mock.Anything)
	ordersRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// =====================
// ListMyOrders tests
// =====================

func TestOrderUsecase_ListMyOrders_InvalidStatus(t *testing.T) {
	tx := new(TxManagerMock)
	uc := usecase.NewOrderUsecase(tx)

	_, err := uc.ListMyOrders(context.Background(), 1, repo.OrderListFilter{Page: 1, Limit: 20, Status: "SHIPPED"})
	assertErrContains(t, err, "invalid status")
	assertErrContains(t, err, "PENDING, PAID, COMPLETED, CANCELLED")
}

func TestOrderUsecase_ListMyOrders_InvalidPage(t *testing.T) {
	tx := new(TxManagerMock)
	uc := usecase.NewOrderUsecase(tx)

	_, err := uc.ListMyOrders(context.Background(), 1, repo.OrderListFilter{Page: 0, Limit: 20})
	assertErrContains(t, err, "invalid page")
}

func TestOrderUsecase_ListMyOrders_Success(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, orderItems: itemsRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	f := repo.OrderListFilter{Page: 1, Limit: 20}
	orders := []model.Order{
		{ID: 10, UserID: userID, Status: model.OrderStatusPaid},
		{ID: 11, UserID: userID, Status: model.OrderStatusCompleted},
	}
	ordersRepo.On("ListByUserID", mock.Anything, userID, f).Return(orders, int64(2), nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.OrderItem{}, nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(11)).Return([]model.OrderItem{}, nil)

	uc := usecase.NewOrderUsecase(tx)

	out, err := uc.ListMyOrders(ctx, userID, f)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), out.Total)
	assert.Equal(t, 2, len(out.Items))

	ordersRepo.AssertExpectations(t)
	itemsRepo.AssertExpectations(t)
}

// =====================
// GetMyOrderDetail tests
// =====================

func TestOrderUsecase_GetMyOrderDetail_ForeignOrder_NotFound(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, orderItems: itemsRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	// 他人の注文は404（存在を漏らさない）
	ordersRepo.On("FindByID", mock.Anything, int64(42)).
		Return(model.Order{ID: 42, UserID: 999}, nil)

	uc := usecase.NewOrderUsecase(tx)

	_, err := uc.GetMyOrderDetail(ctx, 7, 42)
	assertErrContains(t, err, "not found")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
}

// =====================
// CompleteItem tests
// =====================

func TestOrderUsecase_CompleteItem_Pending_Succeeds(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, orderItems: itemsRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(42)).
		Return(model.Order{ID: 42, UserID: userID, Status: model.OrderStatusPaid}, nil)
	itemsRepo.On("FindByID", mock.Anything, int64(1)).
		Return(model.OrderItem{ID: 1, OrderID: 42, Status: model.OrderItemStatusPending}, nil)
	itemsRepo.On("UpdateStatusIfCurrent", mock.Anything, int64(1),
		model.OrderItemStatusPending, model.OrderItemStatusCompleted).Return(true, nil)

	// 兄弟にまだPENDINGが残っている → 注文はCOMPLETEDにしない
	itemsRepo.On("ListByOrderID", mock.Anything, int64(42)).Return([]model.OrderItem{
		{ID: 1, OrderID: 42, Status: model.OrderItemStatusCompleted},
		{ID: 2, OrderID: 42, Status: model.OrderItemStatusPending},
	}, nil)

	uc := usecase.NewOrderUsecase(tx)

	out, err := uc.CompleteItem(ctx, userID, 42, 1)
	assert.NoError(t, err)
	assert.Equal(t, string(model.OrderStatusPaid), out.Status)

	ordersRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	itemsRepo.AssertExpectations(t)
}

func TestOrderUsecase_CompleteItem_LastItem_CompletesOrder(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, orderItems: itemsRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(42)).
		Return(model.Order{ID: 42, UserID: userID, Status: model.OrderStatusPaid}, nil)
	itemsRepo.On("FindByID", mock.Anything, int64(2)).
		Return(model.OrderItem{ID: 2, OrderID: 42, Status: model.OrderItemStatusPending}, nil)
	itemsRepo.On("UpdateStatusIfCurrent", mock.Anything, int64(2),
		model.OrderItemStatusPending, model.OrderItemStatusCompleted).Return(true, nil)

	// 全明細COMPLETED → 同一トランザクション内で注文もCOMPLETED
	itemsRepo.On("ListByOrderID", mock.Anything, int64(42)).Return([]model.OrderItem{
		{ID: 1, OrderID: 42, Status: model.OrderItemStatusCompleted},
		{ID: 2, OrderID: 42, Status: model.OrderItemStatusCompleted},
	}, nil)
	ordersRepo.On("UpdateStatus", mock.Anything, int64(42), model.OrderStatusCompleted).Return(nil)

	uc := usecase.NewOrderUsecase(tx)

	out, err := uc.CompleteItem(ctx, userID, 42, 2)
	assert.NoError(t, err)
	assert.Equal(t, string(model.OrderStatusCompleted), out.Status)

	ordersRepo.AssertExpectations(t)
	itemsRepo.AssertExpectations(t)
}

func TestOrderUsecase_CompleteItem_FromDelivered_Forbidden(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, orderItems: itemsRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(42)).
		Return(model.Order{ID: 42, UserID: userID, Status: model.OrderStatusPaid}, nil)
	itemsRepo.On("FindByID", mock.Anything, int64(1)).
		Return(model.OrderItem{ID: 1, OrderID: 42, Status: model.OrderItemStatusDelivered}, nil)

	uc := usecase.NewOrderUsecase(tx)

	_, err := uc.CompleteItem(ctx, userID, 42, 1)
	assertErrContains(t, err, "Invalid status transition (current: DELIVERED)")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Status)

	itemsRepo.AssertNotCalled(t, "UpdateStatusIfCurrent",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderUsecase_CompleteItem_ConcurrentTransition_Forbidden(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, orderItems: itemsRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(42)).
		Return(model.Order{ID: 42, UserID: userID, Status: model.OrderStatusPaid}, nil)

	// 読んだ時点ではPENDINGだが、条件付きUPDATEが他のリクエストに先を越されて失敗
	itemsRepo.On("FindByID", mock.Anything, int64(1)).
		Return(model.OrderItem{ID: 1, OrderID: 42, Status: model.OrderItemStatusPending}, nil).Once()
	itemsRepo.On("UpdateStatusIfCurrent", mock.Anything, int64(1),
		model.OrderItemStatusPending, model.OrderItemStatusCompleted).Return(false, nil)
	itemsRepo.On("FindByID", mock.Anything, int64(1)).
		Return(model.OrderItem{ID: 1, OrderID: 42, Status: model.OrderItemStatusCancelled}, nil)

	uc := usecase.NewOrderUsecase(tx)

	_, err := uc.CompleteItem(ctx, userID, 42, 1)
	assertErrContains(t, err, "Invalid status transition (current: CANCELLED)")
}

func TestOrderUsecase_CompleteItem_ItemOfOtherOrder_NotFound(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, orderItems: itemsRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(42)).
		Return(model.Order{ID: 42, UserID: userID, Status: model.OrderStatusPaid}, nil)
	itemsRepo.On("FindByID", mock.Anything, int64(1)).
		Return(model.OrderItem{ID: 1, OrderID: 99, Status: model.OrderItemStatusPending}, nil)

	uc := usecase.NewOrderUsecase(tx)

	_, err := uc.CompleteItem(ctx, userID, 42, 1)
	assertErrContains(t, err, "not found")
}

// =====================
// CancelOrder tests
// =====================

func TestOrderUsecase_CancelOrder_WithCompletedItem_Forbidden(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)
	invRepo := new(InventoryRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, orderItems: itemsRepo, inventory: invRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(42)).
		Return(model.Order{ID: 42, UserID: userID, Status: model.OrderStatusPaid}, nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(42)).Return([]model.OrderItem{
		{ID: 1, OrderID: 42, ProductID: 100, Quantity: 2, Status: model.OrderItemStatusCompleted},
		{ID: 2, OrderID: 42, ProductID: 101, Quantity: 1, Status: model.OrderItemStatusPending},
	}, nil)

	uc := usecase.NewOrderUsecase(tx)

	_, err := uc.CancelOrder(ctx, userID, 42)
	assertErrContains(t, err, "order has completed items")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Status)

	invRepo.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
	ordersRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderUsecase_CancelOrder_AlreadyCancelled(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(42)).
		Return(model.Order{ID: 42, UserID: userID, Status: model.OrderStatusCancelled}, nil)

	uc := usecase.NewOrderUsecase(tx)

	_, err := uc.CancelOrder(ctx, userID, 42)
	assertErrContains(t, err, "order already cancelled")
}

func TestOrderUsecase_CancelOrder_RestocksPendingOnly(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)
	invRepo := new(InventoryRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, orderItems: itemsRepo, inventory: invRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(42)).
		Return(model.Order{ID: 42, UserID: userID, Status: model.OrderStatusPaid}, nil)

	// PENDINGとDELIVERED混在。戻すのはPENDINGだけ。
	itemsRepo.On("ListByOrderID", mock.Anything, int64(42)).Return([]model.OrderItem{
		{ID: 1, OrderID: 42, ProductID: 100, Quantity: 2, Status: model.OrderItemStatusPending},
		{ID: 2, OrderID: 42, ProductID: 101, Quantity: 1, Status: model.OrderItemStatusDelivered},
	}, nil)

	itemsRepo.On("UpdateStatusIfCurrent", mock.Anything, int64(1),
		model.OrderItemStatusPending, model.OrderItemStatusCancelled).Return(true, nil)
	invRepo.On("IncreaseStock", mock.Anything, int64(100), int64(2)).Return(nil)
	invRepo.On("CreateAdjustment", mock.Anything, mock.AnythingOfType("model.InventoryAdjustment")).Return(nil)

	ordersRepo.On("UpdateStatus", mock.Anything, int64(42), model.OrderStatusCancelled).Return(nil)

	uc := usecase.NewOrderUsecase(tx)

	out, err := uc.CancelOrder(ctx, userID, 42)
	assert.NoError(t, err)
	assert.Equal(t, string(model.OrderStatusCancelled), out.Status)

	// DELIVERED明細は触らない
	itemsRepo.AssertNotCalled(t, "UpdateStatusIfCurrent", mock.Anything, int64(2),
		mock.Anything, mock.Anything)
	invRepo.AssertNotCalled(t, "IncreaseStock", mock.Anything, int64(101), mock.Anything)

	ordersRepo.AssertExpectations(t)
	invRepo.AssertExpectations(t)
}

func TestOrderUsecase_CancelOrder_ConcurrentItemTransition_NoDoubleRestock(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)
	invRepo := new(InventoryRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, orderItems: itemsRepo, inventory: invRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(42)).
		Return(model.Order{ID: 42, UserID: userID, Status: model.OrderStatusPaid}, nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(42)).Return([]model.OrderItem{
		{ID: 1, OrderID: 42, ProductID: 100, Quantity: 2, Status: model.OrderItemStatusPending},
	}, nil)

	// 読み取り後に他のリクエストが遷移済み → 条件付きUPDATE失敗 → restockしない
	itemsRepo.On("UpdateStatusIfCurrent", mock.Anything, int64(1),
		model.OrderItemStatusPending, model.OrderItemStatusCancelled).Return(false, nil)
	ordersRepo.On("UpdateStatus", mock.Anything, int64(42), model.OrderStatusCancelled).Return(nil)

	uc := usecase.NewOrderUsecase(tx)

	_, err := uc.CancelOrder(ctx, userID, 42)
	assert.NoError(t, err)

	invRepo.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
	invRepo.AssertNotCalled(t, "CreateAdjustment", mock.Anything, mock.Anything)
}

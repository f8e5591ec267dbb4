package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"shopapi/internal/domain/model"
	repo "shopapi/internal/repository"

	"github.com/google/uuid"
)

type OrderUsecase struct {
	tx repo.TransactionManager
}

func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

type CheckoutInput struct {
	Address        string
	ShippingMethod string
	PaymentMethod  string
	CartItemIDs    []int64
	IdempotencyKey string
}

type OrderItemOutput struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	Status    string `json:"status"`
}

type OrderOutput struct {
	ID             int64             `json:"id"`
	Code           string            `json:"code"`
	UserID         int64             `json:"user_id"`
	Status         string            `json:"status"`
	TotalPrice     int64             `json:"total_price"`
	Address        string            `json:"address"`
	ShippingMethod string            `json:"shipping_method"`
	PaymentMethod  string            `json:"payment_method"`
	CreatedAt      time.Time         `json:"created_at"`
	Items          []OrderItemOutput `json:"items"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// Checkout はカート明細を1つの注文に変換する。
// 注文作成・在庫減算・カート削除は全部1トランザクション（部分適用はしない）。
func (u *OrderUsecase) Checkout(ctx context.Context, userID int64, in CheckoutInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	address := strings.TrimSpace(in.Address)
	shipping := strings.TrimSpace(in.ShippingMethod)
	payment := strings.TrimSpace(in.PaymentMethod)
	if address == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "address is required")
	}
	if shipping == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "shipping_method is required")
	}
	if payment == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "payment_method is required")
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// キーが来ていれば、同じキーは同じ注文を返す
		if key != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if found {
				items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				out = toOrderOutput(existing, items)
				return nil
			}
		}

		// カート明細取得（IDフィルタは任意）
		cartItems, err := r.CartItems().ListByUserID(ctx, userID, in.CartItemIDs)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}

		// 在庫を確定時に再チェックして減らす。価格はこの時点の商品価格をスナップショット。
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		consumedIDs := make([]int64, 0, len(cartItems))
		var total int64 = 0

		for _, ci := range cartItems {
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "invalid product")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !p.IsActive {
				return NewHTTPError(http.StatusBadRequest, "invalid product")
			}

			// 在庫減算（足りないなら false → 全体を中断）
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, ci.ProductID, ci.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "out of stock")
			}

			if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
				ProductID:   ci.ProductID,
				ActorUserID: userID,
				Delta:       -ci.Quantity,
				Reason:      model.AdjustmentReasonCheckout,
				CreatedAt:   time.Now(),
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			now := time.Now()
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           ci.ProductID,
				ShopID:              p.ShopID,
				ProductNameSnapshot: p.Name,
				UnitPriceSnapshot:   p.Price,
				Quantity:            ci.Quantity,
				Status:              model.OrderItemStatusPending,
				CreatedAt:           now,
				UpdatedAt:           now,
			})
			consumedIDs = append(consumedIDs, ci.ID)

			total += p.Price * ci.Quantity
		}

		// 注文作成（決済はモックなので即PAID）
		var keyPtr *string
		if key != "" {
			keyPtr = &key
		}
		now := time.Now()
		order := model.Order{
			Code:           uuid.NewString(),
			UserID:         userID,
			Status:         model.OrderStatusPaid,
			TotalPrice:     total,
			Address:        address,
			ShippingMethod: shipping,
			PaymentMethod:  payment,
			IdempotencyKey: keyPtr,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			// 同時に同じキーが入った等の競合はもう一回検索して同じ結果を返す
			if key != "" {
				ex2, found2, err2 := r.Orders().FindByIdempotencyKey(ctx, userID, key)
				if err2 == nil && found2 {
					items2, err3 := r.OrderItems().ListByOrderID(ctx, ex2.ID)
					if err3 != nil {
						return NewHTTPError(http.StatusInternalServerError, "db error")
					}
					out = toOrderOutput(ex2, items2)
					return nil
				}
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 消費したカート明細を削除（再注文防止）
		if err := r.CartItems().DeleteByIDs(ctx, consumedIDs); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		out = toOrderOutput(order, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// ListMyOrders は自分の注文一覧（ページング、status絞り込みは任意）。
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, f repo.OrderListFilter) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if f.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Status != "" && !model.IsValidOrderStatus(f.Status) {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest,
			"invalid status (allowed: "+orderStatusList()+")")
	}

	var out OrderListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListByUserID(ctx, userID, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs := make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}

		out = OrderListOutput{Items: outs, Total: total, Page: f.Page, Limit: f.Limit}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			// 他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// CompleteItem は購入者の受取確認（PENDING → COMPLETED）。
// 全明細がCOMPLETEDになったら、同じトランザクション内で注文もCOMPLETEDにする。
func (u *OrderUsecase) CompleteItem(ctx context.Context, userID int64, orderID int64, itemID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 || itemID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		it, err := r.OrderItems().FindByID(ctx, itemID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if it.OrderID != orderID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		// 遷移ルールは遷移表で一元判定
		if !model.CanTransitionOrderItem(it.Status, model.OrderItemStatusCompleted) {
			return NewHTTPError(http.StatusForbidden,
				"Invalid status transition (current: "+string(it.Status)+")")
		}

		// 条件付きUPDATE。直前に他のリクエストが遷移させていたら失敗する。
		ok, err := r.OrderItems().UpdateStatusIfCurrent(ctx, itemID,
			it.Status, model.OrderItemStatusCompleted)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			current, err := r.OrderItems().FindByID(ctx, itemID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			return NewHTTPError(http.StatusForbidden,
				"Invalid status transition (current: "+string(current.Status)+")")
		}

		// 兄弟明細を読み直して集約判定。更新と同じトランザクションなので取りこぼさない。
		siblings, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		allCompleted := true
		for _, s := range siblings {
			if s.Status != model.OrderItemStatusCompleted {
				allCompleted = false
				break
			}
		}
		if allCompleted {
			if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusCompleted); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			o.Status = model.OrderStatusCompleted
		}

		out = toOrderOutput(o, siblings)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// CancelOrder は注文全体のキャンセル。
// COMPLETEDな明細が1つでもあれば拒否。PENDING明細はCANCELLEDにして在庫を戻す。
// DELIVERED明細はこの経路では触らない。
func (u *OrderUsecase) CancelOrder(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if o.Status == model.OrderStatusCancelled {
			return NewHTTPError(http.StatusForbidden, "order already cancelled")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// COMPLETEDが1つでもあれば注文全体はキャンセル不可
		for _, it := range items {
			if it.Status == model.OrderItemStatusCompleted {
				return NewHTTPError(http.StatusForbidden, "order has completed items")
			}
		}

		// PENDINGだけCANCELLEDにして在庫を戻す。
		// 条件付きUPDATEが成功した明細だけ戻すので、二重restockは起きない。
		for _, it := range items {
			if it.Status != model.OrderItemStatusPending {
				continue
			}
			ok, err := r.OrderItems().UpdateStatusIfCurrent(ctx, it.ID,
				model.OrderItemStatusPending, model.OrderItemStatusCancelled)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				continue
			}
			if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
				ProductID:   it.ProductID,
				ActorUserID: userID,
				Delta:       it.Quantity,
				Reason:      model.AdjustmentReasonRestockCancel,
				CreatedAt:   time.Now(),
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		// DELIVERED明細が残っていても注文自体はCANCELLEDにする
		if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusCancelled); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		o.Status = model.OrderStatusCancelled

		after, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, after)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func orderStatusList() string {
	parts := make([]string, 0, len(model.AllOrderStatuses))
	for _, s := range model.AllOrderStatuses {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ", ")
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
			Status:    string(it.Status),
		})
	}

	return OrderOutput{
		ID:             o.ID,
		Code:           o.Code,
		UserID:         o.UserID,
		Status:         string(o.Status),
		TotalPrice:     o.TotalPrice,
		Address:        o.Address,
		ShippingMethod: o.ShippingMethod,
		PaymentMethod:  o.PaymentMethod,
		CreatedAt:      o.CreatedAt,
		Items:          outItems,
	}
}

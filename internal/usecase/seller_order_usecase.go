package usecase

import (
	"context"
	"net/http"
	"time"

	"shopapi/internal/domain/model"
	repo "shopapi/internal/repository"
)

// SellerOrderUsecase はセラーによる明細のフルフィルメント操作。
type SellerOrderUsecase struct {
	tx repo.TransactionManager
}

func NewSellerOrderUsecase(tx repo.TransactionManager) *SellerOrderUsecase {
	return &SellerOrderUsecase{tx: tx}
}

type ShopItemListOutput struct {
	Items []OrderItemOutput `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ListShopItems は自分の店舗の注文明細一覧。
func (u *SellerOrderUsecase) ListShopItems(ctx context.Context, shopID int64, f repo.OrderItemListFilter) (ShopItemListOutput, error) {
	if shopID <= 0 {
		return ShopItemListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if f.Page < 1 {
		return ShopItemListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return ShopItemListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Status != "" && !model.IsValidOrderItemStatus(f.Status) {
		return ShopItemListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var out ShopItemListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items, total, err := r.OrderItems().ListByShopID(ctx, shopID, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs := make([]OrderItemOutput, 0, len(items))
		for _, it := range items {
			outs = append(outs, OrderItemOutput{
				ID:        it.ID,
				ProductID: it.ProductID,
				Name:      it.ProductNameSnapshot,
				Price:     it.UnitPriceSnapshot,
				Quantity:  it.Quantity,
				Status:    string(it.Status),
			})
		}

		out = ShopItemListOutput{Items: outs, Total: total, Page: f.Page, Limit: f.Limit}
		return nil
	})

	if err != nil {
		return ShopItemListOutput{}, err
	}
	return out, nil
}

// MarkItemDelivered は発送済みマーク（PENDING → DELIVERED、1回だけ）。
func (u *SellerOrderUsecase) MarkItemDelivered(ctx context.Context, shopID int64, itemID int64) (OrderItemOutput, error) {
	return u.transitionItem(ctx, shopID, itemID, model.OrderItemStatusDelivered, 0, "")
}

// CancelItem はセラーによる明細キャンセル（PENDING → CANCELLED）。
// 成功したときだけ在庫を戻す。
func (u *SellerOrderUsecase) CancelItem(ctx context.Context, sellerUserID int64, shopID int64, itemID int64) (OrderItemOutput, error) {
	return u.transitionItem(ctx, shopID, itemID, model.OrderItemStatusCancelled, sellerUserID, model.AdjustmentReasonRestockCancel)
}

// transitionItem は店舗スコープの明細遷移。restockReasonが空でなければ在庫戻しまで行う。
func (u *SellerOrderUsecase) transitionItem(ctx context.Context, shopID int64, itemID int64, to model.OrderItemStatus, actorUserID int64, restockReason string) (OrderItemOutput, error) {
	if shopID <= 0 {
		return OrderItemOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID <= 0 {
		return OrderItemOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderItemOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		it, err := r.OrderItems().FindByID(ctx, itemID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		// 他店舗の明細は「存在しない扱い」
		if it.ShopID != shopID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		if !model.CanTransitionOrderItem(it.Status, to) {
			return NewHTTPError(http.StatusForbidden,
				"Invalid status transition (current: "+string(it.Status)+")")
		}

		ok, err := r.OrderItems().UpdateStatusIfCurrent(ctx, itemID, it.Status, to)
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

		// キャンセル時だけ在庫戻し。条件付きUPDATEが通った1回だけなので二重restockはない。
		if restockReason != "" {
			if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
				ProductID:   it.ProductID,
				ActorUserID: actorUserID,
				Delta:       it.Quantity,
				Reason:      restockReason,
				CreatedAt:   time.Now(),
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		out = OrderItemOutput{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
			Status:    string(to),
		}
		return nil
	})

	if err != nil {
		return OrderItemOutput{}, err
	}
	return out, nil
}

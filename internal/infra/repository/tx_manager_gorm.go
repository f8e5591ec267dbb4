package repository

import (
	"context"
	"errors"
	"time"

	repo "shopapi/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type txReposGorm struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	cartItems  repo.CartItemRepository
	inventory  repo.InventoryRepository
	products   repo.ProductRepository
	reviews    repo.ReviewRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository         { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *txReposGorm) CartItems() repo.CartItemRepository   { return r.cartItems }
func (r *txReposGorm) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *txReposGorm) Products() repo.ProductRepository     { return r.products }
func (r *txReposGorm) Reviews() repo.ReviewRepository       { return r.reviews }

const (
	txMaxAttempts = 3
	txRetryDelay  = 20 * time.Millisecond
)

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

// シリアライズ失敗（40001）とデッドロック（40P01）のときだけ再実行させる。
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	var err error

	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		err = tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			//repoはtxを持ったDBで作り直す
			r := &txReposGorm{
				orders:     NewOrderGormRepository(tx),
				orderItems: NewOrderItemGormRepository(tx),
				cartItems:  NewCartItemGormRepository(tx),
				inventory:  NewInventoryGormRepository(tx),
				products:   NewProductGormRepository(tx),
				reviews:    NewReviewGormRepository(tx),
			}
			return fn(r)
		})

		if err == nil || !isRetryableTxError(err) {
			return err
		}

		// 回数上限つきのリトライ
		if attempt < txMaxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(txRetryDelay * time.Duration(attempt)):
			}
		}
	}

	return err
}

package server

import (
	"shopapi/internal/config"
	"shopapi/internal/handler"
	repo "shopapi/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Handlers はルート登録に必要なものをまとめて受け取る。
type Handlers struct {
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Shop    *handler.ShopHandler
	Seller  *handler.SellerHandler
	Review  *handler.ReviewHandler
}

// New はechoを組み立てて返す（起動はしない）。
func New(cfg config.Config, h Handlers, shopRepo repo.ShopRepository) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	RegisterRoutes(e, cfg, h, shopRepo)

	return e
}

// Start は指定アドレスで起動する。
func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}

package server

import (
	"shopapi/internal/config"
	repo "shopapi/internal/repository"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers, shopRepo repo.ShopRepository) {
	h.Auth.RegisterRoutes(e)
	h.Product.RegisterRoutes(e)
	h.Review.RegisterRoutes(e, cfg)
	h.Cart.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)
	h.Shop.RegisterRoutes(e, cfg)
	h.Seller.RegisterRoutes(e, cfg, shopRepo)
}

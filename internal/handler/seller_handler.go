package handler

import (
	"net/http"

	"shopapi/internal/config"
	"shopapi/internal/middleware"
	repo "shopapi/internal/repository"
	"shopapi/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /seller のHTTP。店舗を持つユーザーだけが使える。
// 商品管理・在庫設定と、明細のフルフィルメント（配達/キャンセル）をまとめる。
type SellerHandler struct {
	productUC *usecase.ProductUsecase
	orderUC   *usecase.SellerOrderUsecase
}

func NewSellerHandler(productUC *usecase.ProductUsecase, orderUC *usecase.SellerOrderUsecase) *SellerHandler {
	return &SellerHandler{productUC: productUC, orderUC: orderUC}
}

type SellerProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Stock       int64  `json:"stock"`
	IsActive    bool   `json:"is_active"`
}

type SetStockRequest struct {
	Stock int64 `json:"stock"`
}

func (h *SellerHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, shopRepo repo.ShopRepository) {
	g := e.Group("/seller")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.SellerGuard(shopRepo))

	g.GET("/products", h.listProducts)
	g.POST("/products", h.createProduct)
	g.PATCH("/products/:id", h.updateProduct)
	g.DELETE("/products/:id", h.deleteProduct)
	g.PUT("/products/:id/stock", h.setStock)

	g.GET("/order-items", h.listOrderItems)
	g.POST("/order-items/:id/deliver", h.deliverItem)
	g.POST("/order-items/:id/cancel", h.cancelItem)
}

func (h *SellerHandler) listProducts(c echo.Context) error {
	shopID, ok := getShopIDFromContext(c)
	if !ok {
		return writeUnauthorized(c)
	}

	page, limit, ok := parsePageLimit(c)
	if !ok {
		return writeBadRequest(c, "invalid page or limit")
	}

	out, err := h.productUC.ListShopProducts(c.Request().Context(), shopID, repo.ProductListQuery{
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusOK, "ok", out)
}

func (h *SellerHandler) createProduct(c echo.Context) error {
	shopID, ok := getShopIDFromContext(c)
	if !ok {
		return writeUnauthorized(c)
	}

	var req SellerProductRequest
	if err := c.Bind(&req); err != nil {
		return writeBadRequest(c, "invalid body")
	}

	out, err := h.productUC.CreateProduct(c.Request().Context(), shopID, usecase.SellerProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusCreated, "product created", out)
}

func (h *SellerHandler) updateProduct(c echo.Context) error {
	shopID, ok := getShopIDFromContext(c)
	if !ok {
		return writeUnauthorized(c)
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return writeBadRequest(c, "invalid id")
	}

	var req SellerProductRequest
	if err := c.Bind(&req); err != nil {
		return writeBadRequest(c, "invalid body")
	}

	out, err := h.productUC.UpdateProduct(c.Request().Context(), shopID, id, usecase.SellerProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusOK, "product updated", out)
}

func (h *SellerHandler) deleteProduct(c echo.Context) error {
	shopID, ok := getShopIDFromContext(c)
	if !ok {
		return writeUnauthorized(c)
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return writeBadRequest(c, "invalid id")
	}

	if err := h.productUC.DeleteProduct(c.Request().Context(), shopID, id); err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusOK, "product deleted", nil)
}

func (h *SellerHandler) setStock(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeUnauthorized(c)
	}
	shopID, ok := getShopIDFromContext(c)
	if !ok {
		return writeUnauthorized(c)
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return writeBadRequest(c, "invalid id")
	}

	var req SetStockRequest
	if err := c.Bind(&req); err != nil {
		return writeBadRequest(c, "invalid body")
	}

	if err := h.productUC.SetStock(c.Request().Context(), userID, shopID, id, req.Stock); err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusOK, "stock updated", nil)
}

func (h *SellerHandler) listOrderItems(c echo.Context) error {
	shopID, ok := getShopIDFromContext(c)
	if !ok {
		return writeUnauthorized(c)
	}

	page, limit, ok := parsePageLimit(c)
	if !ok {
		return writeBadRequest(c, "invalid page or limit")
	}

	out, err := h.orderUC.ListShopItems(c.Request().Context(), shopID, repo.OrderItemListFilter{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
	})
	if err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusOK, "ok", out)
}

func (h *SellerHandler) deliverItem(c echo.Context) error {
	shopID, ok := getShopIDFromContext(c)
	if !ok {
		return writeUnauthorized(c)
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return writeBadRequest(c, "invalid id")
	}

	out, err := h.orderUC.MarkItemDelivered(c.Request().Context(), shopID, id)
	if err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusOK, "item delivered", out)
}

func (h *SellerHandler) cancelItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeUnauthorized(c)
	}
	shopID, ok := getShopIDFromContext(c)
	if !ok {
		return writeUnauthorized(c)
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return writeBadRequest(c, "invalid id")
	}

	out, err := h.orderUC.CancelItem(c.Request().Context(), userID, shopID, id)
	if err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusOK, "item cancelled", out)
}

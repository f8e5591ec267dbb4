package handler

import (
	"net/http"

	"shopapi/internal/config"
	"shopapi/internal/middleware"
	repo "shopapi/internal/repository"
	"shopapi/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type CheckoutRequest struct {
	Address        string  `json:"address"`
	ShippingMethod string  `json:"shipping_method"`
	PaymentMethod  string  `json:"payment_method"`
	CartItemIDs    []int64 `json:"cart_item_ids"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("", h.checkout)
	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.POST("/:id/cancel", h.cancel)
	g.POST("/:id/items/:itemId/complete", h.completeItem)
}

func (h *OrderHandler) checkout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeUnauthorized(c)
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return writeBadRequest(c, "invalid body")
	}

	//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
	idemKey := c.Request().Header.Get("X-Idempotency-Key")

	out, err := h.uc.Checkout(c.Request().Context(), userID, usecase.CheckoutInput{
		Address:        req.Address,
		ShippingMethod: req.ShippingMethod,
		PaymentMethod:  req.PaymentMethod,
		CartItemIDs:    req.CartItemIDs,
		IdempotencyKey: idemKey,
	})
	if err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusCreated, "order created", out)
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeUnauthorized(c)
	}

	page, limit, ok := parsePageLimit(c)
	if !ok {
		return writeBadRequest(c, "invalid page or limit")
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), userID, repo.OrderListFilter{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return writeSuccess(c, http.StatusOK, "ok", out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeUnauthorized(c)
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return writeBadRequest(c, "invalid id")
	}

	out, err := h.uc.GetMyOrderDetail(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return writeSuccess(c, http.StatusOK, "ok", out)
}

func (h *OrderHandler) cancel(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeUnauthorized(c)
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return writeBadRequest(c, "invalid id")
	}

	out, err := h.uc.CancelOrder(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return writeSuccess(c, http.StatusOK, "order cancelled", out)
}

func (h *OrderHandler) completeItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeUnauthorized(c)
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		return writeBadRequest(c, "invalid id")
	}
	itemID, err := parseIDParam(c, "itemId")
	if err != nil {
		return writeBadRequest(c, "invalid id")
	}

	out, err := h.uc.CompleteItem(c.Request().Context(), userID, orderID, itemID)
	if err != nil {
		return writeError(c, err)
	}
	return writeSuccess(c, http.StatusOK, "item completed", out)
}

package handler

import (
	"net/http"

	"shopapi/internal/config"
	"shopapi/internal/middleware"
	"shopapi/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /shops のHTTP（出店と自店舗の管理）
type ShopHandler struct {
	uc *usecase.ShopUsecase
}

func NewShopHandler(uc *usecase.ShopUsecase) *ShopHandler {
	return &ShopHandler{uc: uc}
}

type ShopRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *ShopHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/shops")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("", h.create)
	g.GET("/me", h.getMine)
	g.PATCH("/me", h.updateMine)
}

func (h *ShopHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeUnauthorized(c)
	}

	var req ShopRequest
	if err := c.Bind(&req); err != nil {
		return writeBadRequest(c, "invalid body")
	}

	out, err := h.uc.CreateShop(c.Request().Context(), userID, usecase.ShopInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusCreated, "shop created", out)
}

func (h *ShopHandler) getMine(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeUnauthorized(c)
	}

	out, err := h.uc.GetMyShop(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusOK, "ok", out)
}

func (h *ShopHandler) updateMine(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeUnauthorized(c)
	}

	var req ShopRequest
	if err := c.Bind(&req); err != nil {
		return writeBadRequest(c, "invalid body")
	}

	out, err := h.uc.UpdateMyShop(c.Request().Context(), userID, usecase.ShopInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusOK, "shop updated", out)
}

package handler

import (
	"net/http"

	"shopapi/internal/config"
	"shopapi/internal/middleware"
	repo "shopapi/internal/repository"
	"shopapi/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ReviewHandler struct {
	uc *usecase.ReviewUsecase
}

func NewReviewHandler(uc *usecase.ReviewUsecase) *ReviewHandler {
	return &ReviewHandler{uc: uc}
}

type SubmitReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *ReviewHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	// 一覧は公開、投稿は要ログイン
	e.GET("/products/:id/reviews", h.list)
	e.POST("/products/:id/reviews", h.submit, middleware.AuthJWT(cfg))
}

func (h *ReviewHandler) list(c echo.Context) error {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		return writeBadRequest(c, "invalid id")
	}

	page, limit, ok := parsePageLimit(c)
	if !ok {
		return writeBadRequest(c, "invalid page or limit")
	}

	out, err := h.uc.ListProductReviews(c.Request().Context(), productID, repo.ReviewListQuery{
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusOK, "ok", out)
}

func (h *ReviewHandler) submit(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeUnauthorized(c)
	}

	productID, err := parseIDParam(c, "id")
	if err != nil {
		return writeBadRequest(c, "invalid id")
	}

	var req SubmitReviewRequest
	if err := c.Bind(&req); err != nil {
		return writeBadRequest(c, "invalid body")
	}

	out, err := h.uc.SubmitReview(c.Request().Context(), userID, productID, usecase.SubmitReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusCreated, "review saved", out)
}

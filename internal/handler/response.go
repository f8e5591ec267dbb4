package handler

import (
	"net/http"
	"strconv"

	"shopapi/internal/middleware"
	"shopapi/internal/usecase"

	"github.com/labstack/echo/v4"
)

// APIResponse は全エンドポイント共通のレスポンス封筒。
// 成功: {success: true, message, data} / 失敗: {success: false, message}
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeSuccess(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, APIResponse{Success: true, Message: message, Data: data})
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, APIResponse{Success: false, Message: he.Message})
	}

	//想定外は詳細を返さずログだけ残す
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, APIResponse{Success: false, Message: "internal error"})
}

func writeUnauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, APIResponse{Success: false, Message: "unauthorized"})
}

func writeBadRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, APIResponse{Success: false, Message: message})
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	raw := c.Get(middleware.CtxUserIDKey)
	userID, ok := raw.(int64)
	if !ok || userID <= 0 {
		return 0, false
	}
	return userID, true
}

func getShopIDFromContext(c echo.Context) (int64, bool) {
	raw := c.Get(middleware.CtxShopIDKey)
	shopID, ok := raw.(int64)
	if !ok || shopID <= 0 {
		return 0, false
	}
	return shopID, true
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// page/limitのクエリを読む（default: page=1, limit=20）
func parsePageLimit(c echo.Context) (int, int, bool) {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		page = p
	}

	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		limit = l
	}

	return page, limit, true
}

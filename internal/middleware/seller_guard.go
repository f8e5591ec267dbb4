package middleware

import (
	"net/http"

	"shopapi/internal/repository"

	"github.com/labstack/echo/v4"
)

// SellerGuard は「店舗を持っているユーザー」だけ通す。
// 持っていればshop_idをcontextに積む（セラー操作のスコープに使う）。
func SellerGuard(shopRepo repository.ShopRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawUserID := c.Get(CtxUserIDKey)
			userID, ok := rawUserID.(int64)
			if !ok || userID <= 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			shop, err := shopRepo.FindByOwnerUserID(c.Request().Context(), userID)
			if err == repository.ErrNotFound {
				//店舗なし＝セラーではない
				return c.JSON(http.StatusForbidden, errorJSON("seller only"))
			}
			if err != nil {
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}

			c.Set(CtxShopIDKey, shop.ID)

			return next(c)
		}
	}
}

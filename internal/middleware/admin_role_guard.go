package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const RoleAdmin = "ADMIN"

//contextに入っているroleがADMINかどうかを確認します。
//AuthJWTの後ろに置く。

func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxUserRoleKey).(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//ADMIN以外は拒否
			if role != RoleAdmin {
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}

			return next(c)
		}
	}
}

// 監査ログのactor用
func AdminActor(c echo.Context) string {
	sub, _ := c.Get(CtxSubjectKey).(string)
	if sub == "" {
		return "admin"
	}
	return "admin:" + sub
}

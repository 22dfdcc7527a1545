package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// CronSecretはスケジューラからの呼び出しだけ通す。
// secretが空なら誰でも叩ける（開発用）。
func CronSecret(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return next(c)
			}

			tok, ok := bearerToken(c.Request())
			if !ok || subtle.ConstantTimeCompare([]byte(tok), []byte(secret)) != 1 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			return next(c)
		}
	}
}

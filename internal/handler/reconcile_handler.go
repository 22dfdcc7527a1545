package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 定期実行（cron）から叩かれる照合エンドポイント
type ReconcileHandler struct {
	uc         *usecase.ReconcileUsecase
	cronSecret string
}

func NewReconcileHandler(uc *usecase.ReconcileUsecase, cronSecret string) *ReconcileHandler {
	return &ReconcileHandler{uc: uc, cronSecret: cronSecret}
}

func (h *ReconcileHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/orders")
	g.Use(middleware.CronSecret(h.cronSecret))
	g.GET("/poll", h.poll)
	g.POST("/poll", h.poll)
}

func (h *ReconcileHandler) poll(c echo.Context) error {
	sum, err := h.uc.PollPendingOrders(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sum)
}

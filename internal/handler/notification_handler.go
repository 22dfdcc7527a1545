package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type NotificationHandler struct {
	uc *usecase.NotificationUsecase
}

func NewNotificationHandler(uc *usecase.NotificationUsecase) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

type TestNotificationRequest struct {
	Email string `json:"email"`
}

func (h *NotificationHandler) RegisterRoutes(e *echo.Echo, jwtSecret string) {
	g := e.Group("/api/notifications")
	g.Use(middleware.AuthJWT(jwtSecret))
	g.Use(middleware.AdminRoleGuard())

	g.POST("/test", h.sendTest)
}

func (h *NotificationHandler) sendTest(c echo.Context) error {
	var req TestNotificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.SendTest(c.Request().Context(), middleware.AdminActor(c), req.Email); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "test notification sent"})
}

package handler

import (
	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"
	"net/http"

	"github.com/labstack/echo/v4"
)

// /admin/stats のHTTP
type AdminStatsHandler struct {
	uc *usecase.AdminStatsUsecase
}

// DI
func NewAdminStatsHandler(uc *usecase.AdminStatsUsecase) *AdminStatsHandler {
	return &AdminStatsHandler{uc: uc}
}

func (h *AdminStatsHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/admin/stats")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.GET("", h.stats)
}

func (h *AdminStatsHandler) stats(c echo.Context) error {
	out, err := h.uc.Stats(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

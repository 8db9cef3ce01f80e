package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	md "github.com/Astemirdum/lending-service/pkg/middleware"
	statsModel "github.com/Astemirdum/lending-service/stats/internal/model"
)

type Handler struct {
	statsSvc StatsService
	log      *zap.Logger
}

func New(statsSvc StatsService, log *zap.Logger) *Handler {
	return &Handler{
		statsSvc: statsSvc,
		log:      log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{StackSize: 4 << 10}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(rate.Limit(baseRPS)))
	base.GET("/manage/health", h.Health)

	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(rate.Limit(apiRPS)),
		md.AuthContext,
	)
	api.GET("/stats", h.GetStats)
	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// GetStats serves aggregates; ?actor= narrows them to one actor.
func (h *Handler) GetStats(c echo.Context) error {
	ctx := c.Request().Context()
	stat, err := h.statsSvc.GetStats(ctx, c.QueryParam("actor"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if stat.Data == nil {
		stat.Data = []statsModel.ActorStats{}
	}
	return c.JSON(http.StatusOK, stat)
}

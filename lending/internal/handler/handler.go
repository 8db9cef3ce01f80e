package handler

import (
	"net/http"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/geo"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/recommend"
	"github.com/Astemirdum/lending-service/pkg/auth"
	mw "github.com/Astemirdum/lending-service/pkg/middleware"
	"github.com/Astemirdum/lending-service/pkg/validate"
	_ "github.com/Astemirdum/lending-service/swagger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Handler struct {
	svc     LendingService
	metrics http.Handler
	log     *zap.Logger
}

type Option func(h *Handler)

// WithMetricsHandler exposes h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(hd *Handler) {
		hd.metrics = h
	}
}

func New(svc LendingService, log *zap.Logger, opts ...Option) *Handler {
	h := &Handler{
		svc: svc,
		log: log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", mw.NewRateLimiter(rate.Limit(baseRPS)))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)
	if h.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(h.metrics))
	}

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(mw.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		mw.NewRateLimiter(rate.Limit(apiRPS)),
		mw.AuthContext,
	)

	api.POST("/items", h.CreateItem)
	api.GET("/items", h.ListOwnItems)
	api.GET("/items/:itemId", h.GetItem)
	api.GET("/items/:itemId/requests", h.ListItemRequests)
	api.GET("/items/:itemId/distance", h.ItemDistance)

	api.POST("/requests", h.CreateRequest)
	api.GET("/requests", h.ListOwnRequests)
	api.GET("/requests/:requestId", h.GetRequest)
	api.POST("/requests/:requestId/accept", h.AcceptRequest)
	api.POST("/requests/:requestId/reject", h.RejectRequest)
	api.POST("/requests/:requestId/complete", h.CompleteRequest)
	api.POST("/requests/:requestId/dispute", h.DisputeRequest)
	api.POST("/requests/:requestId/rating", h.RateLoan)

	api.GET("/recommendations", h.Recommendations)

	api.GET("/users/me/location", h.GetOwnLocation)
	api.PUT("/users/me/location", h.UpdateLocation)
	api.GET("/users/:userId/location", h.GetLocation)
	api.GET("/users/:userId/rating", h.OwnerRating)
	api.GET("/users/:userId/history", h.OwnerHistory)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// httpError maps domain errors onto status codes.
func httpError(err error) *echo.HTTPError {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidDateRange),
		errors.Is(err, errs.ErrInvalidRating),
		errors.Is(err, errs.ErrInvalidLocation):
		code = http.StatusBadRequest
	case errors.Is(err, errs.ErrNotOwner),
		errors.Is(err, errs.ErrNotBorrower),
		errors.Is(err, errs.ErrNotParticipant):
		code = http.StatusForbidden
	case errors.Is(err, errs.ErrUnavailable),
		errors.Is(err, errs.ErrDuplicatePending),
		errors.Is(err, errs.ErrAlreadyCompleted),
		errors.Is(err, errs.ErrTerminalState),
		errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrDuplicateRecord),
		errors.Is(err, errs.ErrAlreadyRated),
		errors.Is(err, errs.ErrStoreConflict):
		code = http.StatusConflict
	}
	return echo.NewHTTPError(code, err.Error())
}

func actor(c echo.Context) (string, error) {
	userID, err := auth.GetUserID(c.Request().Context())
	if err != nil {
		return "", echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return userID, nil
}

func param(c echo.Context, name string) (string, error) {
	v := c.Param(name)
	if v == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "empty "+name)
	}
	return v, nil
}

func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// items

func (h *Handler) CreateItem(c echo.Context) error {
	userID, err := actor(c)
	if err != nil {
		return err
	}
	var req model.CreateItemRequest
	req.OwnerID = userID
	if err = bind(c, &req); err != nil {
		return err
	}
	item, err := h.svc.CreateItem(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *Handler) ListOwnItems(c echo.Context) error {
	userID, err := actor(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ListOwnItems(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetItem(c echo.Context) error {
	itemID, err := param(c, "itemId")
	if err != nil {
		return err
	}
	item, err := h.svc.GetItem(c.Request().Context(), itemID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) ListItemRequests(c echo.Context) error {
	userID, err := actor(c)
	if err != nil {
		return err
	}
	itemID, err := param(c, "itemId")
	if err != nil {
		return err
	}
	reqs, err := h.svc.ListItemRequests(c.Request().Context(), itemID, userID)
	if err != nil {
		return httpError(err)
	}
	if reqs == nil {
		reqs = []model.BorrowRequest{}
	}
	return c.JSON(http.StatusOK, reqs)
}

type distanceResponse struct {
	ItemID   string       `json:"itemId"`
	Distance geo.Distance `json:"distanceKm"`
}

func (h *Handler) ItemDistance(c echo.Context) error {
	userID, err := actor(c)
	if err != nil {
		return err
	}
	itemID, err := param(c, "itemId")
	if err != nil {
		return err
	}
	d, err := h.svc.ItemDistance(c.Request().Context(), itemID, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, distanceResponse{ItemID: itemID, Distance: d})
}

// requests

func (h *Handler) CreateRequest(c echo.Context) error {
	userID, err := actor(c)
	if err != nil {
		return err
	}
	var req model.CreateBorrowRequest
	req.BorrowerID = userID
	if err = bind(c, &req); err != nil {
		return err
	}
	resp, err := h.svc.CreateRequest(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *Handler) ListOwnRequests(c echo.Context) error {
	userID, err := actor(c)
	if err != nil {
		return err
	}
	reqs, err := h.svc.ListOwnRequests(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	if reqs == nil {
		reqs = []model.BorrowRequest{}
	}
	return c.JSON(http.StatusOK, reqs)
}

func (h *Handler) GetRequest(c echo.Context) error {
	userID, err := actor(c)
	if err != nil {
		return err
	}
	requestID, err := param(c, "requestId")
	if err != nil {
		return err
	}
	resp, err := h.svc.GetRequest(c.Request().Context(), requestID, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) AcceptRequest(c echo.Context) error {
	userID, err := actor(c)
	if err != nil {
		return err
	}
	requestID, err := param(c, "requestId")
	if err != nil {
		return err
	}
	resp, err := h.svc.AcceptRequest(c.Request().Context(), requestID, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) RejectRequest(c echo.Context) error {
	userID, err := actor(c)
	if err != nil {
		return err
	}
	requestID, err := param(c, "requestId")
	if err != nil {
		return err
	}
	var req model.RejectRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	resp, err := h.svc.RejectRequest(c.Request().Context(), requestID, userID, req.Reason)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) CompleteRequest(c echo.Context) error {
	userID, err := actor(c)
	if err != nil {
		return err
	}
	requestID, err := param(c, "requestId")
	if err != nil {
		return err
	}
	var req model.CompleteRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	resp, err := h.svc.CompleteRequest(c.Request().Context(), requestID, userID, req.ReturnDate)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) DisputeRequest(c echo.Context) error {
	userID, err := actor(c)
	if err != nil {
		return err
	}
	requestID, err := param(c, "requestId")
	if err != nil {
		return err
	}
	var req model.DisputeRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	resp, err := h.svc.DisputeRequest(c.Request().Context(), requestID, userID, req.Reason)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) RateLoan(c echo.Context) error {
	userID, err := actor(c)
	if err != nil {
		return err
	}
	requestID, err := param(c, "requestId")
	if err != nil {
		return err
	}
	var req model.RateRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	rec, err := h.svc.RateLoan(c.Request().Context(), requestID, userID, *req.Rating)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

// recommendations

func (h *Handler) Recommendations(c echo.Context) error {
	userID, err := actor(c)
	if err != nil {
		return err
	}
	var (
		q           recommend.Query
		sort, order string
		condition   string
		ageRange    string
	)
	err = echo.QueryParamsBinder(c).
		String("name", &q.Filter.Name).
		String("categoryId", &q.Filter.CategoryID).
		String("condition", &condition).
		String("ageRange", &ageRange).
		String("sort", &sort).
		String("order", &order).
		Int("page", &q.Page).
		Int("size", &q.Size).
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	switch model.Condition(condition) {
	case "", model.ConditionNew, model.ConditionUsed:
		q.Filter.Condition = model.Condition(condition)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown condition "+condition)
	}
	switch model.AgeRange(ageRange) {
	case "", model.AgeToddler, model.AgeKid, model.AgeChild, model.AgeTeen:
		q.Filter.AgeRange = model.AgeRange(ageRange)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown ageRange "+ageRange)
	}
	switch recommend.FeeOrder(sort) {
	case recommend.FeeUnsorted, recommend.FeeAsc, recommend.FeeDesc:
		q.Fee = recommend.FeeOrder(sort)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "sort must be asc or desc")
	}
	switch order {
	case "", "recency":
	case "distance":
		q.ByDistance = true
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "order must be recency or distance")
	}

	page, err := h.svc.Recommendations(c.Request().Context(), userID, q)
	if err != nil {
		return httpError(err)
	}
	if page.Items == nil {
		page.Items = []recommend.Recommendation{}
	}
	return c.JSON(http.StatusOK, page)
}

// locations

func (h *Handler) GetOwnLocation(c echo.Context) error {
	userID, err := actor(c)
	if err != nil {
		return err
	}
	loc, err := h.svc.GetLocation(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loc)
}

func (h *Handler) GetLocation(c echo.Context) error {
	userID, err := param(c, "userId")
	if err != nil {
		return err
	}
	loc, err := h.svc.GetLocation(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loc)
}

func (h *Handler) UpdateLocation(c echo.Context) error {
	userID, err := actor(c)
	if err != nil {
		return err
	}
	var req model.UpdateLocationRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	loc, err := h.svc.UpdateLocation(c.Request().Context(), userID, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loc)
}

// profile

func (h *Handler) OwnerRating(c echo.Context) error {
	userID, err := param(c, "userId")
	if err != nil {
		return err
	}
	rating, err := h.svc.OwnerRating(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rating)
}

func (h *Handler) OwnerHistory(c echo.Context) error {
	userID, err := param(c, "userId")
	if err != nil {
		return err
	}
	history, err := h.svc.OwnerHistory(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	if history == nil {
		history = []model.LoanHistoryRecord{}
	}
	return c.JSON(http.StatusOK, history)
}

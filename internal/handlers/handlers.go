package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mauv0809/finance-dashboard/internal/config"
	"github.com/mauv0809/finance-dashboard/internal/dashboard"
	"github.com/mauv0809/finance-dashboard/internal/ingest"
	"github.com/mauv0809/finance-dashboard/internal/observability"
	"github.com/mauv0809/finance-dashboard/internal/session"
	"github.com/mauv0809/finance-dashboard/internal/views"
)

type Handler struct {
	pipeline  *dashboard.Pipeline
	sessions  *session.Store
	branding  config.Branding
	log       *zap.SugaredLogger
	maxUpload int64
}

func New(p *dashboard.Pipeline, sessions *session.Store, branding config.Branding, maxUpload int64, log *zap.SugaredLogger) *Handler {
	return &Handler{
		pipeline:  p,
		sessions:  sessions,
		branding:  branding,
		log:       log,
		maxUpload: maxUpload,
	}
}

// Register mounts the dashboard routes on e.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/", h.Index)
	e.POST("/upload", h.Upload)
	e.POST("/upload/clear", h.ClearUpload)
	e.GET("/charts/:file", h.Chart)
	e.GET("/export.xlsx", h.Export)

	api := e.Group("/api")
	api.GET("/dashboard", h.APIDashboard)
	api.POST("/upload", h.APIUpload)
}

// Health returns application health status
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Index renders the dashboard for the session's data and the requested range.
func (h *Handler) Index(c echo.Context) error {
	q, err := bindRange(c)
	if err != nil {
		return Render(c, http.StatusBadRequest, views.Dashboard(views.Page{
			Branding: h.branding,
			Error:    &views.PageError{Message: httpErrorMessage(err)},
		}))
	}

	page := views.Page{
		Branding: h.branding,
		Start:    q.Start,
		End:      q.End,
		Query:    q.Encode(),
	}
	up := h.sessionUpload(c)
	if up != nil {
		page.Upload = up.Name
	}

	res, err := h.run(c, up, q)
	if err != nil {
		status, perr := h.describe(err)
		page.Error = perr
		return Render(c, status, views.Dashboard(page))
	}
	page.Result = res
	return Render(c, http.StatusOK, views.Dashboard(page))
}

// APIDashboard handles GET /api/dashboard
// Returns the pipeline result as JSON. Query params:
// - start, end: YYYY-MM-DD (optional, default to the data bounds)
func (h *Handler) APIDashboard(c echo.Context) error {
	q, err := bindRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: httpErrorMessage(err)})
	}

	res, err := h.run(c, h.sessionUpload(c), q)
	if err != nil {
		status, perr := h.describe(err)
		return c.JSON(status, ErrorResponse{Message: perr.Message, Detail: perr.Detail})
	}
	return c.JSON(http.StatusOK, res)
}

// ErrorResponse is the JSON body of a failed API call.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (h *Handler) run(c echo.Context, up *ingest.Upload, q RangeQuery) (*dashboard.Result, error) {
	start, end := q.Times()
	res, err := h.pipeline.Run(dashboard.Input{Upload: up, Start: start, End: end})
	if err != nil {
		return nil, err
	}
	h.log.Debugw("Dashboard computed", "path", c.Path(), "source", res.Source, "periods", res.Dataset.Len())
	return res, nil
}

// describe maps a pipeline error to a status code and what the user sees.
// Data problems are the caller's to fix; anything else is ours and is reported.
func (h *Handler) describe(err error) (int, *views.PageError) {
	switch {
	case dashboard.IsFatalData(err), errors.Is(err, ingest.ErrNoDataSource):
		return http.StatusUnprocessableEntity, &views.PageError{Message: err.Error()}
	}

	observability.CaptureErr(err)
	perr := &views.PageError{Message: "An unexpected error occurred while processing the data.", Detail: err.Error()}
	var uerr *dashboard.UnexpectedProcessingError
	if errors.As(err, &uerr) {
		perr.Detail = uerr.Error() + "\n\n" + string(uerr.Stack)
	}
	return http.StatusInternalServerError, perr
}

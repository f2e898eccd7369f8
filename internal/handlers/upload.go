package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mauv0809/finance-dashboard/internal/dashboard"
	"github.com/mauv0809/finance-dashboard/internal/ingest"
	"github.com/mauv0809/finance-dashboard/internal/session"
)

var (
	errNoFile     = errors.New("no file was uploaded; choose a CSV file first")
	errFileTooBig = errors.New("uploaded file exceeds the size limit")
)

// UploadResponse is the JSON response for upload endpoints.
type UploadResponse struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	Source   string   `json:"source,omitempty"`
	Count    int      `json:"count,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Elapsed  string   `json:"elapsed,omitempty"`
}

// Upload handles POST /upload
// Keeps the file in the caller's session and redirects to the dashboard,
// which from then on uses it as its data source.
func (h *Handler) Upload(c echo.Context) error {
	up, err := h.readUpload(c)
	if err != nil {
		h.log.Warnw("Rejected upload", "error", err)
		return echo.NewHTTPError(uploadStatus(err), err.Error())
	}

	id := h.sessionID(c, true)
	h.sessions.Put(id, *up)
	h.log.Infow("Stored upload", "name", up.Name, "bytes", len(up.Data))
	return c.Redirect(http.StatusSeeOther, "/")
}

// ClearUpload handles POST /upload/clear
// Returns the session to the embedded dataset.
func (h *Handler) ClearUpload(c echo.Context) error {
	if id := h.sessionID(c, false); id != "" {
		h.sessions.Delete(id)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// APIUpload handles POST /api/upload
// Runs the full pipeline on the posted file without storing it.
func (h *Handler) APIUpload(c echo.Context) error {
	start := time.Now()

	up, err := h.readUpload(c)
	if err != nil {
		return c.JSON(uploadStatus(err), UploadResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	res, err := h.pipeline.Run(dashboard.Input{Upload: up})
	if err != nil {
		status, perr := h.describe(err)
		return c.JSON(status, UploadResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to process %s: %s", up.Name, perr.Message),
		})
	}

	elapsed := time.Since(start)
	count := res.Dataset.Len()
	msg := fmt.Sprintf("Successfully processed %d periods", count)
	if res.Source != ingest.SourceUpload {
		msg = fmt.Sprintf("Could not read %s; processed %d periods of the embedded dataset instead", up.Name, count)
	}
	h.log.Infow("API upload processed", "name", up.Name, "source", res.Source, "periods", count, "elapsed", elapsed)

	return c.JSON(http.StatusOK, UploadResponse{
		Success:  res.Source == ingest.SourceUpload,
		Message:  msg,
		Source:   string(res.Source),
		Count:    count,
		Warnings: res.Warnings,
		Elapsed:  elapsed.String(),
	})
}

func (h *Handler) readUpload(c echo.Context) (*ingest.Upload, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	if fh.Size > h.maxUpload {
		return nil, fmt.Errorf("%w (%d bytes)", errFileTooBig, h.maxUpload)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUpload+1))
	if err != nil {
		return nil, fmt.Errorf("reading uploaded file: %w", err)
	}
	if int64(len(data)) > h.maxUpload {
		return nil, fmt.Errorf("%w (%d bytes)", errFileTooBig, h.maxUpload)
	}
	if len(data) == 0 {
		return nil, errNoFile
	}
	return &ingest.Upload{Name: fh.Filename, Data: data}, nil
}

func uploadStatus(err error) int {
	switch {
	case errors.Is(err, errNoFile):
		return http.StatusBadRequest
	case errors.Is(err, errFileTooBig):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// sessionID returns the caller's session id. With create set, a missing or
// malformed cookie is replaced by a fresh id.
func (h *Handler) sessionID(c echo.Context, create bool) string {
	if ck, err := c.Cookie(session.CookieName); err == nil && session.Valid(ck.Value) {
		return ck.Value
	}
	if !create {
		return ""
	}
	id := session.NewID()
	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (h *Handler) sessionUpload(c echo.Context) *ingest.Upload {
	id := h.sessionID(c, false)
	if id == "" {
		return nil
	}
	return h.sessions.Get(id)
}

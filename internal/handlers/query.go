package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/mauv0809/finance-dashboard/internal/models"
)

// CustomValidator plugs validator/v10 into echo's Validate.
type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// RangeQuery is the optional date range accepted by the page and the API.
type RangeQuery struct {
	Start string `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `query:"end" validate:"omitempty,datetime=2006-01-02"`
}

func bindRange(c echo.Context) (RangeQuery, error) {
	var q RangeQuery
	if err := c.Bind(&q); err != nil {
		return q, err
	}
	q.Start = strings.TrimSpace(q.Start)
	q.End = strings.TrimSpace(q.End)
	if err := c.Validate(&q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return q, echo.NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("invalid %s date %q: expected YYYY-MM-DD", strings.ToLower(verrs[0].Field()), verrs[0].Value()))
		}
		return q, err
	}
	return q, nil
}

// httpErrorMessage strips the status code echo adds to an HTTPError's text.
func httpErrorMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return fmt.Sprint(he.Message)
	}
	return err.Error()
}

// Times returns the parsed bounds; an absent bound is nil.
func (q RangeQuery) Times() (start, end *time.Time) {
	return parseDay(q.Start), parseDay(q.End)
}

// Encode returns the range as a query string for links back into the app.
func (q RangeQuery) Encode() string {
	v := url.Values{}
	if q.Start != "" {
		v.Set("start", q.Start)
	}
	if q.End != "" {
		v.Set("end", q.End)
	}
	return v.Encode()
}

func parseDay(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mauv0809/finance-dashboard/internal/config"
	"github.com/mauv0809/finance-dashboard/internal/dashboard"
	"github.com/mauv0809/finance-dashboard/internal/ingest"
	"github.com/mauv0809/finance-dashboard/internal/session"
)

const uploadCSV = "Data;Receita_Total;Custos_Operacionais\n2024-01-31;1000;400\n2024-02-29;1200;500\n"

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	log := zap.NewNop().Sugar()
	p := dashboard.NewPipeline(ingest.NewLoader(log), log, nil)
	h := New(p, session.NewStore(time.Hour), config.Branding{Title: "Test Dashboard"}, 1<<20, log)

	e := echo.New()
	e.Validator = NewValidator()
	h.Register(e)
	return e
}

func do(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func get(e *echo.Echo, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	return do(e, req)
}

func postFile(t *testing.T, e *echo.Echo, target, name, data string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	return do(e, req)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == session.CookieName {
			return ck
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestHealth(t *testing.T) {
	rec := get(newTestServer(t), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestIndex(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
		want   []string
	}{
		{
			name:   "embedded full range",
			target: "/",
			status: http.StatusOK,
			want:   []string{"Test Dashboard", "Data source: embedded base dataset", "R$ 62,000.00", "/charts/revenue.svg"},
		},
		{
			name:   "range outside data",
			target: "/?start=2030-01-01&end=2030-12-31",
			status: http.StatusOK,
			want:   []string{dashboard.NoticeNoData},
		},
		{
			name:   "malformed start date",
			target: "/?start=31-01-2023",
			status: http.StatusBadRequest,
			want:   []string{"invalid start date", "expected YYYY-MM-DD"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(newTestServer(t), tt.target)
			assert.Equal(t, tt.status, rec.Code)
			for _, w := range tt.want {
				assert.Contains(t, rec.Body.String(), w)
			}
		})
	}
}

func TestAPIDashboard_SingleMonth(t *testing.T) {
	rec := get(newTestServer(t), "/api/dashboard?start=2023-06-30&end=2023-06-30")
	require.Equal(t, http.StatusOK, rec.Code)

	var res dashboard.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, ingest.SourceEmbedded, res.Source)
	assert.False(t, res.Empty)
	require.Equal(t, 1, res.Dataset.Len())
	assert.Equal(t, "2023-06-30", res.Dataset.Periods[0].Date.Format("2006-01-02"))
	assert.NotEmpty(t, res.KPIs)
}

func TestAPIDashboard_InvertedRangeIsNeverProduced(t *testing.T) {
	rec := get(newTestServer(t), "/api/dashboard?start=2023-06-30&end=2023-01-31")
	require.Equal(t, http.StatusOK, rec.Code)

	var res dashboard.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Selection.Range.End.Before(res.Selection.Range.Start))
}

func TestUploadSession(t *testing.T) {
	e := newTestServer(t)

	rec := postFile(t, e, "/upload", "mine.csv", uploadCSV)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	ck := sessionCookie(t, rec)

	rec = get(e, "/", ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Data source: uploaded file")
	assert.Contains(t, rec.Body.String(), "mine.csv")

	// Another browser without the cookie never sees the upload.
	rec = get(e, "/")
	assert.Contains(t, rec.Body.String(), "Data source: embedded base dataset")

	req := httptest.NewRequest(http.MethodPost, "/upload/clear", nil)
	req.AddCookie(ck)
	rec = do(e, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = get(e, "/", ck)
	assert.Contains(t, rec.Body.String(), "Data source: embedded base dataset")
}

func TestUpload_NoFile(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	rec := do(newTestServer(t), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_MissingDateColumn(t *testing.T) {
	e := newTestServer(t)
	rec := postFile(t, e, "/upload", "nodate.csv", "Mes,Receita_Total\n2024-01,100\n")
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = get(e, "/", sessionCookie(t, rec))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "column &#39;Data&#39; was not found")
}

func TestAPIUpload(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		data    string
		status  int
		success bool
		source  string
		count   int
		warns   int
		message string
	}{
		{
			name: "valid file", file: "good.csv", data: uploadCSV,
			status: http.StatusOK, success: true, source: "upload", count: 2,
		},
		{
			name: "unreadable file falls back", file: "tabs.csv", data: "Data\tReceita_Total\n2024-01-31\t10\n",
			status: http.StatusOK, success: false, source: "embedded", count: 24, warns: 1,
			message: "Could not read tabs.csv",
		},
		{
			name: "no valid dates", file: "dates.csv", data: "Data,Receita_Total\nfoo,1\nbar,2\n",
			status: http.StatusUnprocessableEntity, message: "no valid dates found in column 'Data'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postFile(t, newTestServer(t), "/api/upload", tt.file, tt.data)
			require.Equal(t, tt.status, rec.Code)

			var resp UploadResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.success, resp.Success)
			assert.Equal(t, tt.source, resp.Source)
			assert.Equal(t, tt.count, resp.Count)
			assert.Len(t, resp.Warnings, tt.warns)
			if tt.message != "" {
				assert.Contains(t, resp.Message, tt.message)
			}
		})
	}
}

func TestAPIUpload_TooLarge(t *testing.T) {
	log := zap.NewNop().Sugar()
	p := dashboard.NewPipeline(ingest.NewLoader(log), log, nil)
	h := New(p, session.NewStore(time.Hour), config.Branding{}, 16, log)
	e := echo.New()
	e.Validator = NewValidator()
	h.Register(e)

	rec := postFile(t, e, "/api/upload", "big.csv", uploadCSV)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestChart(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
	}{
		{"revenue", "/charts/revenue.svg", http.StatusOK},
		{"customers", "/charts/customers.svg", http.StatusOK},
		{"filtered", "/charts/delinquency.svg?start=2023-01-31&end=2023-03-31", http.StatusOK},
		{"unknown name", "/charts/profit.svg", http.StatusNotFound},
		{"wrong extension", "/charts/revenue.png", http.StatusNotFound},
		{"empty selection", "/charts/margin.svg?start=2030-01-01", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(newTestServer(t), tt.target)
			require.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "image/svg+xml", rec.Header().Get(echo.HeaderContentType))
				assert.Contains(t, rec.Body.String(), "<svg")
			}
		})
	}
}

func TestChart_MissingColumn(t *testing.T) {
	e := newTestServer(t)
	rec := postFile(t, e, "/upload", "mine.csv", uploadCSV)
	ck := sessionCookie(t, rec)

	rec = get(e, "/charts/customers.svg", ck)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = get(e, "/charts/margin.svg", ck)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExport(t *testing.T) {
	rec := get(newTestServer(t), "/export.xlsx?start=2023-01-01&end=2023-03-31")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "dashboard.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Data")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestDescribe(t *testing.T) {
	h := &Handler{log: zap.NewNop().Sugar()}

	status, perr := h.describe(dashboard.ErrMissingDateColumn)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Empty(t, perr.Detail)

	status, _ = h.describe(ingest.ErrNoDataSource)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	uerr := &dashboard.UnexpectedProcessingError{Stage: "derive", Cause: errors.New("boom"), Stack: []byte("goroutine 1 [running]")}
	status, perr = h.describe(uerr)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.True(t, strings.Contains(perr.Detail, "boom"))
	assert.Contains(t, perr.Detail, "goroutine 1 [running]")
}

func TestRangeQuery_Encode(t *testing.T) {
	assert.Equal(t, "", RangeQuery{}.Encode())
	assert.Equal(t, "end=2023-02-28&start=2023-01-31", RangeQuery{Start: "2023-01-31", End: "2023-02-28"}.Encode())

	start, end := RangeQuery{Start: "2023-01-31"}.Times()
	require.NotNil(t, start)
	assert.Nil(t, end)
}

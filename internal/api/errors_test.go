package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/witsml-explorer/backend/internal/catalog"
	"github.com/witsml-explorer/backend/internal/jobs"
	"github.com/witsml-explorer/backend/internal/logindex"
	"github.com/witsml-explorer/backend/internal/storage"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{
			name:       "api error passes through",
			err:        NewConflictError("busy"),
			wantStatus: http.StatusConflict,
			wantCode:   "CONFLICT",
		},
		{
			name:       "kind mismatch",
			err:        &logindex.KindMismatchError{Left: logindex.KindDepth, Right: logindex.KindTime},
			wantStatus: http.StatusConflict,
			wantCode:   "INCOMPATIBLE_LOG_TYPES",
		},
		{
			name:       "parse error",
			err:        &logindex.ParseError{Raw: "abc", Kind: logindex.KindDepth},
			wantStatus: http.StatusBadRequest,
			wantCode:   "PARSE_ERROR",
		},
		{
			name:       "wrapped validation error",
			err:        fmt.Errorf("submit: %w", &logindex.ValidationError{Field: "offset", Value: "0", Reason: "offset must not be zero"}),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
			wantField:  "offset",
		},
		{
			name:       "missing log",
			err:        fmt.Errorf("%w: W/B/L", catalog.ErrLogNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "missing file",
			err:        fmt.Errorf("%w: abc", storage.ErrFileNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "unknown job type",
			err:        fmt.Errorf("%w: Nope", jobs.ErrUnknownJobType),
			wantStatus: http.StatusBadRequest,
			wantCode:   "UNKNOWN_JOB_TYPE",
		},
		{
			name:       "queue full",
			err:        jobs.ErrQueueFull,
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "SERVICE_UNAVAILABLE",
		},
		{
			name:       "anything else",
			err:        assert.AnError,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromError(tt.err)
			assert.Equal(t, tt.wantStatus, apiErr.Status)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantField, apiErr.Field)
		})
	}
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()

	t.Run("echo http error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		ErrorHandler(echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"), c)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"HTTP_ERROR"`)
	})

	t.Run("head request has no body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodHead, "/", nil), rec)

		ErrorHandler(catalog.ErrLogNotFound, c)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestSetupMiddleware(t *testing.T) {
	e := echo.New()
	SetupMiddleware(e, MiddlewareConfig{
		EnableCORS: true,
		BodyLimit:  "1K",
	})
	s := &testServer{e: e}
	full := newTestServer(t)
	RegisterRoutes(e, NewHandlers(&Dependencies{
		Catalog: full.catalog,
		Files:   full.files,
		Jobs:    full.jobs,
		Version: "test",
	}))

	rec := s.do(t, http.MethodGet, "/api/health", nil, echo.HeaderOrigin, "http://localhost:5173")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	big := `{"first":"` + strings.Repeat("9", 2048) + `","second":""}`
	rec = s.do(t, http.MethodPost, "/api/compare/datetime", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

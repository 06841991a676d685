package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanRequest(t *testing.T, e *echo.Echo, device string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if device != "" {
		req.Header.Set("X-Device-ID", device)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/events/code/:code")
	c.SetParamNames("code")
	c.SetParamValues("abc123")
	return c, rec
}

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"joined": true})
}

func TestScanDebounce_FirstScanPasses(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	e := echo.New()

	mock.ExpectSetNX("scan:device-1:abc123", 1, ScanDebounceTTL).SetVal(true)

	c, rec := scanRequest(t, e, "device-1")
	err := ScanDebounce(rdb)(okHandler)(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanDebounce_RepeatScanRejected(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	e := echo.New()

	// key already held: a frame scanned twice within the window
	mock.ExpectSetNX("scan:device-1:abc123", 1, ScanDebounceTTL).SetVal(false)

	c, rec := scanRequest(t, e, "device-1")
	err := ScanDebounce(rdb)(okHandler)(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanDebounce_RedisErrorDegrades(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	e := echo.New()

	mock.ExpectSetNX("scan:device-1:abc123", 1, ScanDebounceTTL).SetErr(assert.AnError)

	c, rec := scanRequest(t, e, "device-1")
	err := ScanDebounce(rdb)(okHandler)(c)

	// the join must stay available when Redis is down
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestScanDebounce_NilClientPassesThrough(t *testing.T) {
	e := echo.New()
	c, rec := scanRequest(t, e, "")
	err := ScanDebounce(nil)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

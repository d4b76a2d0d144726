package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_LevelFallback(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "bogus", "json")
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())

	l.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	l.Info().Msg("shown")
	assert.Contains(t, buf.String(), `"message":"shown"`)
}

func TestMiddleware_LogsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	base := NewWithWriter(&buf, "debug", "json")

	r := gin.New()
	r.Use(Middleware(base))
	r.GET("/missing", func(c *gin.Context) {
		FromContext(c).Debug().Msg("inside handler")
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var last map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &last))
	assert.Equal(t, "warn", last["level"])
	assert.Equal(t, float64(http.StatusNotFound), last["status"])
	assert.Equal(t, "/missing", last["path"])
}

func TestFromContext_OutsideRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	l := FromContext(c)
	require.NotNil(t, l)
	assert.Equal(t, zerolog.Disabled, l.GetLevel())
	assert.NotPanics(t, func() {
		l.Error().Str("path", "/none").Msg("dropped")
	})
}

func TestFromContext_ReturnsRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/entries", nil)

	Middleware(NewWithWriter(&buf, "debug", "json"))(c)
	buf.Reset()

	FromContext(c).Warn().Msg("from handler")
	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "/entries", line["path"])
	assert.Equal(t, "from handler", line["message"])
}

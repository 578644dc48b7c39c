package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func parseQuery(raw string) Params {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+raw, nil)
	return Parse(c)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Params
	}{
		{"defaults", "", Params{Page: 1, Limit: 20, Offset: 0}},
		{"explicit window", "page=3&limit=10", Params{Page: 3, Limit: 10, Offset: 20}},
		{"limit clamped to max", "limit=5000", Params{Page: 1, Limit: 100, Offset: 0}},
		{"negative values fall back", "page=-1&limit=-5", Params{Page: 1, Limit: 20, Offset: 0}},
		{"garbage falls back", "page=abc&limit=xyz", Params{Page: 1, Limit: 20, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseQuery(tt.query))
		})
	}
}

func TestMeta(t *testing.T) {
	meta := Params{Page: 2, Limit: 50, Offset: 50}.Meta(123)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 50, meta.Limit)
	assert.EqualValues(t, 123, meta.Total)
}

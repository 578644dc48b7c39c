// Package pagination parses the page window for list endpoints. Out-of-range
// values are clamped rather than rejected, so a sloppy client still gets a
// sane first page instead of a 400.
package pagination

import (
	"strconv"

	"userhub/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Params is a validated page window, ready to use as LIMIT/OFFSET.
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Parse reads the page and limit query parameters and clamps them into range.
func Parse(c *gin.Context) Params {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", defaultLimit)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	} else if limit > maxLimit {
		limit = maxLimit
	}

	return Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// Meta pairs the window with the total row count for list envelopes.
func (p Params) Meta(total int64) response.Meta {
	return response.Meta{Page: p.Page, Limit: p.Limit, Total: total}
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw, ok := c.GetQuery(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

package pagination

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-cms/core/internal/pkg/response"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 100
)

// Query holds parsed pagination parameters.
type Query struct {
	Page int
	Size int
}

// FromContext extracts and validates pagination params from the request.
func FromContext(c *gin.Context) Query {
	page := parseIntOr(c.DefaultQuery("page", "1"), DefaultPage)
	size := parseIntOr(c.DefaultQuery("page_size", "10"), DefaultSize)

	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}

	return Query{Page: page, Size: size}
}

// Offset returns the number of records to skip for this page.
func (q Query) Offset() int { return (q.Page - 1) * q.Size }

// Meta computes the pagination metadata for a total count.
// TotalPages is ceil(total/size), or 0 when nothing matched.
func Meta(q Query, total int64) response.Pagination {
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(q.Size) - 1) / int64(q.Size))
	}
	return response.Pagination{
		Page:       q.Page,
		PageSize:   q.Size,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Fetch runs the total-count query and the windowed page query concurrently
// against the same predicate. Both closures must observe the predicate
// identically. A page beyond the last yields an empty item list with the
// correct totals, not an error.
func Fetch[T any](
	ctx context.Context,
	q Query,
	count func(ctx context.Context) (int64, error),
	page func(ctx context.Context, offset, limit int) ([]T, error),
) ([]T, response.Pagination, error) {
	var (
		total int64
		items []T
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := count(gctx)
		if err != nil {
			return fmt.Errorf("count query: %w", err)
		}
		total = t
		return nil
	})
	g.Go(func() error {
		its, err := page(gctx, q.Offset(), q.Size)
		if err != nil {
			return fmt.Errorf("page query: %w", err)
		}
		items = its
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, response.Pagination{}, err
	}

	if items == nil {
		items = []T{}
	}
	return items, Meta(q, total), nil
}

func parseIntOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

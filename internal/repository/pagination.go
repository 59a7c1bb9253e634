package repository

import (
	"context"
	"math"
	"strings"

	"gorm.io/gorm"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// PaginationQuery is bound from the query string of list endpoints.
type PaginationQuery struct {
	Page  int    `form:"page" binding:"omitempty,min=1"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Sort  string `form:"sort"`
	Order string `form:"order" binding:"omitempty,oneof=ASC DESC asc desc"`
}

type PageMeta struct {
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	TotalItems      int64 `json:"totalItems"`
	TotalPages      int   `json:"totalPages"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	HasNextPage     bool  `json:"hasNextPage"`
}

type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

// commonSortColumns maps API sort names onto columns every table has.
var commonSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

func (q PaginationQuery) normalized() PaginationQuery {
	if q.Page < 1 {
		q.Page = defaultPage
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	q.Order = strings.ToUpper(q.Order)
	if q.Order != "ASC" {
		q.Order = "DESC"
	}
	return q
}

// orderClause resolves the sort column against the whitelist so user input never reaches SQL.
func (q PaginationQuery) orderClause(sortColumns map[string]string) string {
	column, ok := sortColumns[q.Sort]
	if !ok {
		column, ok = commonSortColumns[q.Sort]
	}
	if !ok {
		column = "created_at"
	}
	return column + " " + q.Order
}

func newPageMeta(q PaginationQuery, total int64) PageMeta {
	totalPages := int(math.Ceil(float64(total) / float64(q.Limit)))
	return PageMeta{
		Page:            q.Page,
		Limit:           q.Limit,
		TotalItems:      total,
		TotalPages:      totalPages,
		HasPreviousPage: q.Page > 1,
		HasNextPage:     q.Page < totalPages,
	}
}

// paginate counts and fetches one page of T from the scoped query.
// Preloads apply to the page fetch only.
func paginate[T any](ctx context.Context, scoped *gorm.DB, q PaginationQuery, sortColumns map[string]string, preloads ...string) (*Page[T], error) {
	q = q.normalized()
	base := scoped.WithContext(ctx).Model(new(T)).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, translateError(err)
	}

	query := base.Order(q.orderClause(sortColumns)).Offset((q.Page - 1) * q.Limit).Limit(q.Limit)
	for _, p := range preloads {
		query = query.Preload(p)
	}

	items := make([]T, 0, q.Limit)
	if err := query.Find(&items).Error; err != nil {
		return nil, translateError(err)
	}

	return &Page[T]{Data: items, Meta: newPageMeta(q, total)}, nil
}

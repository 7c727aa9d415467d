package ledger

import (
	"math"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Page struct {
	Number int
	Size   int
}

func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	// Offsets stay within int32 for every SQL driver.
	if maxNumber := math.MaxInt32 / p.Size; p.Number > maxNumber {
		p.Number = maxNumber
	}
	return p
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// sortColumns maps API sort keys to item columns.
var sortColumns = map[string]string{
	"name":        "name",
	"category":    "category",
	"quantity":    "quantity",
	"created_at":  "created_at",
	"updated_at":  "updated_at",
	"expiry_date": "expiry_date",
}

type ItemQuery struct {
	Category  models.ItemCategory
	Search    string
	SortBy    string
	SortOrder SortOrder
	Page      Page
}

// SortColumn returns the validated column for q.SortBy.
func (q ItemQuery) SortColumn() string {
	if q.SortBy == "" {
		return "name"
	}
	return sortColumns[q.SortBy]
}

func (q ItemQuery) normalize() (ItemQuery, error) {
	if q.Category != "" && !q.Category.Valid() {
		return q, invalid("category", "unknown category")
	}
	if q.SortBy != "" {
		if _, ok := sortColumns[q.SortBy]; !ok {
			return q, invalid("sortBy", "unsupported sort field")
		}
	}
	switch q.SortOrder {
	case "":
		q.SortOrder = SortAsc
	case SortAsc, SortDesc:
	default:
		return q, invalid("sortOrder", "must be asc or desc")
	}
	q.Page = q.Page.Normalize()
	return q, nil
}

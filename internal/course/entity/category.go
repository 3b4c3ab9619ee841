package entity

import (
	"time"

	"github.com/shandysiswandi/coursebite/internal/pkg/strcase"
)

// RootCategory is the parent key of top-level categories.
const RootCategory int64 = 0

// Category groups courses. Categories nest and keep an order among siblings.
type Category struct {
	ID        int64
	ParentID  *int64
	Title     string
	Slug      string
	Ordinal   int32
	CreatedAt time.Time
}

// ParentKey is the sibling scope of the category.
func (c Category) ParentKey() int64 {
	if c.ParentID == nil {
		return RootCategory
	}
	return *c.ParentID
}

type NewCategory struct {
	ID       int64
	ParentID *int64
	Title    string
	Slug     string
}

func CategorySlug(title string) string {
	return strcase.ToSlug(title)
}

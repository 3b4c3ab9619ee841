package entity

import (
	"time"

	"github.com/shandysiswandi/coursebite/internal/pkg/strcase"
)

type Course struct {
	ID               int64
	Title            string
	Slug             string
	ShortDescription string
	LongDescription  string
	SessionCount     int32
	IsPublished      bool
	CategoryID       *int64
	CreatedBy        int64
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Media []CourseMedia
}

// CourseSlug derives the public slug of a course from its title.
func CourseSlug(title string) string {
	return strcase.ToSlug(title)
}

type CourseListFilter struct {
	CategoryID *int64
	Size       int32
	Offset     int32
}

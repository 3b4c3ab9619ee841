package entity

import "time"

type MediaType string

const (
	MediaCover   MediaType = "cover"
	MediaBanner  MediaType = "banner"
	MediaIcon    MediaType = "icon"
	MediaGallery MediaType = "gallery"
)

func (t MediaType) Valid() bool {
	switch t {
	case MediaCover, MediaBanner, MediaIcon, MediaGallery:
		return true
	}
	return false
}

// CourseMedia is an image shown with a course.
type CourseMedia struct {
	ID        int64
	CourseID  int64
	Type      MediaType
	URL       string
	AltText   string
	CreatedAt time.Time
}

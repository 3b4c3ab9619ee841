package entity

import (
	"sort"
	"time"

	"github.com/shandysiswandi/coursebite/internal/pkg/strcase"
)

type EditionType string

const (
	EditionOnline  EditionType = "online"
	EditionOffline EditionType = "offline"
)

func (t EditionType) Valid() bool {
	return t == EditionOnline || t == EditionOffline
}

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// RuleError is a field-level violation of an edition rule.
type RuleError struct {
	Field string
	Msg   string
}

func (e *RuleError) Error() string {
	return e.Field + ": " + e.Msg
}

var (
	errEditionDates          = &RuleError{Field: "end_date", Msg: "end_date must not be before start_date"}
	errEditionEnrollUntil    = &RuleError{Field: "enroll_open_until", Msg: "enroll_open_until must not be after start_date for online editions"}
	errEditionAccessDuration = &RuleError{Field: "access_duration_days", Msg: "access_duration_days is required for offline editions"}
	errEditionEnrollWindow   = &RuleError{Field: "enroll_open_until", Msg: "enroll_open_until must be after enroll_open_from"}
)

type Edition struct {
	ID                 int64
	CourseID           int64
	CourseTitle        string
	Title              string
	Slug               string
	Type               EditionType
	Level              Level
	StartDate          *time.Time
	EndDate            *time.Time
	Capacity           *int32
	Price              int64
	AllowGroupPurchase bool
	EnrollOpenFrom     *time.Time
	EnrollOpenUntil    *time.Time
	AccessDurationDays *int32
	IsActive           bool
	SeatsTaken         int32
	CreatedAt          time.Time
}

// EditionSlug is "<course-slug>-<edition-title-slug>".
func EditionSlug(courseSlug, title string) string {
	return courseSlug + "-" + strcase.ToSlug(title)
}

// Validate checks the date and type rules of a new edition.
func (e Edition) Validate() error {
	if e.StartDate != nil && e.EndDate != nil && e.EndDate.Before(*e.StartDate) {
		return errEditionDates
	}
	if e.EnrollOpenFrom != nil && e.EnrollOpenUntil != nil && !e.EnrollOpenUntil.After(*e.EnrollOpenFrom) {
		return errEditionEnrollWindow
	}

	switch e.Type {
	case EditionOnline:
		if e.EnrollOpenUntil != nil && e.StartDate != nil && e.EnrollOpenUntil.After(endOfDay(*e.StartDate)) {
			return errEditionEnrollUntil
		}
	case EditionOffline:
		if e.AccessDurationDays == nil {
			return errEditionAccessDuration
		}
	}

	return nil
}

func endOfDay(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 23, 59, 59, 0, d.Location())
}

// AvailableSeats is nil for an unbounded edition.
func (e Edition) AvailableSeats() *int32 {
	if e.Capacity == nil {
		return nil
	}
	left := max(*e.Capacity-e.SeatsTaken, 0)
	return &left
}

// CheckEnrollable reports why a new enrollment cannot be taken at now, or nil.
func (e Edition) CheckEnrollable(now time.Time) error {
	if !e.IsActive {
		return ErrEditionInactive
	}
	if e.EnrollOpenFrom != nil && now.Before(*e.EnrollOpenFrom) {
		return ErrEnrollmentClosed
	}
	if e.Type == EditionOnline && e.EnrollOpenUntil != nil && now.After(*e.EnrollOpenUntil) {
		return ErrEnrollmentClosed
	}
	return nil
}

// AccessExpiresAt is set for offline editions only.
func (e Edition) AccessExpiresAt(now time.Time) *time.Time {
	if e.Type != EditionOffline || e.AccessDurationDays == nil {
		return nil
	}
	exp := now.AddDate(0, 0, int(*e.AccessDurationDays))
	return &exp
}

type GroupPricing struct {
	ID              int64
	EditionID       int64
	MinParticipants int32
	PricePerPerson  int64
}

type Quote struct {
	Participants   int32
	PricePerPerson int64
	Total          int64
	Tier           *GroupPricing
}

// Quote prices n seats. The group tier with the highest MinParticipants not
// above n applies when group purchase is allowed and n > 1.
func (e Edition) Quote(n int32, tiers []GroupPricing) Quote {
	q := Quote{Participants: n, PricePerPerson: e.Price}

	if e.AllowGroupPurchase && n > 1 {
		sorted := append([]GroupPricing(nil), tiers...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinParticipants > sorted[j].MinParticipants })
		for i := range sorted {
			if sorted[i].MinParticipants <= n {
				q.PricePerPerson = sorted[i].PricePerPerson
				q.Tier = &sorted[i]
				break
			}
		}
	}

	q.Total = q.PricePerPerson * int64(n)
	return q
}

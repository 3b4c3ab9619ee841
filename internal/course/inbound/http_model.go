package inbound

import (
	"net/http"
	"time"

	"github.com/shandysiswandi/coursebite/internal/course/entity"
)

type CategoryCreateRequest struct {
	ParentID *int64 `json:"parent_id,string"`
	Title    string `json:"title"`
}

type CategoryResponse struct {
	ID        int64     `json:"id,string"`
	ParentID  *int64    `json:"parent_id,string"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Ordinal   int32     `json:"ordinal"`
	CreatedAt time.Time `json:"created_at"`
}

func toCategoryResponse(c entity.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		ParentID:  c.ParentID,
		Title:     c.Title,
		Slug:      c.Slug,
		Ordinal:   c.Ordinal,
		CreatedAt: c.CreatedAt,
	}
}

type CategoryCreateResponse struct {
	CategoryResponse
}

func (CategoryCreateResponse) StatusCode() int {
	return http.StatusCreated
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

type CourseCreateRequest struct {
	CategoryID       *int64 `json:"category_id,string"`
	Title            string `json:"title"`
	ShortDescription string `json:"short_description"`
	LongDescription  string `json:"long_description"`
	SessionCount     int32  `json:"session_count"`
	IsPublished      bool   `json:"is_published"`
}

type CourseResponse struct {
	ID               int64                 `json:"id,string"`
	CategoryID       *int64                `json:"category_id,string"`
	Title            string                `json:"title"`
	Slug             string                `json:"slug"`
	ShortDescription string                `json:"short_description"`
	LongDescription  string                `json:"long_description"`
	SessionCount     int32                 `json:"session_count"`
	IsPublished      bool                  `json:"is_published"`
	Media            []CourseMediaResponse `json:"media,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
}

func toCourseResponse(c entity.Course) CourseResponse {
	var media []CourseMediaResponse
	for _, m := range c.Media {
		media = append(media, toCourseMediaResponse(m))
	}
	return CourseResponse{
		ID:               c.ID,
		CategoryID:       c.CategoryID,
		Title:            c.Title,
		Slug:             c.Slug,
		ShortDescription: c.ShortDescription,
		LongDescription:  c.LongDescription,
		SessionCount:     c.SessionCount,
		IsPublished:      c.IsPublished,
		Media:            media,
		CreatedAt:        c.CreatedAt,
	}
}

type CourseMediaResponse struct {
	ID      int64  `json:"id,string"`
	Type    string `json:"type"`
	URL     string `json:"url"`
	AltText string `json:"alt_text"`
}

func toCourseMediaResponse(m entity.CourseMedia) CourseMediaResponse {
	return CourseMediaResponse{
		ID:      m.ID,
		Type:    string(m.Type),
		URL:     m.URL,
		AltText: m.AltText,
	}
}

type CourseMediaUploadResponse struct {
	CourseMediaResponse
}

func (CourseMediaUploadResponse) StatusCode() int {
	return http.StatusCreated
}

type CourseCreateResponse struct {
	CourseResponse
}

func (CourseCreateResponse) StatusCode() int {
	return http.StatusCreated
}

func (CourseCreateResponse) Message() string {
	return "Course created"
}

type CoursesResponse struct {
	Courses []CourseResponse `json:"courses"`
	// meta
	total int64
	size  int32
	page  int32
}

func (r CoursesResponse) Meta() map[string]any {
	return map[string]any{
		"total": r.total,
		"size":  r.size,
		"page":  r.page,
	}
}

type EditionCreateRequest struct {
	Title              string     `json:"title"`
	Type               string     `json:"type" example:"online"`
	Level              string     `json:"level" example:"beginner"`
	StartDate          string     `json:"start_date" example:"2026-04-01"`
	EndDate            string     `json:"end_date" example:"2026-06-01"`
	Capacity           *int32     `json:"capacity"`
	Price              int64      `json:"price"`
	AllowGroupPurchase bool       `json:"allow_group_purchase"`
	EnrollOpenFrom     *time.Time `json:"enroll_open_from"`
	EnrollOpenUntil    *time.Time `json:"enroll_open_until"`
	AccessDurationDays *int32     `json:"access_duration_days"`
}

type EditionResponse struct {
	ID                 int64      `json:"id,string"`
	CourseID           int64      `json:"course_id,string"`
	CourseTitle        string     `json:"course_title"`
	Title              string     `json:"title"`
	Slug               string     `json:"slug"`
	Type               string     `json:"type"`
	Level              string     `json:"level"`
	StartDate          *string    `json:"start_date"`
	EndDate            *string    `json:"end_date"`
	Capacity           *int32     `json:"capacity"`
	SeatsTaken         int32      `json:"seats_taken"`
	AvailableSeats     *int32     `json:"available_seats"`
	Price              int64      `json:"price"`
	AllowGroupPurchase bool       `json:"allow_group_purchase"`
	EnrollOpenFrom     *time.Time `json:"enroll_open_from"`
	EnrollOpenUntil    *time.Time `json:"enroll_open_until"`
	AccessDurationDays *int32     `json:"access_duration_days"`
	IsActive           bool       `json:"is_active"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}

func toEditionResponse(e entity.Edition) EditionResponse {
	return EditionResponse{
		ID:                 e.ID,
		CourseID:           e.CourseID,
		CourseTitle:        e.CourseTitle,
		Title:              e.Title,
		Slug:               e.Slug,
		Type:               string(e.Type),
		Level:              string(e.Level),
		StartDate:          formatDate(e.StartDate),
		EndDate:            formatDate(e.EndDate),
		Capacity:           e.Capacity,
		SeatsTaken:         e.SeatsTaken,
		AvailableSeats:     e.AvailableSeats(),
		Price:              e.Price,
		AllowGroupPurchase: e.AllowGroupPurchase,
		EnrollOpenFrom:     e.EnrollOpenFrom,
		EnrollOpenUntil:    e.EnrollOpenUntil,
		AccessDurationDays: e.AccessDurationDays,
		IsActive:           e.IsActive,
	}
}

type EditionCreateResponse struct {
	EditionResponse
}

func (EditionCreateResponse) StatusCode() int {
	return http.StatusCreated
}

func (EditionCreateResponse) Message() string {
	return "Edition created"
}

type PriceResponse struct {
	Participants        int32  `json:"participants"`
	PricePerPerson      int64  `json:"price_per_person"`
	Total               int64  `json:"total"`
	GroupMinParticipant *int32 `json:"group_min_participants"`
}

type GroupPricingCreateRequest struct {
	MinParticipants int32 `json:"min_participants"`
	PricePerPerson  int64 `json:"price_per_person"`
}

type GroupPricingResponse struct {
	ID              int64 `json:"id,string"`
	EditionID       int64 `json:"edition_id,string"`
	MinParticipants int32 `json:"min_participants"`
	PricePerPerson  int64 `json:"price_per_person"`
}

func (GroupPricingResponse) StatusCode() int {
	return http.StatusCreated
}

type ModuleCreateRequest struct {
	Title string `json:"title"`
}

type LessonCreateRequest struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	IsFreePreview bool   `json:"is_free_preview"`
}

type LessonResponse struct {
	ID            int64                `json:"id,string"`
	ModuleID      int64                `json:"module_id,string"`
	Title         string               `json:"title"`
	Content       string               `json:"content,omitempty"`
	VideoURL      string               `json:"video_url,omitempty"`
	IsFreePreview bool                 `json:"is_free_preview"`
	Ordinal       int32                `json:"ordinal"`
	Attachments   []AttachmentResponse `json:"attachments"`
}

func toLessonResponse(l entity.Lesson) LessonResponse {
	attachments := make([]AttachmentResponse, 0, len(l.Attachments))
	for _, a := range l.Attachments {
		attachments = append(attachments, toAttachmentResponse(a))
	}
	return LessonResponse{
		ID:            l.ID,
		ModuleID:      l.ModuleID,
		Title:         l.Title,
		Content:       l.Content,
		VideoURL:      l.VideoURL,
		IsFreePreview: l.IsFreePreview,
		Ordinal:       l.Ordinal,
		Attachments:   attachments,
	}
}

type AttachmentResponse struct {
	ID       int64  `json:"id,string"`
	LessonID int64  `json:"lesson_id,string"`
	Title    string `json:"title"`
	FileURL  string `json:"file_url"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
	Ordinal  int32  `json:"ordinal"`
}

func toAttachmentResponse(a entity.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:       a.ID,
		LessonID: a.LessonID,
		Title:    a.Title,
		FileURL:  a.FileURL,
		FileType: a.FileType,
		FileSize: a.FileSize,
		Ordinal:  a.Ordinal,
	}
}

type AttachmentUploadResponse struct {
	AttachmentResponse
}

func (AttachmentUploadResponse) StatusCode() int {
	return http.StatusCreated
}

type LessonVideoResponse struct {
	VideoURL string `json:"video_url"`
}

type InstructorAssignRequest struct {
	UserID int64 `json:"user_id,string"`
}

type InstructorsResponse struct {
	UserIDs []string `json:"user_ids"`
}

type ModuleResponse struct {
	ID        int64            `json:"id,string"`
	EditionID int64            `json:"edition_id,string"`
	Title     string           `json:"title"`
	Ordinal   int32            `json:"ordinal"`
	Lessons   []LessonResponse `json:"lessons"`
}

func toModuleResponse(m entity.Module) ModuleResponse {
	lessons := make([]LessonResponse, 0, len(m.Lessons))
	for _, l := range m.Lessons {
		lessons = append(lessons, toLessonResponse(l))
	}
	return ModuleResponse{
		ID:        m.ID,
		EditionID: m.EditionID,
		Title:     m.Title,
		Ordinal:   m.Ordinal,
		Lessons:   lessons,
	}
}

type ModuleCreateResponse struct {
	ModuleResponse
}

func (ModuleCreateResponse) StatusCode() int {
	return http.StatusCreated
}

type LessonCreateResponse struct {
	LessonResponse
}

func (LessonCreateResponse) StatusCode() int {
	return http.StatusCreated
}

type ModulesResponse struct {
	Modules []ModuleResponse `json:"modules"`
}

type EnrollmentResponse struct {
	ID              int64      `json:"id,string"`
	EditionID       int64      `json:"edition_id,string"`
	CourseTitle     string     `json:"course_title"`
	EditionTitle    string     `json:"edition_title"`
	IsActive        bool       `json:"is_active"`
	AccessExpiresAt *time.Time `json:"access_expires_at"`
	EnrolledAt      time.Time  `json:"enrolled_at"`
}

func toEnrollmentResponse(en entity.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:              en.ID,
		EditionID:       en.EditionID,
		CourseTitle:     en.CourseTitle,
		EditionTitle:    en.EditionTitle,
		IsActive:        en.IsActive,
		AccessExpiresAt: en.AccessExpiresAt,
		EnrolledAt:      en.EnrolledAt,
	}
}

type EnrollmentCreateResponse struct {
	Enrollment     EnrollmentResponse `json:"enrollment"`
	AvailableSeats *int32             `json:"available_seats"`
}

func (EnrollmentCreateResponse) StatusCode() int {
	return http.StatusCreated
}

func (EnrollmentCreateResponse) Message() string {
	return "Enrolled"
}

type EnrollmentsResponse struct {
	Enrollments []EnrollmentResponse `json:"enrollments"`
}

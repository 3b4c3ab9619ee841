package inbound

import (
	"context"

	"github.com/shandysiswandi/coursebite/internal/course/entity"
	"github.com/shandysiswandi/coursebite/internal/course/usecase"
	"github.com/shandysiswandi/coursebite/internal/pkg/router"
)

type uc interface {
	CategoryCreate(ctx context.Context, in usecase.CategoryCreateInput) (*entity.Category, error)
	CategoryList(ctx context.Context) ([]entity.Category, error)

	CourseCreate(ctx context.Context, in usecase.CourseCreateInput) (*entity.Course, error)
	CourseList(ctx context.Context, in usecase.CourseListInput) (*usecase.CourseListOutput, error)
	CourseDetail(ctx context.Context, in usecase.CourseDetailInput) (*entity.Course, error)
	CourseMediaUpload(ctx context.Context, in usecase.CourseMediaUploadInput) (*entity.CourseMedia, error)

	EditionCreate(ctx context.Context, in usecase.EditionCreateInput) (*entity.Edition, error)
	EditionDetail(ctx context.Context, in usecase.EditionDetailInput) (*entity.Edition, error)
	EditionPrice(ctx context.Context, in usecase.EditionPriceInput) (*entity.Quote, error)
	GroupPricingCreate(ctx context.Context, in usecase.GroupPricingCreateInput) (*entity.GroupPricing, error)
	EditionInstructorAssign(ctx context.Context, in usecase.EditionInstructorInput) error
	EditionInstructorRemove(ctx context.Context, in usecase.EditionInstructorInput) error
	EditionInstructorList(ctx context.Context, in usecase.EditionInstructorListInput) ([]int64, error)

	ModuleCreate(ctx context.Context, in usecase.ModuleCreateInput) (*entity.Module, error)
	ModuleList(ctx context.Context, in usecase.ModuleListInput) ([]entity.Module, error)
	Syllabus(ctx context.Context, in usecase.SyllabusInput) ([]entity.Module, error)
	LessonCreate(ctx context.Context, in usecase.LessonCreateInput) (*entity.Lesson, error)
	LessonVideoUpload(ctx context.Context, in usecase.LessonVideoUploadInput) (*usecase.LessonVideoUploadOutput, error)
	AttachmentUpload(ctx context.Context, in usecase.AttachmentUploadInput) (*entity.Attachment, error)

	EnrollmentCreate(ctx context.Context, in usecase.EnrollmentCreateInput) (*usecase.EnrollmentCreateOutput, error)
	EnrollmentCancel(ctx context.Context, in usecase.EnrollmentCancelInput) error
	EnrollmentList(ctx context.Context) ([]entity.Enrollment, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Catalog (public reads)
	r.GET("/categories", end.CategoryList)
	r.GET("/courses", end.CourseList)
	r.GET("/courses/:id", end.CourseDetail)
	r.GET("/editions/:id", end.EditionDetail)
	r.GET("/editions/:id/price", end.EditionPrice)
	r.GET("/editions/:id/modules", end.ModuleList)

	// Catalog management (need authenticated & authorization)
	r.POST("/categories", end.CategoryCreate)
	r.POST("/courses", end.CourseCreate)
	r.POST("/courses/:id/media", end.CourseMediaUpload)
	r.POST("/courses/:id/editions", end.EditionCreate)
	r.POST("/editions/:id/group-pricings", end.GroupPricingCreate)
	r.GET("/editions/:id/instructors", end.EditionInstructorList)
	r.POST("/editions/:id/instructors", end.EditionInstructorAssign)
	r.DELETE("/editions/:id/instructors/:user_id", end.EditionInstructorRemove)

	// Content (manager or assigned instructor)
	r.POST("/editions/:id/modules", end.ModuleCreate)
	r.POST("/modules/:id/lessons", end.LessonCreate)
	r.PUT("/lessons/:id/video", end.LessonVideoUpload)
	r.POST("/lessons/:id/attachments", end.AttachmentUpload)

	// Learning (need authenticated & active enrollment)
	r.GET("/editions/:id/syllabus", end.Syllabus)

	// Enrollment (need authenticated)
	r.POST("/editions/:id/enrollments", end.EnrollmentCreate)
	r.GET("/enrollments", end.EnrollmentList)
	r.DELETE("/enrollments/:id", end.EnrollmentCancel)
}

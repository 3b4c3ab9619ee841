package inbound

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shandysiswandi/coursebite/internal/course/usecase"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the course catalog and enrollments.
type HTTPEndpoint struct {
	uc uc
}

// CourseCreate creates a course.
// @Summary Create course
// @Tags Course
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CourseCreateRequest true "Course payload"
// @Success 201 {object} router.successResponse{data=CourseCreateResponse} "Course created"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 409 {object} router.errorResponse "Course slug already used"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /courses [post]
func (h *HTTPEndpoint) CourseCreate(r *router.Request) (any, error) {
	var req CourseCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.CourseCreate(r.Context(), usecase.CourseCreateInput{
		CategoryID:       req.CategoryID,
		Title:            req.Title,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		SessionCount:     req.SessionCount,
		IsPublished:      req.IsPublished,
	})
	if err != nil {
		return nil, err
	}

	return CourseCreateResponse{CourseResponse: toCourseResponse(*resp)}, nil
}

// CourseList lists published courses.
// @Summary List courses
// @Tags Course
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param category_id query int false "Category ID"
// @Success 200 {object} router.successResponse{data=CoursesResponse} "Courses"
// @Router /courses [get]
func (h *HTTPEndpoint) CourseList(r *router.Request) (any, error) {
	size, err := r.GetQueryInt32("size")
	if err != nil {
		return nil, err
	}

	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}

	categoryID, err := r.GetQueryInt64("category_id")
	if err != nil {
		return nil, err
	}

	in := usecase.CourseListInput{Page: page, Size: size}
	if categoryID > 0 {
		in.CategoryID = &categoryID
	}

	resp, err := h.uc.CourseList(r.Context(), in)
	if err != nil {
		return nil, err
	}

	courses := make([]CourseResponse, 0, len(resp.Courses))
	for _, c := range resp.Courses {
		courses = append(courses, toCourseResponse(c))
	}

	return CoursesResponse{
		Courses: courses,
		total:   resp.Total,
		size:    resp.Size,
		page:    resp.Page,
	}, nil
}

// CourseDetail returns one published course.
// @Summary Get course
// @Tags Course
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} router.successResponse{data=CourseResponse} "Course"
// @Failure 404 {object} router.errorResponse "Course not found"
// @Router /courses/{id} [get]
func (h *HTTPEndpoint) CourseDetail(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.CourseDetail(r.Context(), usecase.CourseDetailInput{CourseID: id})
	if err != nil {
		return nil, err
	}

	return toCourseResponse(*resp), nil
}

// EditionCreate adds an edition to a course.
// @Summary Create edition
// @Tags Course
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param request body EditionCreateRequest true "Edition payload"
// @Success 201 {object} router.successResponse{data=EditionCreateResponse} "Edition created"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Course not found"
// @Failure 409 {object} router.errorResponse "Edition title already used"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /courses/{id}/editions [post]
func (h *HTTPEndpoint) EditionCreate(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req EditionCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.EditionCreate(r.Context(), usecase.EditionCreateInput{
		CourseID:           id,
		Title:              req.Title,
		Type:               req.Type,
		Level:              req.Level,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		Capacity:           req.Capacity,
		Price:              req.Price,
		AllowGroupPurchase: req.AllowGroupPurchase,
		EnrollOpenFrom:     req.EnrollOpenFrom,
		EnrollOpenUntil:    req.EnrollOpenUntil,
		AccessDurationDays: req.AccessDurationDays,
	})
	if err != nil {
		return nil, err
	}

	return EditionCreateResponse{EditionResponse: toEditionResponse(*resp)}, nil
}

// EditionDetail returns an edition with its seat usage.
// @Summary Get edition
// @Tags Course
// @Produce json
// @Param id path int true "Edition ID"
// @Success 200 {object} router.successResponse{data=EditionResponse} "Edition"
// @Failure 404 {object} router.errorResponse "Edition not found"
// @Router /editions/{id} [get]
func (h *HTTPEndpoint) EditionDetail(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.EditionDetail(r.Context(), usecase.EditionDetailInput{EditionID: id})
	if err != nil {
		return nil, err
	}

	return toEditionResponse(*resp), nil
}

// EditionPrice quotes the price for a number of participants.
// @Summary Quote edition price
// @Tags Course
// @Produce json
// @Param id path int true "Edition ID"
// @Param participants query int false "Participants" default(1)
// @Success 200 {object} router.successResponse{data=PriceResponse} "Quote"
// @Failure 404 {object} router.errorResponse "Edition not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /editions/{id}/price [get]
func (h *HTTPEndpoint) EditionPrice(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	participants, err := r.GetQueryInt32("participants")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.EditionPrice(r.Context(), usecase.EditionPriceInput{EditionID: id, Participants: participants})
	if err != nil {
		return nil, err
	}

	out := PriceResponse{
		Participants:   resp.Participants,
		PricePerPerson: resp.PricePerPerson,
		Total:          resp.Total,
	}
	if resp.Tier != nil {
		out.GroupMinParticipant = &resp.Tier.MinParticipants
	}

	return out, nil
}

// GroupPricingCreate adds a group price tier to an edition.
// @Summary Create group pricing
// @Tags Course
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Edition ID"
// @Param request body GroupPricingCreateRequest true "Tier payload"
// @Success 201 {object} router.successResponse{data=GroupPricingResponse} "Tier created"
// @Failure 409 {object} router.errorResponse "Tier already exists"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /editions/{id}/group-pricings [post]
func (h *HTTPEndpoint) GroupPricingCreate(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req GroupPricingCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.GroupPricingCreate(r.Context(), usecase.GroupPricingCreateInput{
		EditionID:       id,
		MinParticipants: req.MinParticipants,
		PricePerPerson:  req.PricePerPerson,
	})
	if err != nil {
		return nil, err
	}

	return GroupPricingResponse{
		ID:              resp.ID,
		EditionID:       resp.EditionID,
		MinParticipants: resp.MinParticipants,
		PricePerPerson:  resp.PricePerPerson,
	}, nil
}

// ModuleCreate appends a module to an edition.
// @Summary Create module
// @Tags Course, Content
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Edition ID"
// @Param request body ModuleCreateRequest true "Module payload"
// @Success 201 {object} router.successResponse{data=ModuleCreateResponse} "Module created"
// @Failure 404 {object} router.errorResponse "Edition not found"
// @Router /editions/{id}/modules [post]
func (h *HTTPEndpoint) ModuleCreate(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req ModuleCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.ModuleCreate(r.Context(), usecase.ModuleCreateInput{EditionID: id, Title: req.Title})
	if err != nil {
		return nil, err
	}

	return ModuleCreateResponse{ModuleResponse: toModuleResponse(*resp)}, nil
}

// ModuleList returns the syllabus of an edition.
// @Summary List modules
// @Tags Course, Content
// @Produce json
// @Param id path int true "Edition ID"
// @Success 200 {object} router.successResponse{data=ModulesResponse} "Modules"
// @Failure 404 {object} router.errorResponse "Edition not found"
// @Router /editions/{id}/modules [get]
func (h *HTTPEndpoint) ModuleList(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.ModuleList(r.Context(), usecase.ModuleListInput{EditionID: id})
	if err != nil {
		return nil, err
	}

	modules := make([]ModuleResponse, 0, len(resp))
	for _, m := range resp {
		modules = append(modules, toModuleResponse(m))
	}

	return ModulesResponse{Modules: modules}, nil
}

// LessonCreate appends a lesson to a module.
// @Summary Create lesson
// @Tags Course, Content
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Module ID"
// @Param request body LessonCreateRequest true "Lesson payload"
// @Success 201 {object} router.successResponse{data=LessonCreateResponse} "Lesson created"
// @Failure 404 {object} router.errorResponse "Module not found"
// @Router /modules/{id}/lessons [post]
func (h *HTTPEndpoint) LessonCreate(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req LessonCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.LessonCreate(r.Context(), usecase.LessonCreateInput{
		ModuleID:      id,
		Title:         req.Title,
		Content:       req.Content,
		IsFreePreview: req.IsFreePreview,
	})
	if err != nil {
		return nil, err
	}

	return LessonCreateResponse{LessonResponse: toLessonResponse(*resp)}, nil
}

// EnrollmentCreate enrolls the caller into an edition.
// @Summary Enroll
// @Tags Course, Enrollment
// @Security BearerAuth
// @Produce json
// @Param id path int true "Edition ID"
// @Success 201 {object} router.successResponse{data=EnrollmentCreateResponse} "Enrolled"
// @Failure 404 {object} router.errorResponse "Edition not found"
// @Failure 409 {object} router.errorResponse "Already enrolled or no seats available"
// @Failure 422 {object} router.errorResponse "Edition inactive or enrollment closed"
// @Router /editions/{id}/enrollments [post]
func (h *HTTPEndpoint) EnrollmentCreate(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.EnrollmentCreate(r.Context(), usecase.EnrollmentCreateInput{EditionID: id})
	if err != nil {
		return nil, err
	}

	return EnrollmentCreateResponse{
		Enrollment:     toEnrollmentResponse(resp.Enrollment),
		AvailableSeats: resp.AvailableSeats,
	}, nil
}

// EnrollmentList lists the caller's active enrollments.
// @Summary My enrollments
// @Tags Course, Enrollment
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=EnrollmentsResponse} "Enrollments"
// @Router /enrollments [get]
func (h *HTTPEndpoint) EnrollmentList(r *router.Request) (any, error) {
	resp, err := h.uc.EnrollmentList(r.Context())
	if err != nil {
		return nil, err
	}

	enrollments := make([]EnrollmentResponse, 0, len(resp))
	for _, en := range resp {
		enrollments = append(enrollments, toEnrollmentResponse(en))
	}

	return EnrollmentsResponse{Enrollments: enrollments}, nil
}

// EnrollmentCancel deactivates an enrollment.
// @Summary Cancel enrollment
// @Tags Course, Enrollment
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 204 "No content"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Enrollment not found"
// @Router /enrollments/{id} [delete]
func (h *HTTPEndpoint) EnrollmentCancel(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.EnrollmentCancel(r.Context(), usecase.EnrollmentCancelInput{EnrollmentID: id})
}

// CategoryCreate adds a category, optionally under a parent.
// @Summary Create category
// @Tags Course
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CategoryCreateRequest true "Category payload"
// @Success 201 {object} router.successResponse{data=CategoryCreateResponse} "Category created"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Parent category not found"
// @Failure 409 {object} router.errorResponse "Category already exists"
// @Router /categories [post]
func (h *HTTPEndpoint) CategoryCreate(r *router.Request) (any, error) {
	var req CategoryCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.CategoryCreate(r.Context(), usecase.CategoryCreateInput{ParentID: req.ParentID, Title: req.Title})
	if err != nil {
		return nil, err
	}

	return CategoryCreateResponse{CategoryResponse: toCategoryResponse(*resp)}, nil
}

// CategoryList lists all categories ordered by parent and position.
// @Summary List categories
// @Tags Course
// @Produce json
// @Success 200 {object} router.successResponse{data=CategoriesResponse} "Categories"
// @Router /categories [get]
func (h *HTTPEndpoint) CategoryList(r *router.Request) (any, error) {
	resp, err := h.uc.CategoryList(r.Context())
	if err != nil {
		return nil, err
	}

	categories := make([]CategoryResponse, 0, len(resp))
	for _, c := range resp {
		categories = append(categories, toCategoryResponse(c))
	}

	return CategoriesResponse{Categories: categories}, nil
}

// CourseMediaUpload attaches an image to a course.
// @Summary Upload course media
// @Tags Course
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Course ID"
// @Param type query string true "Media type" Enums(cover, banner, icon, gallery)
// @Param alt_text query string false "Alternative text"
// @Param media formData file true "Image (jpeg, png or webp)"
// @Success 201 {object} router.successResponse{data=CourseMediaUploadResponse} "Media uploaded"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Course not found"
// @Failure 422 {object} router.errorResponse "Invalid file"
// @Router /courses/{id}/media [post]
func (h *HTTPEndpoint) CourseMediaUpload(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	ctx := r.Context()
	file, err := r.StreamSingleFile("media")
	if err != nil {
		return nil, err
	}
	defer closeFile(ctx, file)

	body, contentType, err := sniff(file)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.CourseMediaUpload(ctx, usecase.CourseMediaUploadInput{
		CourseID:    id,
		Type:        r.GetQuery("type"),
		AltText:     r.GetQuery("alt_text"),
		File:        body,
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}

	return CourseMediaUploadResponse{CourseMediaResponse: toCourseMediaResponse(*resp)}, nil
}

// EditionInstructorList lists the users assigned to teach an edition.
// @Summary List instructors
// @Tags Course
// @Security BearerAuth
// @Produce json
// @Param id path int true "Edition ID"
// @Success 200 {object} router.successResponse{data=InstructorsResponse} "Instructors"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Edition not found"
// @Router /editions/{id}/instructors [get]
func (h *HTTPEndpoint) EditionInstructorList(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.EditionInstructorList(r.Context(), usecase.EditionInstructorListInput{EditionID: id})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp))
	for _, userID := range resp {
		ids = append(ids, strconv.FormatInt(userID, 10))
	}

	return InstructorsResponse{UserIDs: ids}, nil
}

// EditionInstructorAssign lets a user write the content of an edition.
// @Summary Assign instructor
// @Tags Course
// @Security BearerAuth
// @Accept json
// @Param id path int true "Edition ID"
// @Param request body InstructorAssignRequest true "Instructor payload"
// @Success 204 "No content"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Edition not found"
// @Failure 409 {object} router.errorResponse "Instructor already assigned"
// @Router /editions/{id}/instructors [post]
func (h *HTTPEndpoint) EditionInstructorAssign(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req InstructorAssignRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.EditionInstructorAssign(r.Context(), usecase.EditionInstructorInput{EditionID: id, UserID: req.UserID})
}

// EditionInstructorRemove revokes an instructor assignment.
// @Summary Remove instructor
// @Tags Course
// @Security BearerAuth
// @Param id path int true "Edition ID"
// @Param user_id path int true "User ID"
// @Success 204 "No content"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Instructor not assigned"
// @Router /editions/{id}/instructors/{user_id} [delete]
func (h *HTTPEndpoint) EditionInstructorRemove(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	userID, err := r.GetParamInt64("user_id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.EditionInstructorRemove(r.Context(), usecase.EditionInstructorInput{EditionID: id, UserID: userID})
}

// Syllabus returns the full content of an edition to its learners and staff.
// @Summary Read syllabus
// @Tags Course, Content
// @Security BearerAuth
// @Produce json
// @Param id path int true "Edition ID"
// @Success 200 {object} router.successResponse{data=ModulesResponse} "Modules"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Enrollment required or access ended"
// @Failure 404 {object} router.errorResponse "Edition not found"
// @Router /editions/{id}/syllabus [get]
func (h *HTTPEndpoint) Syllabus(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.Syllabus(r.Context(), usecase.SyllabusInput{EditionID: id})
	if err != nil {
		return nil, err
	}

	modules := make([]ModuleResponse, 0, len(resp))
	for _, m := range resp {
		modules = append(modules, toModuleResponse(m))
	}

	return ModulesResponse{Modules: modules}, nil
}

// LessonVideoUpload replaces the video of a lesson.
// @Summary Upload lesson video
// @Tags Course, Content
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Lesson ID"
// @Param video formData file true "Video (mp4 or webm)"
// @Success 200 {object} router.successResponse{data=LessonVideoResponse} "Video uploaded"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Lesson not found"
// @Failure 422 {object} router.errorResponse "Invalid file"
// @Router /lessons/{id}/video [put]
func (h *HTTPEndpoint) LessonVideoUpload(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	ctx := r.Context()
	file, err := r.StreamSingleFile("video")
	if err != nil {
		return nil, err
	}
	defer closeFile(ctx, file)

	body, contentType, err := sniff(file)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.LessonVideoUpload(ctx, usecase.LessonVideoUploadInput{
		LessonID:    id,
		File:        body,
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}

	return LessonVideoResponse{VideoURL: resp.VideoURL}, nil
}

// AttachmentUpload adds a downloadable file to a lesson.
// @Summary Upload lesson attachment
// @Tags Course, Content
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Lesson ID"
// @Param title query string false "Title, defaults to the file name"
// @Param file formData file true "Any file"
// @Success 201 {object} router.successResponse{data=AttachmentUploadResponse} "Attachment uploaded"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Lesson not found"
// @Failure 422 {object} router.errorResponse "Invalid file"
// @Router /lessons/{id}/attachments [post]
func (h *HTTPEndpoint) AttachmentUpload(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	ctx := r.Context()
	file, err := r.StreamSingleFile("file")
	if err != nil {
		return nil, err
	}
	defer closeFile(ctx, file)

	var fileName string
	if named, ok := file.(interface{ FileName() string }); ok {
		fileName = named.FileName()
	}

	body, contentType, err := sniff(file)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.AttachmentUpload(ctx, usecase.AttachmentUploadInput{
		LessonID:    id,
		Title:       r.GetQuery("title"),
		FileName:    fileName,
		File:        body,
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}

	return AttachmentUploadResponse{AttachmentResponse: toAttachmentResponse(*resp)}, nil
}

// sniff reads the first bytes of file to detect its content type and returns
// a reader that still yields the whole file.
func sniff(file io.Reader) (io.Reader, string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, "", goerror.NewInvalidFormat()
	}

	return io.MultiReader(bytes.NewReader(head[:n]), file), http.DetectContentType(head[:n]), nil
}

func closeFile(ctx context.Context, file io.Closer) {
	if err := file.Close(); err != nil {
		slog.ErrorContext(ctx, "failed to close file", "error", err)
	}
}

package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/shandysiswandi/coursebite/internal/course/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/clock"
	"github.com/shandysiswandi/coursebite/internal/pkg/config"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/pkg/goroutine"
	"github.com/shandysiswandi/coursebite/internal/pkg/instrument"
	"github.com/shandysiswandi/coursebite/internal/pkg/jwt"
	"github.com/shandysiswandi/coursebite/internal/pkg/storage"
	"github.com/shandysiswandi/coursebite/internal/pkg/uid"
	"github.com/shandysiswandi/coursebite/internal/pkg/validator"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
	"go.opentelemetry.io/otel/trace"
)

type EnrollmentCreatedEvent struct {
	EnrollmentID int64
	EditionID    int64
	UserID       int64
	PhoneNumber  string
	CourseTitle  string
	EditionTitle string
}

type repoMessaging interface {
	PublishEnrollmentCreated(ctx context.Context, msg EnrollmentCreatedEvent) error
}

type repoDB interface {
	CreateCategory(ctx context.Context, in entity.NewCategory) (*entity.Category, error)
	ListCategories(ctx context.Context) ([]entity.Category, error)

	CreateCourse(ctx context.Context, c entity.Course) error
	GetCourse(ctx context.Context, id int64) (*entity.Course, error)
	ListPublishedCourses(ctx context.Context, filter entity.CourseListFilter) ([]entity.Course, int64, error)
	CreateCourseMedia(ctx context.Context, m entity.CourseMedia) error
	ListCourseMedia(ctx context.Context, courseID int64) ([]entity.CourseMedia, error)

	CreateEdition(ctx context.Context, e entity.Edition) error
	GetEdition(ctx context.Context, id int64) (*entity.Edition, error)
	ListGroupPricings(ctx context.Context, editionID int64) ([]entity.GroupPricing, error)
	CreateGroupPricing(ctx context.Context, gp entity.GroupPricing) error

	AssignInstructor(ctx context.Context, editionID, userID int64, now time.Time) error
	RemoveInstructor(ctx context.Context, editionID, userID int64) error
	ListInstructors(ctx context.Context, editionID int64) ([]int64, error)
	IsInstructor(ctx context.Context, editionID, userID int64) (bool, error)

	CreateModule(ctx context.Context, in entity.NewModule) (*entity.Module, error)
	CreateLesson(ctx context.Context, in entity.NewLesson) (*entity.Lesson, error)
	CreateAttachment(ctx context.Context, in entity.NewAttachment) (*entity.Attachment, error)
	SetLessonVideo(ctx context.Context, lessonID int64, videoURL string) error
	ModuleEditionID(ctx context.Context, moduleID int64) (int64, error)
	LessonEditionID(ctx context.Context, lessonID int64) (int64, error)
	ListModules(ctx context.Context, editionID int64) ([]entity.Module, error)

	Enroll(ctx context.Context, in entity.NewEnrollment) (*entity.Enrollment, *entity.Edition, error)
	GetEnrollment(ctx context.Context, id int64) (*entity.Enrollment, error)
	GetUserEnrollment(ctx context.Context, editionID, userID int64) (*entity.Enrollment, error)
	DeactivateEnrollment(ctx context.Context, id int64, now time.Time) error
	ListUserEnrollments(ctx context.Context, userID int64) ([]entity.Enrollment, error)
}

type objectStorage interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, opts storage.PutOptions) (storage.ObjectInfo, error)
	DeleteObject(ctx context.Context, bucket, key string) error
}

type authorizer interface {
	Allowed(roles []authz.Role, c authz.Capability) (bool, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	storage       objectStorage
	cfg           config.Config
	validator     validator.Validator
	uid           uid.NumberID
	uuid          uid.StringID
	clock         clock.Clocker
	authz         authorizer
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Storage       objectStorage
	Config        config.Config
	Validator     validator.Validator
	UID           uid.NumberID
	UUID          uid.StringID
	Clock         clock.Clocker
	Authorizer    authorizer
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		storage:       dep.Storage,
		cfg:           dep.Config,
		validator:     dep.Validator,
		uid:           dep.UID,
		uuid:          dep.UUID,
		clock:         dep.Clock,
		authz:         dep.Authorizer,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("course.usecase").Start(ctx, name)
}

func (s *Usecase) authenticated(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}
	return clm, nil
}

func (s *Usecase) allowed(ctx context.Context, clm *jwt.Claims, c authz.Capability) (bool, error) {
	ok, err := s.authz.Allowed(authz.ParseRoles(clm.Roles), c)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "user_id", clm.UserID, "error", err)
		return false, goerror.NewServer(err)
	}
	return ok, nil
}

func (s *Usecase) authenticatedAndAuthorized(ctx context.Context, c authz.Capability) (*jwt.Claims, error) {
	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	ok, err := s.allowed(ctx, clm, c)
	if err != nil {
		return nil, err
	}
	if !ok {
		slog.WarnContext(ctx, "account not allowed", "user_id", clm.UserID, "capability", c.String())
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	return clm, nil
}

func pagination(page, size int32) (int32, int32, int32) {
	if size <= 0 || size > 100 {
		size = 10
	}
	if page <= 0 {
		page = 1
	}
	return page, size, (page - 1) * size
}

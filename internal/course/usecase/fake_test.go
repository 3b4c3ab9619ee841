package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/coursebite/internal/course/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/config"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/pkg/goroutine"
	"github.com/shandysiswandi/coursebite/internal/pkg/instrument"
	"github.com/shandysiswandi/coursebite/internal/pkg/jwt"
	"github.com/shandysiswandi/coursebite/internal/pkg/storage"
	"github.com/shandysiswandi/coursebite/internal/pkg/validator"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type seqID struct {
	mu sync.Mutex
	n  int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n
}

type seqToken struct {
	mu sync.Mutex
	n  int
}

func (s *seqToken) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("obj-%d", s.n)
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeStorage) PutObject(_ context.Context, bucket, key string, r io.Reader, opts storage.PutOptions) (storage.ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+key] = data
	f.types[bucket+"/"+key] = opts.ContentType
	return storage.ObjectInfo{Bucket: bucket, Key: key, Size: int64(len(data)), ContentType: opts.ContentType}, nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, bucket+"/"+key)
	return nil
}

type fakeMessaging struct {
	mu     sync.Mutex
	events []EnrollmentCreatedEvent
}

func (m *fakeMessaging) PublishEnrollmentCreated(_ context.Context, msg EnrollmentCreatedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, msg)
	return nil
}

// fakeRepo keeps course state in memory with the same outcomes as the Postgres repository.
type fakeRepo struct {
	mu          sync.Mutex
	categories  []entity.Category
	courses     map[int64]*entity.Course
	media       []entity.CourseMedia
	editions    map[int64]*entity.Edition
	tiers       []entity.GroupPricing
	instructors map[int64][]int64
	modules     []*entity.Module
	lessons     []*entity.Lesson
	attachments []entity.Attachment
	enrollments []*entity.Enrollment

	attachmentErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		courses:     map[int64]*entity.Course{},
		editions:    map[int64]*entity.Edition{},
		instructors: map[int64][]int64{},
	}
}

func (r *fakeRepo) CreateCategory(_ context.Context, in entity.NewCategory) (*entity.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := entity.Category{ID: in.ID, ParentID: in.ParentID, Title: in.Title, Slug: in.Slug}
	found := in.ParentID == nil
	var ordinal int32
	for _, existing := range r.categories {
		if existing.Slug == in.Slug {
			return nil, goerror.ErrConflict
		}
		if in.ParentID != nil && existing.ID == *in.ParentID {
			found = true
		}
		if existing.ParentKey() == c.ParentKey() {
			ordinal = max(ordinal, existing.Ordinal)
		}
	}
	if !found {
		return nil, goerror.ErrNotFound
	}
	c.Ordinal = ordinal + 1
	r.categories = append(r.categories, c)
	return &c, nil
}

func (r *fakeRepo) ListCategories(context.Context) ([]entity.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]entity.Category{}, r.categories...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].ParentKey() != out[j].ParentKey() {
			return out[i].ParentKey() < out[j].ParentKey()
		}
		return out[i].Ordinal < out[j].Ordinal
	})
	return out, nil
}

func (r *fakeRepo) CreateCourse(_ context.Context, c entity.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.CategoryID != nil {
		found := false
		for _, cat := range r.categories {
			found = found || cat.ID == *c.CategoryID
		}
		if !found {
			return goerror.ErrNotFound
		}
	}
	for _, existing := range r.courses {
		if existing.Slug == c.Slug {
			return goerror.ErrConflict
		}
	}
	r.courses[c.ID] = &c
	return nil
}

func (r *fakeRepo) GetCourse(_ context.Context, id int64) (*entity.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeRepo) ListPublishedCourses(_ context.Context, filter entity.CourseListFilter) ([]entity.Course, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]entity.Course, 0)
	for _, c := range r.courses {
		if !c.IsPublished {
			continue
		}
		if filter.CategoryID != nil && (c.CategoryID == nil || *c.CategoryID != *filter.CategoryID) {
			continue
		}
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	start := min(int(filter.Offset), len(all))
	end := min(start+int(filter.Size), len(all))
	return all[start:end], int64(len(all)), nil
}

func (r *fakeRepo) CreateCourseMedia(_ context.Context, m entity.CourseMedia) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[m.CourseID]; !ok {
		return goerror.ErrNotFound
	}
	r.media = append(r.media, m)
	return nil
}

func (r *fakeRepo) ListCourseMedia(_ context.Context, courseID int64) ([]entity.CourseMedia, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.CourseMedia{}
	for _, m := range r.media {
		if m.CourseID == courseID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeRepo) seatsTaken(editionID int64) int32 {
	var n int32
	for _, en := range r.enrollments {
		if en.EditionID == editionID && en.IsActive {
			n++
		}
	}
	return n
}

func (r *fakeRepo) CreateEdition(_ context.Context, e entity.Edition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.editions {
		if existing.Slug == e.Slug || (existing.CourseID == e.CourseID && existing.Title == e.Title) {
			return goerror.ErrConflict
		}
	}
	r.editions[e.ID] = &e
	return nil
}

func (r *fakeRepo) GetEdition(_ context.Context, id int64) (*entity.Edition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.editions[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *e
	cp.SeatsTaken = r.seatsTaken(id)
	return &cp, nil
}

func (r *fakeRepo) ListGroupPricings(_ context.Context, editionID int64) ([]entity.GroupPricing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.GroupPricing{}
	for _, gp := range r.tiers {
		if gp.EditionID == editionID {
			out = append(out, gp)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateGroupPricing(_ context.Context, gp entity.GroupPricing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tiers {
		if existing.EditionID == gp.EditionID && existing.MinParticipants == gp.MinParticipants {
			return goerror.ErrConflict
		}
	}
	r.tiers = append(r.tiers, gp)
	return nil
}

func (r *fakeRepo) AssignInstructor(_ context.Context, editionID, userID int64, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.editions[editionID]; !ok {
		return goerror.ErrNotFound
	}
	for _, id := range r.instructors[editionID] {
		if id == userID {
			return goerror.ErrConflict
		}
	}
	r.instructors[editionID] = append(r.instructors[editionID], userID)
	return nil
}

func (r *fakeRepo) RemoveInstructor(_ context.Context, editionID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.instructors[editionID]
	for i, id := range ids {
		if id == userID {
			r.instructors[editionID] = append(ids[:i:i], ids[i+1:]...)
			return nil
		}
	}
	return goerror.ErrNotFound
}

func (r *fakeRepo) ListInstructors(_ context.Context, editionID int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64{}, r.instructors[editionID]...), nil
}

func (r *fakeRepo) IsInstructor(_ context.Context, editionID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.instructors[editionID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) ModuleEditionID(_ context.Context, moduleID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.modules {
		if m.ID == moduleID {
			return m.EditionID, nil
		}
	}
	return 0, goerror.ErrNotFound
}

func (r *fakeRepo) LessonEditionID(_ context.Context, lessonID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lessons {
		if l.ID != lessonID {
			continue
		}
		for _, m := range r.modules {
			if m.ID == l.ModuleID {
				return m.EditionID, nil
			}
		}
	}
	return 0, goerror.ErrNotFound
}

func (r *fakeRepo) SetLessonVideo(_ context.Context, lessonID int64, videoURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lessons {
		if l.ID == lessonID {
			l.VideoURL = videoURL
			return nil
		}
	}
	return goerror.ErrNotFound
}

func (r *fakeRepo) CreateAttachment(_ context.Context, in entity.NewAttachment) (*entity.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attachmentErr != nil {
		return nil, r.attachmentErr
	}
	var ordinal int32
	for _, a := range r.attachments {
		if a.LessonID == in.LessonID {
			ordinal = max(ordinal, a.Ordinal)
		}
	}
	a := entity.Attachment{
		ID: in.ID, LessonID: in.LessonID, Title: in.Title, FileURL: in.FileURL,
		FileType: in.FileType, FileSize: in.FileSize, Ordinal: ordinal + 1,
	}
	r.attachments = append(r.attachments, a)
	return &a, nil
}

func (r *fakeRepo) CreateModule(_ context.Context, in entity.NewModule) (*entity.Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.editions[in.EditionID]; !ok {
		return nil, goerror.ErrNotFound
	}
	var ordinal int32
	for _, m := range r.modules {
		if m.EditionID == in.EditionID {
			ordinal = max(ordinal, m.Ordinal)
		}
	}
	m := &entity.Module{ID: in.ID, EditionID: in.EditionID, Title: in.Title, Ordinal: ordinal + 1}
	r.modules = append(r.modules, m)
	cp := *m
	return &cp, nil
}

func (r *fakeRepo) CreateLesson(_ context.Context, in entity.NewLesson) (*entity.Lesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := false
	for _, m := range r.modules {
		found = found || m.ID == in.ModuleID
	}
	if !found {
		return nil, goerror.ErrNotFound
	}
	var ordinal int32
	for _, l := range r.lessons {
		if l.ModuleID == in.ModuleID {
			ordinal = max(ordinal, l.Ordinal)
		}
	}
	l := &entity.Lesson{
		ID: in.ID, ModuleID: in.ModuleID, Title: in.Title, Content: in.Content,
		IsFreePreview: in.IsFreePreview, Ordinal: ordinal + 1,
	}
	r.lessons = append(r.lessons, l)
	cp := *l
	return &cp, nil
}

func (r *fakeRepo) ListModules(_ context.Context, editionID int64) ([]entity.Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.Module{}
	for _, m := range r.modules {
		if m.EditionID != editionID {
			continue
		}
		cp := *m
		cp.Lessons = []entity.Lesson{}
		for _, l := range r.lessons {
			if l.ModuleID != m.ID {
				continue
			}
			lesson := *l
			lesson.Attachments = []entity.Attachment{}
			for _, a := range r.attachments {
				if a.LessonID == l.ID {
					lesson.Attachments = append(lesson.Attachments, a)
				}
			}
			cp.Lessons = append(cp.Lessons, lesson)
		}
		sort.Slice(cp.Lessons, func(i, j int) bool { return cp.Lessons[i].Ordinal < cp.Lessons[j].Ordinal })
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out, nil
}

func (r *fakeRepo) Enroll(_ context.Context, in entity.NewEnrollment) (*entity.Enrollment, *entity.Edition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.editions[in.EditionID]
	if !ok {
		return nil, nil, goerror.ErrNotFound
	}
	if err := e.CheckEnrollable(in.Now); err != nil {
		return nil, nil, err
	}

	var existing *entity.Enrollment
	for _, en := range r.enrollments {
		if en.EditionID == in.EditionID && en.UserID == in.UserID {
			existing = en
		}
	}
	if existing != nil && existing.IsActive {
		return nil, nil, entity.ErrAlreadyEnrolled
	}
	taken := r.seatsTaken(in.EditionID)
	if e.Capacity != nil && taken >= *e.Capacity {
		return nil, nil, entity.ErrNoSeats
	}

	if existing == nil {
		existing = &entity.Enrollment{ID: in.ID, EditionID: in.EditionID, UserID: in.UserID}
		r.enrollments = append(r.enrollments, existing)
	}
	existing.PurchasedBy = in.PurchasedBy
	existing.IsActive = true
	existing.AccessExpiresAt = e.AccessExpiresAt(in.Now)
	existing.EnrolledAt = in.Now
	existing.CourseTitle = r.courses[e.CourseID].Title
	existing.EditionTitle = e.Title

	ed := *e
	ed.SeatsTaken = taken + 1
	en := *existing
	return &en, &ed, nil
}

func (r *fakeRepo) GetEnrollment(_ context.Context, id int64) (*entity.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, en := range r.enrollments {
		if en.ID == id {
			cp := *en
			return &cp, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (r *fakeRepo) GetUserEnrollment(_ context.Context, editionID, userID int64) (*entity.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, en := range r.enrollments {
		if en.EditionID == editionID && en.UserID == userID {
			cp := *en
			return &cp, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (r *fakeRepo) DeactivateEnrollment(_ context.Context, id int64, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, en := range r.enrollments {
		if en.ID == id && en.IsActive {
			en.IsActive = false
			return nil
		}
	}
	return goerror.ErrNotFound
}

func (r *fakeRepo) ListUserEnrollments(_ context.Context, userID int64) ([]entity.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.Enrollment{}
	for _, en := range r.enrollments {
		if en.UserID == userID && en.IsActive {
			out = append(out, *en)
		}
	}
	return out, nil
}

type suite struct {
	uc        *Usecase
	repo      *fakeRepo
	messaging *fakeMessaging
	storage   *fakeStorage
	clock     *fakeClock
	workers   *goroutine.Manager
}

const testConfig = `
modules:
  course:
    media_bucket: media
    media_base_url: https://cdn.example.com/media/
    image_max_size_bytes: 64
    attachment_max_size_bytes: 32
    video_max_size_bytes: 128
`

func newSuite(t *testing.T) *suite {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfig))
	require.NoError(t, err)
	v, err := validator.NewV10Validator()
	require.NoError(t, err)
	az, err := authz.NewAuthorizer()
	require.NoError(t, err)

	s := &suite{
		repo:      newFakeRepo(),
		messaging: &fakeMessaging{},
		storage:   &fakeStorage{objects: map[string][]byte{}, types: map[string]string{}},
		clock:     &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		workers:   goroutine.NewManager(4),
	}
	s.uc = New(Dependency{
		RepoDB:        s.repo,
		RepoMessaging: s.messaging,
		Storage:       s.storage,
		Config:        cfg,
		Validator:     v,
		UID:           &seqID{},
		UUID:          &seqToken{},
		Clock:         s.clock,
		Authorizer:    az,
		Instrument:    instrument.NewNoop(),
		Goroutine:     s.workers,
	})
	return s
}

func withAuth(userID int64, roles ...authz.Role) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{
		UserID: userID,
		Phone:  "09120000000",
		Roles:  authz.RoleNames(roles),
	})
}

func requireCode(t *testing.T, err error, code goerror.Code) {
	t.Helper()
	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr), "expected *goerror.Error, got %v", err)
	require.Equal(t, code, gerr.Code(), gerr.Msg())
}

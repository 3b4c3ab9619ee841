package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shandysiswandi/coursebite/internal/course/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/pkg/instrument"
	"github.com/shandysiswandi/coursebite/internal/pkg/pgtest"
	"github.com/shandysiswandi/coursebite/internal/pkg/sequence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	ins := instrument.NewNoop()
	return NewDB(pgtest.New(t), sequence.New(ins), ins)
}

func seedEdition(t *testing.T, s *DB, capacity *int32) *entity.Edition {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.CreateCourse(ctx, entity.Course{ID: 1, Title: "Go", Slug: "go", IsPublished: true, CreatedBy: 1}))
	require.NoError(t, s.CreateEdition(ctx, entity.Edition{
		ID: 10, CourseID: 1, Title: "Spring", Slug: "go-spring", Type: entity.EditionOnline,
		Level: entity.LevelBeginner, Capacity: capacity, Price: 100, IsActive: true,
	}))

	e, err := s.GetEdition(ctx, 10)
	require.NoError(t, err)
	return e
}

func TestDB_CreateModule_ConcurrentOrdinals(t *testing.T) {
	s := newTestDB(t)
	seedEdition(t, s, nil)
	ctx := context.Background()

	const n = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ordinals []int
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := s.CreateModule(ctx, entity.NewModule{ID: int64(100 + i), EditionID: 10, Title: "m"})
			assert.NoError(t, err)
			if err == nil {
				mu.Lock()
				ordinals = append(ordinals, int(m.Ordinal))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	sort.Ints(ordinals)
	want := make([]int, n)
	for i := range want {
		want[i] = i + 1
	}
	assert.Equal(t, want, ordinals)

	_, err := s.CreateModule(ctx, entity.NewModule{ID: 999, EditionID: 404, Title: "m"})
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}

func TestDB_ListModules(t *testing.T) {
	s := newTestDB(t)
	seedEdition(t, s, nil)
	ctx := context.Background()

	m1, err := s.CreateModule(ctx, entity.NewModule{ID: 100, EditionID: 10, Title: "intro"})
	require.NoError(t, err)
	m2, err := s.CreateModule(ctx, entity.NewModule{ID: 101, EditionID: 10, Title: "basics"})
	require.NoError(t, err)

	_, err = s.CreateLesson(ctx, entity.NewLesson{ID: 200, ModuleID: m2.ID, Title: "b1"})
	require.NoError(t, err)
	_, err = s.CreateLesson(ctx, entity.NewLesson{ID: 201, ModuleID: m1.ID, Title: "a1", IsFreePreview: true})
	require.NoError(t, err)
	l, err := s.CreateLesson(ctx, entity.NewLesson{ID: 202, ModuleID: m1.ID, Title: "a2"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), l.Ordinal)

	modules, err := s.ListModules(ctx, 10)
	require.NoError(t, err)
	require.Len(t, modules, 2)
	assert.Equal(t, "intro", modules[0].Title)
	require.Len(t, modules[0].Lessons, 2)
	assert.Equal(t, "a1", modules[0].Lessons[0].Title)
	assert.Equal(t, "a2", modules[0].Lessons[1].Title)
	require.Len(t, modules[1].Lessons, 1)
}

func TestDB_Enroll_CapacityFull(t *testing.T) {
	s := newTestDB(t)
	capacity := int32(3)
	seedEdition(t, s, &capacity)
	ctx := context.Background()
	now := time.Now()

	for i := range 3 {
		_, _, err := s.Enroll(ctx, entity.NewEnrollment{ID: int64(500 + i), EditionID: 10, UserID: int64(1 + i), PurchasedBy: int64(1 + i), Now: now})
		require.NoError(t, err)
	}

	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
	)
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.Enroll(ctx, entity.NewEnrollment{ID: int64(600 + i), EditionID: 10, UserID: int64(100 + i), PurchasedBy: int64(100 + i), Now: now})
			if err == nil {
				accepted.Add(1)
				return
			}
			assert.ErrorIs(t, err, entity.ErrNoSeats)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(0), accepted.Load())

	e, err := s.GetEdition(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int32(3), e.SeatsTaken)
}

func TestDB_Enroll_ConcurrentLastSeats(t *testing.T) {
	s := newTestDB(t)
	capacity := int32(4)
	seedEdition(t, s, &capacity)
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
	)
	for i := range 12 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.Enroll(ctx, entity.NewEnrollment{ID: int64(700 + i), EditionID: 10, UserID: int64(200 + i), PurchasedBy: int64(200 + i), Now: time.Now()})
			if err == nil {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(4), accepted.Load())
}

func TestDB_Enroll_DuplicateAndReactivate(t *testing.T) {
	s := newTestDB(t)
	capacity := int32(1)
	seedEdition(t, s, &capacity)
	ctx := context.Background()
	now := time.Now()

	en, edition, err := s.Enroll(ctx, entity.NewEnrollment{ID: 500, EditionID: 10, UserID: 7, PurchasedBy: 7, Now: now})
	require.NoError(t, err)
	assert.Equal(t, int32(1), edition.SeatsTaken)
	assert.Equal(t, "Go", en.CourseTitle)

	_, _, err = s.Enroll(ctx, entity.NewEnrollment{ID: 501, EditionID: 10, UserID: 7, PurchasedBy: 7, Now: now})
	assert.ErrorIs(t, err, entity.ErrAlreadyEnrolled)

	require.NoError(t, s.DeactivateEnrollment(ctx, en.ID, now))
	assert.ErrorIs(t, s.DeactivateEnrollment(ctx, en.ID, now), goerror.ErrNotFound)

	again, _, err := s.Enroll(ctx, entity.NewEnrollment{ID: 502, EditionID: 10, UserID: 7, PurchasedBy: 7, Now: now})
	require.NoError(t, err)
	assert.Equal(t, en.ID, again.ID)

	list, err := s.ListUserEnrollments(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDB_Categories(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()

	root1, err := s.CreateCategory(ctx, entity.NewCategory{ID: 1, Title: "Programming", Slug: "programming"})
	require.NoError(t, err)
	root2, err := s.CreateCategory(ctx, entity.NewCategory{ID: 2, Title: "Design", Slug: "design"})
	require.NoError(t, err)
	child1, err := s.CreateCategory(ctx, entity.NewCategory{ID: 3, ParentID: &root1.ID, Title: "Go", Slug: "go"})
	require.NoError(t, err)
	child2, err := s.CreateCategory(ctx, entity.NewCategory{ID: 4, ParentID: &root1.ID, Title: "Rust", Slug: "rust"})
	require.NoError(t, err)

	assert.Equal(t, []int32{1, 2, 1, 2}, []int32{root1.Ordinal, root2.Ordinal, child1.Ordinal, child2.Ordinal})
	assert.Nil(t, root1.ParentID)
	require.NotNil(t, child1.ParentID)
	assert.Equal(t, root1.ID, *child1.ParentID)

	_, err = s.CreateCategory(ctx, entity.NewCategory{ID: 5, Title: "Go again", Slug: "go"})
	assert.ErrorIs(t, err, goerror.ErrConflict)

	missing := int64(404)
	_, err = s.CreateCategory(ctx, entity.NewCategory{ID: 6, ParentID: &missing, Title: "Orphan", Slug: "orphan"})
	assert.ErrorIs(t, err, goerror.ErrNotFound)

	all, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"programming", "design", "go", "rust"},
		[]string{all[0].Slug, all[1].Slug, all[2].Slug, all[3].Slug})

	t.Run("course filter and media", func(t *testing.T) {
		require.NoError(t, s.CreateCourse(ctx, entity.Course{ID: 20, CategoryID: &child1.ID, Title: "Go", Slug: "go-course", IsPublished: true, CreatedBy: 1}))
		require.NoError(t, s.CreateCourse(ctx, entity.Course{ID: 21, Title: "Figma", Slug: "figma", IsPublished: true, CreatedBy: 1}))
		assert.ErrorIs(t, s.CreateCourse(ctx, entity.Course{ID: 22, CategoryID: &missing, Title: "X", Slug: "x", CreatedBy: 1}), goerror.ErrNotFound)

		courses, total, err := s.ListPublishedCourses(ctx, entity.CourseListFilter{CategoryID: &child1.ID, Size: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, courses, 1)
		require.NotNil(t, courses[0].CategoryID)
		assert.Equal(t, child1.ID, *courses[0].CategoryID)

		_, total, err = s.ListPublishedCourses(ctx, entity.CourseListFilter{Size: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)

		now := time.Now().UTC().Truncate(time.Microsecond)
		require.NoError(t, s.CreateCourseMedia(ctx, entity.CourseMedia{ID: 30, CourseID: 20, Type: entity.MediaCover, URL: "u1", CreatedAt: now}))
		assert.ErrorIs(t, s.CreateCourseMedia(ctx, entity.CourseMedia{ID: 31, CourseID: 404, Type: entity.MediaCover, URL: "u2", CreatedAt: now}), goerror.ErrNotFound)

		media, err := s.ListCourseMedia(ctx, 20)
		require.NoError(t, err)
		require.Len(t, media, 1)
		assert.Equal(t, entity.MediaCover, media[0].Type)
	})
}

func TestDB_Instructors(t *testing.T) {
	s := newTestDB(t)
	seedEdition(t, s, nil)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.AssignInstructor(ctx, 10, 5, now))
	require.NoError(t, s.AssignInstructor(ctx, 10, 6, now.Add(time.Second)))
	assert.ErrorIs(t, s.AssignInstructor(ctx, 10, 5, now), goerror.ErrConflict)
	assert.ErrorIs(t, s.AssignInstructor(ctx, 404, 5, now), goerror.ErrNotFound)

	ids, err := s.ListInstructors(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6}, ids)

	ok, err := s.IsInstructor(ctx, 10, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.RemoveInstructor(ctx, 10, 5))
	assert.ErrorIs(t, s.RemoveInstructor(ctx, 10, 5), goerror.ErrNotFound)

	ok, err = s.IsInstructor(ctx, 10, 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDB_LessonFiles(t *testing.T) {
	s := newTestDB(t)
	seedEdition(t, s, nil)
	ctx := context.Background()

	m, err := s.CreateModule(ctx, entity.NewModule{ID: 100, EditionID: 10, Title: "intro"})
	require.NoError(t, err)
	l, err := s.CreateLesson(ctx, entity.NewLesson{ID: 200, ModuleID: m.ID, Title: "a1"})
	require.NoError(t, err)
	assert.Empty(t, l.Attachments)

	editionID, err := s.ModuleEditionID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), editionID)
	editionID, err = s.LessonEditionID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), editionID)
	_, err = s.LessonEditionID(ctx, 404)
	assert.ErrorIs(t, err, goerror.ErrNotFound)
	_, err = s.ModuleEditionID(ctx, 404)
	assert.ErrorIs(t, err, goerror.ErrNotFound)

	require.NoError(t, s.SetLessonVideo(ctx, l.ID, "https://cdn/v.mp4"))
	assert.ErrorIs(t, s.SetLessonVideo(ctx, 404, "x"), goerror.ErrNotFound)

	const n = 5
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateAttachment(ctx, entity.NewAttachment{
				ID: int64(300 + i), LessonID: l.ID, Title: fmt.Sprintf("f%d", i), FileURL: "u", FileType: "text/plain", FileSize: 1,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, err = s.CreateAttachment(ctx, entity.NewAttachment{ID: 399, LessonID: 404, Title: "x", FileURL: "u", FileType: "text/plain"})
	assert.ErrorIs(t, err, goerror.ErrNotFound)

	modules, err := s.ListModules(ctx, 10)
	require.NoError(t, err)
	require.Len(t, modules, 1)
	require.Len(t, modules[0].Lessons, 1)
	lesson := modules[0].Lessons[0]
	assert.Equal(t, "https://cdn/v.mp4", lesson.VideoURL)
	require.Len(t, lesson.Attachments, n)
	for i, a := range lesson.Attachments {
		assert.Equal(t, int32(i+1), a.Ordinal)
	}
}

func TestDB_GetUserEnrollment(t *testing.T) {
	s := newTestDB(t)
	seedEdition(t, s, nil)
	ctx := context.Background()
	now := time.Now()

	_, err := s.GetUserEnrollment(ctx, 10, 7)
	assert.ErrorIs(t, err, goerror.ErrNotFound)

	en, _, err := s.Enroll(ctx, entity.NewEnrollment{ID: 500, EditionID: 10, UserID: 7, PurchasedBy: 7, Now: now})
	require.NoError(t, err)
	require.NoError(t, s.DeactivateEnrollment(ctx, en.ID, now))

	got, err := s.GetUserEnrollment(ctx, 10, 7)
	require.NoError(t, err)
	assert.Equal(t, en.ID, got.ID)
	assert.False(t, got.IsActive)
	assert.False(t, got.HasAccess(now))
}

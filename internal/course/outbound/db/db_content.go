package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/coursebite/internal/course/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/pkg/sequence"
)

func moduleScope(editionID int64) sequence.Scope {
	return sequence.Scope{
		Name:          "course.edition_modules",
		Table:         "course_modules",
		ParentColumn:  "edition_id",
		ParentID:      editionID,
		OrdinalColumn: "ordinal",
	}
}

func lessonScope(moduleID int64) sequence.Scope {
	return sequence.Scope{
		Name:          "course.module_lessons",
		Table:         "course_lessons",
		ParentColumn:  "module_id",
		ParentID:      moduleID,
		OrdinalColumn: "ordinal",
	}
}

func attachmentScope(lessonID int64) sequence.Scope {
	return sequence.Scope{
		Name:          "course.lesson_attachments",
		Table:         "course_lesson_attachments",
		ParentColumn:  "lesson_id",
		ParentID:      lessonID,
		OrdinalColumn: "ordinal",
	}
}

// CreateModule appends a module to the end of an edition.
func (s *DB) CreateModule(ctx context.Context, in entity.NewModule) (_ *entity.Module, err error) {
	ctx, span := s.startSpan(ctx, "CreateModule")
	defer func() { s.endSpan(span, err) }()

	var m entity.Module
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx, "SELECT id FROM course_editions WHERE id = $1", in.EditionID).Scan(&id); err != nil {
			return s.mapError(err)
		}

		ordinal, err := s.seq.NextOrdinal(ctx, tx, moduleScope(in.EditionID))
		if err != nil {
			return err
		}

		return s.mapError(tx.QueryRow(ctx, `
			INSERT INTO course_modules (id, edition_id, title, ordinal) VALUES ($1, $2, $3, $4)
			RETURNING id, edition_id, title, ordinal, created_at`,
			in.ID, in.EditionID, in.Title, ordinal).
			Scan(&m.ID, &m.EditionID, &m.Title, &m.Ordinal, &m.CreatedAt))
	})
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// CreateLesson appends a lesson to the end of a module.
func (s *DB) CreateLesson(ctx context.Context, in entity.NewLesson) (_ *entity.Lesson, err error) {
	ctx, span := s.startSpan(ctx, "CreateLesson")
	defer func() { s.endSpan(span, err) }()

	var l entity.Lesson
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx, "SELECT id FROM course_modules WHERE id = $1", in.ModuleID).Scan(&id); err != nil {
			return s.mapError(err)
		}

		ordinal, err := s.seq.NextOrdinal(ctx, tx, lessonScope(in.ModuleID))
		if err != nil {
			return err
		}

		return s.mapError(tx.QueryRow(ctx, `
			INSERT INTO course_lessons (id, module_id, title, content, is_free_preview, ordinal)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, module_id, title, content, video_url, is_free_preview, ordinal, created_at`,
			in.ID, in.ModuleID, in.Title, in.Content, in.IsFreePreview, ordinal).
			Scan(&l.ID, &l.ModuleID, &l.Title, &l.Content, &l.VideoURL, &l.IsFreePreview, &l.Ordinal, &l.CreatedAt))
	})
	if err != nil {
		return nil, err
	}

	l.Attachments = []entity.Attachment{}
	return &l, nil
}

// CreateAttachment appends a file to the end of a lesson.
func (s *DB) CreateAttachment(ctx context.Context, in entity.NewAttachment) (_ *entity.Attachment, err error) {
	ctx, span := s.startSpan(ctx, "CreateAttachment")
	defer func() { s.endSpan(span, err) }()

	var a entity.Attachment
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx, "SELECT id FROM course_lessons WHERE id = $1", in.LessonID).Scan(&id); err != nil {
			return s.mapError(err)
		}

		ordinal, err := s.seq.NextOrdinal(ctx, tx, attachmentScope(in.LessonID))
		if err != nil {
			return err
		}

		return s.mapError(tx.QueryRow(ctx, `
			INSERT INTO course_lesson_attachments (id, lesson_id, title, file_url, file_type, file_size, ordinal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, lesson_id, title, file_url, file_type, file_size, ordinal, created_at`,
			in.ID, in.LessonID, in.Title, in.FileURL, in.FileType, in.FileSize, ordinal).
			Scan(&a.ID, &a.LessonID, &a.Title, &a.FileURL, &a.FileType, &a.FileSize, &a.Ordinal, &a.CreatedAt))
	})
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func (s *DB) SetLessonVideo(ctx context.Context, lessonID int64, videoURL string) (err error) {
	ctx, span := s.startSpan(ctx, "SetLessonVideo")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, "UPDATE course_lessons SET video_url = $2 WHERE id = $1", lessonID, videoURL)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

// ModuleEditionID returns the edition owning a module.
func (s *DB) ModuleEditionID(ctx context.Context, moduleID int64) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "ModuleEditionID")
	defer func() { s.endSpan(span, err) }()

	var editionID int64
	err = s.conn.QueryRow(ctx, "SELECT edition_id FROM course_modules WHERE id = $1", moduleID).Scan(&editionID)
	if err != nil {
		return 0, s.mapError(err)
	}

	return editionID, nil
}

// LessonEditionID returns the edition owning a lesson.
func (s *DB) LessonEditionID(ctx context.Context, lessonID int64) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "LessonEditionID")
	defer func() { s.endSpan(span, err) }()

	var editionID int64
	err = s.conn.QueryRow(ctx, `
		SELECT m.edition_id FROM course_lessons l
		JOIN course_modules m ON m.id = l.module_id
		WHERE l.id = $1`, lessonID).Scan(&editionID)
	if err != nil {
		return 0, s.mapError(err)
	}

	return editionID, nil
}

// ListModules returns the modules of an edition in ordinal order, each with
// its lessons and their attachments in ordinal order.
func (s *DB) ListModules(ctx context.Context, editionID int64) (_ []entity.Module, err error) {
	ctx, span := s.startSpan(ctx, "ListModules")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT id, edition_id, title, ordinal, created_at
		FROM course_modules WHERE edition_id = $1 ORDER BY ordinal`, editionID)
	if err != nil {
		return nil, s.mapError(err)
	}

	modules, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Module, error) {
		var m entity.Module
		err := row.Scan(&m.ID, &m.EditionID, &m.Title, &m.Ordinal, &m.CreatedAt)
		m.Lessons = []entity.Lesson{}
		return m, err
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	if len(modules) == 0 {
		return modules, nil
	}

	index := make(map[int64]int, len(modules))
	ids := make([]int64, len(modules))
	for i, m := range modules {
		index[m.ID] = i
		ids[i] = m.ID
	}

	rows, err = s.conn.Query(ctx, `
		SELECT id, module_id, title, content, video_url, is_free_preview, ordinal, created_at
		FROM course_lessons WHERE module_id = ANY($1) ORDER BY module_id, ordinal`, ids)
	if err != nil {
		return nil, s.mapError(err)
	}

	lessons, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Lesson, error) {
		var l entity.Lesson
		err := row.Scan(&l.ID, &l.ModuleID, &l.Title, &l.Content, &l.VideoURL, &l.IsFreePreview, &l.Ordinal, &l.CreatedAt)
		l.Attachments = []entity.Attachment{}
		return l, err
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	if len(lessons) > 0 {
		lessonIDs := make([]int64, len(lessons))
		for i, l := range lessons {
			lessonIDs[i] = l.ID
		}

		rows, err = s.conn.Query(ctx, `
			SELECT id, lesson_id, title, file_url, file_type, file_size, ordinal, created_at
			FROM course_lesson_attachments WHERE lesson_id = ANY($1) ORDER BY lesson_id, ordinal`, lessonIDs)
		if err != nil {
			return nil, s.mapError(err)
		}

		attachments, err := pgx.CollectRows(rows, pgx.RowToStructByPos[entity.Attachment])
		if err != nil {
			return nil, s.mapError(err)
		}

		byLesson := make(map[int64]int, len(lessons))
		for i, l := range lessons {
			byLesson[l.ID] = i
		}
		for _, a := range attachments {
			i := byLesson[a.LessonID]
			lessons[i].Attachments = append(lessons[i].Attachments, a)
		}
	}

	for _, l := range lessons {
		i := index[l.ModuleID]
		modules[i].Lessons = append(modules[i].Lessons, l)
	}

	return modules, nil
}

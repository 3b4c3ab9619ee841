package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shandysiswandi/coursebite/internal/course/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/pkg/storage"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
)

const (
	defaultImageMaxSize      int64 = 5 << 20
	defaultAttachmentMaxSize int64 = 20 << 20
	defaultVideoMaxSize      int64 = 512 << 20
)

//nolint:gochecknoglobals // global for fast reuse
var (
	imageContentTypeExt = map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
	}
	videoContentTypeExt = map[string]string{
		"video/mp4":  ".mp4",
		"video/webm": ".webm",
	}
)

type upload struct {
	field       string
	key         string
	contentType string
	maxSize     int64
	owner       string
}

// put streams r into the media bucket and returns the public URL and size.
func (s *Usecase) put(ctx context.Context, r io.Reader, up upload) (string, int64, error) {
	bucket := strings.TrimSpace(s.cfg.GetString("modules.course.media_bucket"))
	baseURL := strings.TrimRight(strings.TrimSpace(s.cfg.GetString("modules.course.media_base_url")), "/")

	body := storage.LimitReader(r, up.maxSize)
	_, err := s.storage.PutObject(ctx, bucket, up.key, body, storage.PutOptions{
		Size:        -1,
		ContentType: up.contentType,
		Metadata:    map[string]string{"owner": up.owner},
	})
	if errors.Is(err, storage.ErrTooLarge) {
		return "", 0, goerror.NewInvalidInput(nil, up.field, fmt.Sprintf("%s must not exceed %d bytes", up.field, up.maxSize))
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to upload course media", "key", up.key, "error", err)
		return "", 0, goerror.NewServer(err)
	}

	return baseURL + "/" + up.key, body.Size(), nil
}

// discard removes an object whose row could not be stored.
func (s *Usecase) discard(ctx context.Context, key string) {
	bucket := strings.TrimSpace(s.cfg.GetString("modules.course.media_bucket"))
	if err := s.storage.DeleteObject(ctx, bucket, key); err != nil {
		slog.WarnContext(ctx, "failed to delete orphan course media", "key", key, "error", err)
	}
}

func (s *Usecase) maxSize(key string, def int64) int64 {
	if v := s.cfg.GetInt64(key); v > 0 {
		return v
	}
	return def
}

type CourseMediaUploadInput struct {
	CourseID    int64
	Type        string `validate:"required,oneof=cover banner icon gallery"`
	AltText     string `validate:"omitempty,max=255"`
	File        io.Reader
	ContentType string
}

func (s *Usecase) CourseMediaUpload(ctx context.Context, in CourseMediaUploadInput) (*entity.CourseMedia, error) {
	ctx, span := s.startSpan(ctx, "CourseMediaUpload")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, authz.CapCourseManage)
	if err != nil {
		return nil, err
	}

	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	in.AltText = strings.TrimSpace(in.AltText)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}
	if in.File == nil {
		return nil, goerror.NewInvalidInput(nil, "media", "media file is required")
	}

	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	ext, ok := imageContentTypeExt[contentType]
	if !ok {
		return nil, goerror.NewInvalidInput(nil, "media", "unsupported media content type")
	}

	if _, err := s.course(ctx, in.CourseID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("courses/%d/%s/%s%s", in.CourseID, in.Type, s.uuid.Generate(), ext)
	url, _, err := s.put(ctx, in.File, upload{
		field:       "media",
		key:         key,
		contentType: contentType,
		maxSize:     s.maxSize("modules.course.image_max_size_bytes", defaultImageMaxSize),
		owner:       strconv.FormatInt(clm.UserID, 10),
	})
	if err != nil {
		return nil, err
	}

	media := entity.CourseMedia{
		ID:        s.uid.Generate(),
		CourseID:  in.CourseID,
		Type:      entity.MediaType(in.Type),
		URL:       url,
		AltText:   in.AltText,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repoDB.CreateCourseMedia(ctx, media); err != nil {
		s.discard(ctx, key)
		if errors.Is(err, goerror.ErrNotFound) {
			slog.WarnContext(ctx, "course not found", "course_id", in.CourseID)
			return nil, goerror.NewBusiness("Course not found", goerror.CodeNotFound)
		}
		slog.ErrorContext(ctx, "failed to repo create course media", "course_id", in.CourseID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &media, nil
}

type LessonVideoUploadInput struct {
	LessonID    int64
	File        io.Reader
	ContentType string
}

type LessonVideoUploadOutput struct {
	VideoURL string
}

func (s *Usecase) LessonVideoUpload(ctx context.Context, in LessonVideoUploadInput) (*LessonVideoUploadOutput, error) {
	ctx, span := s.startSpan(ctx, "LessonVideoUpload")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, authz.CapCourseContentWrite); err != nil {
		return nil, err
	}

	editionID, err := s.lessonEdition(ctx, in.LessonID)
	if err != nil {
		return nil, err
	}

	clm, err := s.contentWriter(ctx, editionID)
	if err != nil {
		return nil, err
	}

	if in.File == nil {
		return nil, goerror.NewInvalidInput(nil, "video", "video file is required")
	}

	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	ext, ok := videoContentTypeExt[contentType]
	if !ok {
		return nil, goerror.NewInvalidInput(nil, "video", "unsupported video content type")
	}

	key := fmt.Sprintf("lessons/%d/video/%s%s", in.LessonID, s.uuid.Generate(), ext)
	url, _, err := s.put(ctx, in.File, upload{
		field:       "video",
		key:         key,
		contentType: contentType,
		maxSize:     s.maxSize("modules.course.video_max_size_bytes", defaultVideoMaxSize),
		owner:       strconv.FormatInt(clm.UserID, 10),
	})
	if err != nil {
		return nil, err
	}

	if err := s.repoDB.SetLessonVideo(ctx, in.LessonID, url); err != nil {
		s.discard(ctx, key)
		if errors.Is(err, goerror.ErrNotFound) {
			slog.WarnContext(ctx, "lesson not found", "lesson_id", in.LessonID)
			return nil, goerror.NewBusiness("Lesson not found", goerror.CodeNotFound)
		}
		slog.ErrorContext(ctx, "failed to repo set lesson video", "lesson_id", in.LessonID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &LessonVideoUploadOutput{VideoURL: url}, nil
}

type AttachmentUploadInput struct {
	LessonID    int64
	Title       string `validate:"required,max=255"`
	FileName    string
	File        io.Reader
	ContentType string
}

// AttachmentUpload stores any file type. The sniffed type is kept unless it is
// generic, then the file name decides.
func (s *Usecase) AttachmentUpload(ctx context.Context, in AttachmentUploadInput) (*entity.Attachment, error) {
	ctx, span := s.startSpan(ctx, "AttachmentUpload")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, authz.CapCourseContentWrite); err != nil {
		return nil, err
	}

	editionID, err := s.lessonEdition(ctx, in.LessonID)
	if err != nil {
		return nil, err
	}

	clm, err := s.contentWriter(ctx, editionID)
	if err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		in.Title = strings.TrimSpace(in.FileName)
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}
	if in.File == nil {
		return nil, goerror.NewInvalidInput(nil, "file", "attachment file is required")
	}

	fileType := entity.FileType(in.ContentType, in.FileName)
	key := fmt.Sprintf("lessons/%d/files/%s%s", in.LessonID, s.uuid.Generate(), entity.FileExt(fileType, in.FileName))
	url, size, err := s.put(ctx, in.File, upload{
		field:       "file",
		key:         key,
		contentType: fileType,
		maxSize:     s.maxSize("modules.course.attachment_max_size_bytes", defaultAttachmentMaxSize),
		owner:       strconv.FormatInt(clm.UserID, 10),
	})
	if err != nil {
		return nil, err
	}

	attachment, err := s.repoDB.CreateAttachment(ctx, entity.NewAttachment{
		ID:       s.uid.Generate(),
		LessonID: in.LessonID,
		Title:    in.Title,
		FileURL:  url,
		FileType: fileType,
		FileSize: size,
	})
	if err != nil {
		s.discard(ctx, key)
		if errors.Is(err, goerror.ErrNotFound) {
			slog.WarnContext(ctx, "lesson not found", "lesson_id", in.LessonID)
			return nil, goerror.NewBusiness("Lesson not found", goerror.CodeNotFound)
		}
		slog.ErrorContext(ctx, "failed to repo create attachment", "lesson_id", in.LessonID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return attachment, nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/pkg/storage"
)

const defaultAvatarMaxSize int64 = 2 << 20

//nolint:gochecknoglobals // global for fast reuse
var avatarContentTypeExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type ProfileUpdateAvatarInput struct {
	File        io.Reader
	ContentType string
}

type ProfileUpdateAvatarOutput struct {
	AvatarURL string
}

func (s *Usecase) ProfileUpdateAvatar(ctx context.Context, in ProfileUpdateAvatarInput) (*ProfileUpdateAvatarOutput, error) {
	ctx, span := s.startSpan(ctx, "ProfileUpdateAvatar")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	if in.File == nil {
		return nil, goerror.NewInvalidInput(nil, "avatar", "avatar file is required")
	}

	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	ext, ok := avatarContentTypeExt[contentType]
	if !ok {
		return nil, goerror.NewInvalidInput(nil, "avatar", "unsupported avatar content type")
	}

	maxSize := s.cfg.GetInt64("modules.identity.avatar_max_size_bytes")
	if maxSize <= 0 {
		maxSize = defaultAvatarMaxSize
	}

	bucket := strings.TrimSpace(s.cfg.GetString("modules.identity.avatar_bucket"))
	baseURL := strings.TrimRight(strings.TrimSpace(s.cfg.GetString("modules.identity.avatar_base_url")), "/")
	key := fmt.Sprintf("%d/%s%s", clm.UserID, s.uuid.Generate(), ext)

	_, err = s.storage.PutObject(ctx, bucket, key, storage.LimitReader(in.File, maxSize), storage.PutOptions{
		Size:        -1,
		ContentType: contentType,
		Metadata:    map[string]string{"user_id": strconv.FormatInt(clm.UserID, 10)},
	})
	if errors.Is(err, storage.ErrTooLarge) {
		return nil, goerror.NewInvalidInput(nil, "avatar", fmt.Sprintf("avatar must not exceed %d bytes", maxSize))
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to upload user avatar", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	avatarURL := baseURL + "/" + key
	if err := s.repoDB.UpdateProfileAvatar(ctx, clm.UserID, avatarURL); err != nil {
		slog.ErrorContext(ctx, "failed to repo update profile avatar", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ProfileUpdateAvatarOutput{AvatarURL: avatarURL}, nil
}

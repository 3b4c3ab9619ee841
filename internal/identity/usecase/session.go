package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/coursebite/internal/identity/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/pkg/jwt"
	"github.com/shandysiswandi/coursebite/internal/pkg/valueobject"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
)

// refreshTokenLength is the length of a refresh token handed to clients.
const refreshTokenLength = 64

type sessionMeta struct {
	IP        string
	UserAgent string
}

func (m sessionMeta) jsonMap() valueobject.JSONMap {
	meta := valueobject.JSONMap{}
	if m.IP != "" {
		meta.Set("ip", m.IP)
	}
	if m.UserAgent != "" {
		meta.Set("user_agent", m.UserAgent)
	}
	return meta
}

func (s *Usecase) accessToken(ctx context.Context, userID int64, phone string, roles []authz.Role) (string, error) {
	token, err := s.jwt.Generate(jwt.Subject{
		UserID: userID,
		Phone:  phone,
		Roles:  authz.RoleNames(roles),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access jwt token", "user_id", userID, "error", err)
		return "", goerror.NewServer(err)
	}
	return token, nil
}

// newRefreshToken draws a refresh token and returns it with the record that
// stores its hash. The record has no UserID yet.
func (s *Usecase) newRefreshToken(ctx context.Context, meta sessionMeta) (string, *entity.RefreshToken, error) {
	refresh := s.oid.Generate()
	refreshHash, err := s.hmac.Hash(refresh)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash refresh token", "error", err)
		return "", nil, goerror.NewServer(err)
	}

	return refresh, &entity.RefreshToken{
		ID:        s.uid.Generate(),
		Token:     string(refreshHash),
		ExpiresAt: s.clock.Now().Add(s.refreshTokenTTL()),
		Metadata:  meta.jsonMap(),
	}, nil
}

func (s *Usecase) refreshTokenTTL() time.Duration {
	return s.durationOr(s.cfg.GetDay("modules.identity.refresh_token_ttl_days"), 30*24*time.Hour)
}

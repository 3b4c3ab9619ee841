package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/coursebite/internal/identity/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
)

type ProfileUpdateInput struct {
	FirstName  string `validate:"omitempty,max=100,personname"`
	LastName   string `validate:"omitempty,max=100,personname"`
	NationalID string `validate:"omitempty,nationalid"`
	Email      string `validate:"omitempty,email,max=254"`
	Bio        string `validate:"omitempty,max=1000"`
	JobTitle   string `validate:"omitempty,max=100"`
	BirthDate  string `validate:"omitempty,datetime=2006-01-02"`
	Province   string `validate:"omitempty,max=100"`
	City       string `validate:"omitempty,max=100"`
	Address    string `validate:"omitempty,max=500"`
}

func (s *Usecase) ProfileUpdate(ctx context.Context, in ProfileUpdateInput) error {
	ctx, span := s.startSpan(ctx, "ProfileUpdate")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.NationalID = strings.TrimSpace(in.NationalID)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.BirthDate = strings.TrimSpace(in.BirthDate)
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	var birthDate *time.Time
	if in.BirthDate != "" {
		bd, err := time.Parse(time.DateOnly, in.BirthDate)
		if err != nil {
			return goerror.NewInvalidInput(nil, "birth_date", "birth_date must be YYYY-MM-DD")
		}
		if bd.After(s.clock.Now()) {
			return goerror.NewInvalidInput(nil, "birth_date", "birth_date must be in the past")
		}
		birthDate = &bd
	}

	err = s.repoDB.UpdateProfile(ctx, entity.UpdateProfile{
		UserID:     clm.UserID,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		NationalID: in.NationalID,
		Email:      in.Email,
		Bio:        strings.TrimSpace(in.Bio),
		JobTitle:   strings.TrimSpace(in.JobTitle),
		BirthDate:  birthDate,
		Province:   strings.TrimSpace(in.Province),
		City:       strings.TrimSpace(in.City),
		Address:    strings.TrimSpace(in.Address),
	})
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "email or national id already used", "user_id", clm.UserID)
		return goerror.NewBusiness("Email or national id already used", goerror.CodeConflict)
	}
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user profile not found", "user_id", clm.UserID)
		return goerror.NewBusiness("Profile not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update profile", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

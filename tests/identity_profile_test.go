package tests

import (
	"net/http"
	"testing"
)

func TestProfile(t *testing.T) {

	// Arrange
	token := accessToken(t)

	// Act
	status, body := doJSON(t, http.MethodGet, "/profile", nil, token)

	// Assert
	if status != http.StatusOK {
		errEnv := decodeError(t, body)
		t.Fatalf("profile failed: status=%d message=%q", status, errEnv.Message)
	}
	var data struct {
		IsComplete       bool     `json:"is_complete"`
		IncompleteFields []string `json:"incomplete_fields"`
	}
	decodeSuccess(t, body, &data)
	if data.IsComplete && len(data.IncompleteFields) > 0 {
		t.Fatalf("complete profile with missing fields: %v", data.IncompleteFields)
	}
}

func TestProfileAvatar_RejectsText(t *testing.T) {

	// Arrange
	token := accessToken(t)

	// Act
	status, body := doMultipart(t, "/profile/avatar", "avatar", "avatar.txt", []byte("not an image"), token)

	// Assert
	if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
		t.Fatalf("expected client error, got status=%d body=%s", status, body)
	}
}

func TestAdminProfiles_StudentForbidden(t *testing.T) {

	// Arrange
	token := accessToken(t)

	// Act
	status, body := doJSON(t, http.MethodGet, "/admin/profiles", nil, token)

	// Assert
	if status != http.StatusForbidden {
		t.Fatalf("expected forbidden, got status=%d body=%s", status, body)
	}
}

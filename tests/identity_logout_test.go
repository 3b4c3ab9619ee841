package tests

import (
	"net/http"
	"testing"
)

func TestLogout_Unauthenticated(t *testing.T) {

	// Arrange
	payload := map[string]string{"refresh_token": "anything"}

	// Act
	status, body := doJSON(t, http.MethodPost, "/logout", payload, "")

	// Assert
	if status != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got status=%d body=%s", status, body)
	}
}

func TestLogout_UnknownRefreshToken(t *testing.T) {

	// Arrange
	token := accessToken(t)
	payload := map[string]string{"refresh_token": "not-a-real-token"}

	// Act
	status, body := doJSON(t, http.MethodPost, "/logout", payload, token)

	// Assert
	if status != http.StatusBadRequest {
		t.Fatalf("expected bad request, got status=%d body=%s", status, body)
	}
}

func TestMe(t *testing.T) {

	// Arrange
	token := accessToken(t)

	// Act
	status, body := doJSON(t, http.MethodGet, "/auth/me", nil, token)

	// Assert
	if status != http.StatusOK {
		errEnv := decodeError(t, body)
		t.Fatalf("me failed: status=%d message=%q", status, errEnv.Message)
	}
	var data struct {
		ID          string   `json:"id"`
		PhoneNumber string   `json:"phone_number"`
		Roles       []string `json:"roles"`
	}
	decodeSuccess(t, body, &data)
	if data.ID == "" || data.PhoneNumber == "" {
		t.Fatalf("unexpected user: %+v", data)
	}
}

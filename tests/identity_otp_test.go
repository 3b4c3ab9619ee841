package tests

import (
	"net/http"
	"testing"
)

func TestOTPSend(t *testing.T) {

	// Arrange
	payload := map[string]string{"phone_number": uniquePhone()}

	// Act
	status, body := doJSON(t, http.MethodPost, "/auth/otp/send", payload, "")

	// Assert
	if status != http.StatusAccepted {
		errEnv := decodeError(t, body)
		t.Fatalf("otp send failed: status=%d message=%q", status, errEnv.Message)
	}
	env := decodeSuccess(t, body, nil)
	if env.Message != "OTP code has been sent" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}

func TestOTPSend_RateLimited(t *testing.T) {

	// Arrange
	payload := map[string]string{"phone_number": uniquePhone()}
	if status, body := doJSON(t, http.MethodPost, "/auth/otp/send", payload, ""); status != http.StatusAccepted {
		t.Fatalf("first otp send failed: status=%d body=%s", status, body)
	}

	// Act
	status, body := doJSON(t, http.MethodPost, "/auth/otp/send", payload, "")

	// Assert
	if status != http.StatusBadRequest {
		t.Fatalf("expected rate limit rejection, got status=%d body=%s", status, body)
	}
}

func TestOTPSend_InvalidPhone(t *testing.T) {

	// Arrange
	payload := map[string]string{"phone_number": "12345"}

	// Act
	status, body := doJSON(t, http.MethodPost, "/auth/otp/send", payload, "")

	// Assert
	if status != http.StatusBadRequest {
		t.Fatalf("expected bad request, got status=%d body=%s", status, body)
	}
}

func TestOTPVerify_WithoutCode(t *testing.T) {

	// Arrange
	payload := map[string]string{"phone_number": uniquePhone(), "code": "123456"}

	// Act
	status, body := doJSON(t, http.MethodPost, "/auth/otp/verify", payload, "")

	// Assert
	if status != http.StatusBadRequest {
		t.Fatalf("expected bad request, got status=%d body=%s", status, body)
	}
	errEnv := decodeError(t, body)
	if errEnv.Message != "Invalid or expired code" {
		t.Fatalf("unexpected message: %q", errEnv.Message)
	}
}

package tests

import (
	"net/http"
	"testing"
)

func TestHealth(t *testing.T) {

	// Act
	status, body := doJSON(t, http.MethodGet, "/health", nil, "")

	// Assert
	if status != http.StatusOK {
		t.Fatalf("health failed: status=%d body=%s", status, body)
	}
	var data struct {
		Database string `json:"database"`
		Redis    string `json:"redis"`
	}
	decodeSuccess(t, body, &data)
	if data.Database != "up" || data.Redis != "up" {
		t.Fatalf("unexpected health: %+v", data)
	}
}

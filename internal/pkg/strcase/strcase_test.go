package strcase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToLowerSnake(t *testing.T) {
	tests := map[string]string{
		"":            "",
		"UserID":      "user_id",
		"HTTPServer":  "http_server",
		"PhoneNumber": "phone_number",
		"Field2Name":  "field2_name",
	}
	for in, want := range tests {
		assert.Equal(t, want, ToLowerSnake(in), in)
	}
}

func TestToSlug(t *testing.T) {
	tests := map[string]string{
		"":                    "",
		"Go Fundamentals":     "go-fundamentals",
		"  Go -- Advanced!  ": "go-advanced",
		"Spring 2026 / A":     "spring-2026-a",
		"برنامه نویسی Go":     "برنامه-نویسی-go",
	}
	for in, want := range tests {
		assert.Equal(t, want, ToSlug(in), in)
	}
}

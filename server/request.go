package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct returns a field -> reason map, or nil when s is valid.
func validateStruct(s any) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return map[string]string{"_": err.Error()}
	}
	fields := make(map[string]string, len(errs))
	for _, e := range errs {
		fields[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
	}
	return fields
}

// AskRequest is the body of POST /api/v1/ask.
type AskRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
}

// Source identifies one article used as context.
type Source struct {
	DocumentID string  `json:"document_id"`
	Label      string  `json:"label"`
	Score      float32 `json:"score,omitempty"`
}

// AskResponse is the body returned by POST /api/v1/ask.
type AskResponse struct {
	Answer     string    `json:"answer"`
	Status     string    `json:"status"`
	Resolution string    `json:"resolution"`
	Label      string    `json:"label,omitempty"`
	Sources    []Source  `json:"sources"`
	RequestID  string    `json:"request_id"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms"`
}

// DocumentResponse describes one stored document.
type DocumentResponse struct {
	DocumentID string    `json:"document_id"`
	Articles   int       `json:"articles"`
	InsertedAt time.Time `json:"inserted_at"`
}

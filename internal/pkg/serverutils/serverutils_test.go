package serverutils

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"ai-llm-demos-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Question string `json:"question" label:"Question" validate:"required,min=10,max=20"`
	Kind     string `json:"kind" validate:"omitempty,oneof=1 2"`
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name string
		req  sampleRequest
		want map[string]string
	}{
		{name: "valid", req: sampleRequest{Question: "long enough q"}},
		{name: "missing", req: sampleRequest{}, want: map[string]string{"question": "Question cannot be empty"}},
		{name: "short", req: sampleRequest{Question: "short"}, want: map[string]string{"question": "Question must be at least 10 characters"}},
		{name: "long", req: sampleRequest{Question: "this question is far too long"}, want: map[string]string{"question": "Question must be at most 20 characters"}},
		{name: "bad kind", req: sampleRequest{Question: "long enough q", Kind: "3"}, want: map[string]string{"kind": "kind must be one of [1 2]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.req)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.want, vErr.Fields)
		})
	}
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(logger.NewNopLogger())})
	app.Get("/validation", func(c *fiber.Ctx) error {
		return &ValidationError{Fields: map[string]string{"essay": "Essay content cannot be empty"}}
	})
	app.Get("/gateway", func(c *fiber.Ctx) error { return NewGatewayError(errors.New("inventory down")) })
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.ErrUnprocessableEntity })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{path: "/validation", status: 400, contains: `"essay":"Essay content cannot be empty"`},
		{path: "/gateway", status: 502, contains: "inventory down"},
		{path: "/fiber", status: 422, contains: "Unprocessable Entity"},
		{path: "/boom", status: 500},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			if tt.contains == "" {
				assert.Empty(t, body)
				return
			}
			assert.Contains(t, string(body), tt.contains)
		})
	}
}

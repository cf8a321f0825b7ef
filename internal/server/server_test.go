package server

import (
	"fmt"
	"testing"

	"biomeai-be/internal/repository/contract"
	"biomeai-be/internal/service"
	"biomeai-be/pkg/document"
	"biomeai-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("lookup: %w", contract.ErrReportNotFound), fiber.StatusNotFound},
		{contract.ErrThreadOwnedByAnotherUser, fiber.StatusForbidden},
		{service.ErrUploadInProgress, fiber.StatusConflict},
		{fmt.Errorf("%w: report.docx", service.ErrUnsupportedFile), fiber.StatusUnprocessableEntity},
		{fmt.Errorf("%w: empty", document.ErrDecode), fiber.StatusUnprocessableEntity},
		{fmt.Errorf("%w: timeout", llm.ErrGeneration), fiber.StatusBadGateway},
		{fmt.Errorf("%w: down", service.ErrPersistence), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, StatusFor(tt.err), tt.err.Error())
	}
}

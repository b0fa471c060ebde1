package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"scenariogen.app/server/common/id"
	"scenariogen.app/server/internal/http/dto"
	"scenariogen.app/server/internal/scenario"
	"scenariogen.app/server/internal/service"
)

const GenerationIDHeader = "X-Generation-Id"

type GenerationHandler struct {
	service     service.GenerationService
	traceHeader string
}

func NewGenerationHandler(service service.GenerationService, traceHeader string) *GenerationHandler {
	return &GenerationHandler{
		service:     service,
		traceHeader: traceHeader,
	}
}

func (h *GenerationHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GenerateScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			slog.WarnContext(ctx, "request body too large", "limit", tooLarge.Limit)
			c.JSON(http.StatusRequestEntityTooLarge, dto.Failure("request body too large"))
			return
		}
		slog.WarnContext(ctx, "invalid generate request", "error", err)
		c.JSON(http.StatusBadRequest, dto.Failure(err.Error()))
		return
	}

	// Without the header the span nests under the otelgin request span.
	opts := service.GenerateOptions{}
	if h.traceHeader != "" {
		opts.TraceID = c.GetHeader(h.traceHeader)
	}

	result, err := h.service.Generate(ctx, req.ToDomain(), opts)
	if err != nil {
		c.JSON(failureStatus(err), dto.Failure(err.Error()))
		return
	}

	c.Header(GenerationIDHeader, id.Format(result.ID))
	c.JSON(http.StatusOK, dto.Success(result.Text))
}

func failureStatus(err error) int {
	switch scenario.FailureKindOf(err) {
	case scenario.FailureBackendUnconfigured:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

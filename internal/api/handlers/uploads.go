package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"

	"github.com/your-org/identity-vault/pkg/dto"
)

type LabelsInvoker interface {
	Handle(ctx context.Context, event events.S3Event) (dto.LabelResult, error)
}

type AccessInvoker interface {
	Handle(ctx context.Context, event events.S3Event) (dto.AccessResult, error)
}

// UploadHandler accepts S3 and MinIO bucket notifications. Both services
// post the same Records envelope.
type UploadHandler struct {
	labels LabelsInvoker
	access AccessInvoker
}

func NewUploadHandler(labels LabelsInvoker, access AccessInvoker) *UploadHandler {
	return &UploadHandler{labels: labels, access: access}
}

func (h *UploadHandler) Labels(c *gin.Context) {
	var event events.S3Event
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.labels.Handle(c.Request.Context(), event)
	if err != nil {
		slog.Error("labels upload failed", "records", len(event.Records), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *UploadHandler) Access(c *gin.Context) {
	var event events.S3Event
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.access.Handle(c.Request.Context(), event)
	if err != nil {
		slog.Error("access upload failed", "records", len(event.Records), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, res)
}

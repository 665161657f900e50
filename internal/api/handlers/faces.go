package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/identity-vault/pkg/dto"
)

type CompareInvoker interface {
	Handle(ctx context.Context, req dto.CompareRequest) (dto.CompareResult, error)
}

type FaceHandler struct {
	comparator CompareInvoker
	// budget stands in for the Lambda deadline.
	budget time.Duration
}

func NewFaceHandler(comparator CompareInvoker, budget time.Duration) *FaceHandler {
	return &FaceHandler{comparator: comparator, budget: budget}
}

func (h *FaceHandler) Compare(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.budget)
	defer cancel()

	res, err := h.comparator.Handle(ctx, dto.CompareRequest{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, res)
}

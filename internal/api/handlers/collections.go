package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/identity-vault/pkg/dto"
)

type CollectionInvoker interface {
	Handle(ctx context.Context, req dto.CollectionRequest) (dto.CollectionResult, error)
}

type CollectionHandler struct {
	manager CollectionInvoker
}

func NewCollectionHandler(manager CollectionInvoker) *CollectionHandler {
	return &CollectionHandler{manager: manager}
}

// Action runs one collection action. Failures are reported in the body with
// status "Error", never as an HTTP error.
func (h *CollectionHandler) Action(c *gin.Context) {
	var req dto.CollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.manager.Handle(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, res)
}

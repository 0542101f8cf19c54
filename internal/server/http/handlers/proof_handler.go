package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/courierlabs/podproof/internal/domain/errors"
	"github.com/courierlabs/podproof/internal/domain/model"
	"github.com/courierlabs/podproof/internal/server/http/dto"
)

// ProofHandler serves the submission and debug endpoints.
type ProofHandler struct {
	facade ProofFacade
}

// NewProofHandler constructs ProofHandler.
func NewProofHandler(facade ProofFacade) *ProofHandler {
	return &ProofHandler{facade: facade}
}

// Submit handles POST /submit-proof.
func (h *ProofHandler) Submit(c *gin.Context) {
	var req dto.SubmitProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Missing required fields"})
		return
	}

	urls, err := h.facade.SubmitProof(c.Request.Context(), model.SubmissionRequest{
		OrderNumber:      req.OrderNumber,
		CustomerName:     req.CustomerName,
		PhotoDataURL:     req.PhotoDataURL,
		SignatureDataURL: req.SignatureDataURL,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SubmitProofResponse{
		Success:      true,
		PhotoURL:     urls.PhotoURL,
		SignatureURL: urls.SignatureURL,
	})
}

// TestOrder handles GET /test-order/:orderNumber. Debug aid: echoes the
// located order without side effects.
func (h *ProofHandler) TestOrder(c *gin.Context) {
	order, err := h.facade.LookupOrder(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TestOrderResponse{
		ID:           order.ID,
		Number:       order.Number,
		CustomerName: order.CustomerName,
	})
}

// Health handles GET /health.
func (h *ProofHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}

func (h *ProofHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrMissingFields):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Missing required fields"})
	case errors.Is(err, domainErrors.ErrInvalidImageFormat):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid image payload"})
	case errors.Is(err, domainErrors.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Order not found"})
	default:
		details := err.Error()
		if ue, ok := domainErrors.AsUpstream(err); ok {
			details = ue.Error()
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Something went wrong", Details: details})
	}
}

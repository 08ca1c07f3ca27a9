package customer

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainerrors "gasflow/internal/errors"
	"gasflow/internal/pkg/apperrors"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	adminID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewUnauthorized("invalid token subject"))
		return
	}

	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewValidation(err.Error()))
		return
	}

	cust, err := h.service.Create(c.Request.Context(), adminID, req)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cust)
}

func (h *Handler) List(c *gin.Context) {
	adminID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewUnauthorized("invalid token subject"))
		return
	}

	views, err := h.service.ListWithStatus(c.Request.Context(), adminID, c.Query("status"), c.Query("search"))
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": views, "count": len(views)})
}

func (h *Handler) Get(c *gin.Context) {
	adminID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewUnauthorized("invalid token subject"))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewValidation("invalid customer id"))
		return
	}

	cust, err := h.service.GetForAdmin(c.Request.Context(), id, adminID)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (h *Handler) AddCity(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewValidation(err.Error()))
		return
	}
	if err := h.service.AddCity(c.Request.Context(), req.Name); err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"name": req.Name})
}

func (h *Handler) ListCities(c *gin.Context) {
	cities, err := h.service.ListCities(c.Request.Context())
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cities": cities})
}

// SubmitChangeRequest is the driver-facing endpoint for reporting a wrong
// address or phone number.
func (h *Handler) SubmitChangeRequest(c *gin.Context) {
	driverID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewUnauthorized("invalid token subject"))
		return
	}

	var req SubmitChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewValidation(err.Error()))
		return
	}

	cr, err := h.service.SubmitChangeRequest(c.Request.Context(), driverID, req)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cr)
}

func (h *Handler) ListChangeRequests(c *gin.Context) {
	adminID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewUnauthorized("invalid token subject"))
		return
	}

	requests, err := h.service.ListChangeRequests(c.Request.Context(), adminID, c.Query("status"))
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests, "count": len(requests)})
}

func (h *Handler) ResolveChangeRequest(c *gin.Context) {
	adminID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewUnauthorized("invalid token subject"))
		return
	}
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewValidation("invalid request id"))
		return
	}

	var req struct {
		Approve bool `json:"approve"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewValidation(err.Error()))
		return
	}

	if err := h.service.ResolveChangeRequest(c.Request.Context(), adminID, requestID, req.Approve); err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	status := ChangeRejected
	if req.Approve {
		status = ChangeApproved
	}
	c.JSON(http.StatusOK, gin.H{"id": requestID, "status": status})
}

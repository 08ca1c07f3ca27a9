package order

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

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewValidation(err.Error()))
		return
	}

	o, err := h.service.Create(c.Request.Context(), adminID, req)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *Handler) List(c *gin.Context) {
	adminID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewUnauthorized("invalid token subject"))
		return
	}

	orders, err := h.service.ListByAdmin(c.Request.Context(), adminID, Status(c.Query("status")))
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

func (h *Handler) Get(c *gin.Context) {
	adminID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewUnauthorized("invalid token subject"))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewValidation("invalid order id"))
		return
	}

	o, err := h.service.GetForAdmin(c.Request.Context(), id, adminID)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) Assign(c *gin.Context) {
	adminID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewUnauthorized("invalid token subject"))
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewValidation("invalid order id"))
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewValidation(err.Error()))
		return
	}

	o, err := h.service.Assign(c.Request.Context(), adminID, orderID, req)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// Worklist serves the driver app's order list, sorted in-progress first
// and nearest first within each status.
func (h *Handler) Worklist(c *gin.Context) {
	driverID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewUnauthorized("invalid token subject"))
		return
	}

	items, err := h.service.Worklist(c.Request.Context(), driverID)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": items, "count": len(items)})
}

func (h *Handler) Accept(c *gin.Context) {
	driverID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewUnauthorized("invalid token subject"))
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewValidation("invalid order id"))
		return
	}

	o, err := h.service.Accept(c.Request.Context(), driverID, orderID)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) Complete(c *gin.Context) {
	driverID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewUnauthorized("invalid token subject"))
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewValidation("invalid order id"))
		return
	}

	var req CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewValidation(err.Error()))
		return
	}

	o, err := h.service.Complete(c.Request.Context(), driverID, orderID, req)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

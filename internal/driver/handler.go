package driver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gasflow/internal/pkg/apperrors"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": err.Error()}})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Logout(c *gin.Context) {
	driverID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": "invalid driver id"}})
		return
	}

	if err := h.service.Logout(c.Request.Context(), driverID); err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Heartbeat(c *gin.Context) {
	var req HeartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": err.Error()}})
		return
	}

	driverID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": "invalid driver id"}})
		return
	}

	if err := h.service.Heartbeat(c.Request.Context(), driverID, *req.Lat, *req.Lng); err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Profile(c *gin.Context) {
	driverID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": "invalid driver id"}})
		return
	}

	d, err := h.service.GetByID(c.Request.Context(), driverID)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Create(c *gin.Context) {
	adminID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": "invalid admin id"}})
		return
	}

	var req CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": err.Error()}})
		return
	}

	d, err := h.service.Create(c.Request.Context(), adminID, req)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) List(c *gin.Context) {
	adminID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": "invalid admin id"}})
		return
	}

	drivers, err := h.service.ListByAdmin(c.Request.Context(), adminID)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drivers": drivers, "count": len(drivers)})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Get(c *gin.Context) {
	adminID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": "invalid admin id"}})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": "invalid driver id"}})
		return
	}

	d, err := h.service.GetForAdmin(c.Request.Context(), id, adminID)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Update(c *gin.Context) {
	adminID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": "invalid admin id"}})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": "invalid driver id"}})
		return
	}

	var req UpdateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": err.Error()}})
		return
	}

	d, err := h.service.Update(c.Request.Context(), id, adminID, req)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Delete(c *gin.Context) {
	adminID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": "invalid admin id"}})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": "invalid driver id"}})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, adminID); err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "driver deleted"})
}

package admin

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainerrors "gasflow/internal/errors"
	"gasflow/internal/localtime"
	"gasflow/internal/pkg/apperrors"
	"gasflow/internal/pkg/csvutil"
)

type Handler struct {
	service Service
	cal     localtime.Calendar
}

func NewHandler(service Service, cal localtime.Calendar) *Handler {
	return &Handler{service: service, cal: cal}
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) SignupRequest(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewValidation(err.Error()))
		return
	}

	if err := h.service.SignupRequest(c.Request.Context(), req); err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "verification code sent"})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) CompleteSignup(c *gin.Context) {
	var req CompleteSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewValidation(err.Error()))
		return
	}

	resp, err := h.service.CompleteSignup(c.Request.Context(), req)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewValidation(err.Error()))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewValidation(err.Error()))
		return
	}

	if err := h.service.SendOTP(c.Request.Context(), req); err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "reset code sent"})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewValidation(err.Error()))
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req); err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Dashboard(c *gin.Context) {
	adminID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewUnauthorized("invalid token subject"))
		return
	}

	dash, err := h.service.Dashboard(c.Request.Context(), adminID)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (h *Handler) parseRange(c *gin.Context) (time.Time, time.Time, error) {
	to := h.cal.Today()
	from := to.AddDate(0, 0, -29)

	if s := c.Query("from"); s != "" {
		d, err := h.cal.ParseDate(s)
		if err != nil {
			return time.Time{}, time.Time{}, domainerrors.NewValidation("from must be YYYY-MM-DD")
		}
		from = d
	}
	if s := c.Query("to"); s != "" {
		d, err := h.cal.ParseDate(s)
		if err != nil {
			return time.Time{}, time.Time{}, domainerrors.NewValidation("to must be YYYY-MM-DD")
		}
		to = d
	}
	return from, to, nil
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Report(c *gin.Context) {
	adminID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewUnauthorized("invalid token subject"))
		return
	}
	from, to, err := h.parseRange(c)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	report, err := h.service.DeliveryReport(c.Request.Context(), adminID, from, to)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// -------------------------------------------------------------------------------------------------
// ExportReportCSV streams the delivery report as a per-day CSV download.
func (h *Handler) ExportReportCSV(c *gin.Context) {
	adminID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewUnauthorized("invalid token subject"))
		return
	}
	from, to, err := h.parseRange(c)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	report, err := h.service.DeliveryReport(c.Request.Context(), adminID, from, to)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	days := make([]string, 0, len(report.ByDay))
	for day := range report.ByDay {
		days = append(days, day)
	}
	sort.Strings(days)

	rows := make([][]string, 0, len(days))
	for _, day := range days {
		rows = append(rows, []string{day, strconv.Itoa(report.ByDay[day])})
	}

	filename := fmt.Sprintf("deliveries_%s_%s.csv", report.From, report.To)
	csvutil.Write(c, filename, []string{"Date", "Delivered"}, rows)
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) TrackDriver(c *gin.Context) {
	adminID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewUnauthorized("invalid token subject"))
		return
	}
	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperrors.ToHTTPError(c, domainerrors.NewValidation("invalid driver id"))
		return
	}

	data, err := h.service.TrackDriver(c.Request.Context(), adminID, driverID)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

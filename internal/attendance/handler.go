package attendance

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gasflow/internal/driver"
	domainerrors "gasflow/internal/errors"
	"gasflow/internal/localtime"
	"gasflow/internal/pkg/apperrors"
	"gasflow/internal/pkg/csvutil"
)

type Handler struct {
	service Service
	drivers driver.Service
	cal     localtime.Calendar
}

func NewHandler(service Service, drivers driver.Service, cal localtime.Calendar) *Handler {
	return &Handler{service: service, drivers: drivers, cal: cal}
}

// parseRange reads from/to query dates, defaulting to the last 30 days.
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

// resolveDriver enforces that the driver in the path belongs to the
// calling admin before any attendance data is returned.
func (h *Handler) resolveDriver(c *gin.Context) (uuid.UUID, error) {
	adminID, err := uuid.Parse(c.GetString("sub"))
	if err != nil {
		return uuid.Nil, domainerrors.NewUnauthorized("invalid token subject")
	}
	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domainerrors.NewValidation("invalid driver id")
	}
	if _, err := h.drivers.GetForAdmin(c.Request.Context(), driverID, adminID); err != nil {
		return uuid.Nil, err
	}
	return driverID, nil
}

// Report serves the attendance table: frozen rows for past days, a live
// computation for today. Pass live=1 to recompute every day from the raw
// logs instead.
func (h *Handler) Report(c *gin.Context) {
	driverID, err := h.resolveDriver(c)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	from, to, err := h.parseRange(c)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	var report *Report
	if live, _ := strconv.ParseBool(c.Query("live")); live {
		report, err = h.service.DetailedMetrics(c.Request.Context(), driverID, from, to)
	} else {
		report, err = h.service.AuditTable(c.Request.Context(), driverID, from, to)
	}
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportCSV streams the same table as a CSV download.
func (h *Handler) ExportCSV(c *gin.Context) {
	driverID, err := h.resolveDriver(c)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}
	from, to, err := h.parseRange(c)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	report, err := h.service.AuditTable(c.Request.Context(), driverID, from, to)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	rows := make([][]string, 0, len(report.Days)+1)
	for _, d := range report.Days {
		rows = append(rows, []string{
			d.Date,
			csvutil.FormatTime(d.FirstActivity, h.cal),
			csvutil.FormatTime(d.LastActivity, h.cal),
			d.Duration,
			strconv.Itoa(d.Deliveries),
		})
	}

	filename := fmt.Sprintf("attendance_%s_%s_%s.csv", driverID, report.From, report.To)
	csvutil.Write(c, filename,
		[]string{"Date", "First Activity", "Last Activity", "Duration", "Deliveries"},
		rows)
}

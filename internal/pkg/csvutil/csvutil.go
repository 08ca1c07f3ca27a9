// Package csvutil renders tabular report downloads. Reports are small
// enough to buffer; the writer flushes once per request.
package csvutil

import (
	"encoding/csv"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gasflow/internal/localtime"
)

// Write sends a CSV attachment with the given header and rows.
func Write(c *gin.Context, filename string, header []string, rows [][]string) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(header)
	for _, row := range rows {
		_ = w.Write(row)
	}
	w.Flush()
}

// FormatTime renders a nullable UTC instant as local wall-clock time for
// report cells. Missing values render as a dash.
func FormatTime(t *time.Time, cal localtime.Calendar) string {
	if t == nil {
		return "-"
	}
	return cal.FormatClock(*t)
}

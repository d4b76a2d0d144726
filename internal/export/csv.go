// Package export renders work-hour entries for download.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yukikurage/ndt-worklog/internal/constants"
	"github.com/yukikurage/ndt-worklog/internal/models"
)

const ContentType = "text/csv; charset=utf-8"

var Header = []string{"Date", "Operator", "JobNumber", "JobName", "ActivityType", "RepairCompany", "HoursWorked", "Notes"}

// Row renders one entry in header column order.
func Row(e models.WorkHourEntry) []string {
	return []string{
		e.WorkDate.Format(constants.ExportDateLayout),
		e.OperatorName,
		e.JobNumber,
		e.JobName,
		string(e.ActivityType),
		e.RepairCompany,
		e.HoursWorked.StringFixed(2),
		e.Notes,
	}
}

// WriteCSV writes the header and one row per entry. Every field is quoted and
// rows are separated by a bare newline with none after the last row.
func WriteCSV(w io.Writer, entries []models.WorkHourEntry) error {
	if err := writeRecord(w, Header); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		if err := writeRecord(w, Row(e)); err != nil {
			return err
		}
	}
	return nil
}

// Filename is the attachment name for an export generated on day.
func Filename(day time.Time) string {
	return fmt.Sprintf("hours-export-%s.csv", day.Format(constants.DateLayout))
}

func writeRecord(w io.Writer, fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	_, err := io.WriteString(w, strings.Join(quoted, ","))
	return err
}

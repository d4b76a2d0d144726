package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/ndt-worklog/internal/models"
)

func sampleEntries() []models.WorkHourEntry {
	return []models.WorkHourEntry{
		{
			OperatorName:  "Mario Rossi",
			WorkDate:      time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC),
			JobNumber:     "J-100",
			JobName:       `Tank "A" MOD 93`,
			ActivityType:  models.ActivityNDEUT,
			RepairCompany: "Acme, S.p.A.",
			HoursWorked:   decimal.RequireFromString("7.5"),
			Notes:         "line one\nline two",
		},
		{
			OperatorName: "Luca Bianchi",
			WorkDate:     time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC),
			JobNumber:    "J-200",
			JobName:      "Hull",
			ActivityType: models.ActivityRepairInspWI,
			HoursWorked:  decimal.NewFromInt(9),
		},
	}
}

func TestWriteCSV_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleEntries()[1:]))

	want := `"Date","Operator","JobNumber","JobName","ActivityType","RepairCompany","HoursWorked","Notes"` + "\n" +
		`"31/12/2025","Luca Bianchi","J-200","Hull","RIP.ISPEZIONE WI","","9.00",""`
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.False(t, strings.HasSuffix(buf.String(), "\n"))
	assert.Equal(t, 8, strings.Count(buf.String(), `","`)+1)
}

func TestWriteCSV_ParsesBack(t *testing.T) {
	entries := sampleEntries()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, entries))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(entries)+1)

	assert.Equal(t, Header, records[0])
	for i, e := range entries {
		assert.Equal(t, Row(e), records[i+1])
	}
	assert.Equal(t, `Tank "A" MOD 93`, records[1][3])
	assert.Equal(t, "Acme, S.p.A.", records[1][5])
	assert.Equal(t, "04/03/2025", records[1][0])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "hours-export-2025-03-04.csv", Filename(time.Date(2025, time.March, 4, 15, 0, 0, 0, time.UTC)))
}

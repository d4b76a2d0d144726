package hours

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/ndt-worklog/internal/models"
)

type ActivityHours struct {
	ActivityType models.ActivityType `json:"activity_type"`
	Hours        decimal.Decimal     `json:"hours"`
}

type ModuleSummary struct {
	Key        string          `json:"key"`
	Activities []ActivityHours `json:"activities"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// Hours returns the hours logged for an activity type within the module.
func (m ModuleSummary) Hours(activity models.ActivityType) decimal.Decimal {
	for _, a := range m.Activities {
		if a.ActivityType == activity {
			return a.Hours
		}
	}
	return decimal.Zero
}

type JobSummary struct {
	JobNumber   string          `json:"job_number"`
	JobName     string          `json:"job_name"`
	DisplayName string          `json:"display_name"`
	Modules     []ModuleSummary `json:"modules"`
	TotalHours  decimal.Decimal `json:"total_hours"`
}

// Module looks a module up by key.
func (j JobSummary) Module(key string) (ModuleSummary, bool) {
	for _, m := range j.Modules {
		if m.Key == key {
			return m, true
		}
	}
	return ModuleSummary{}, false
}

type Summary struct {
	Jobs       []JobSummary    `json:"jobs"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Job looks a job up by job number.
func (s Summary) Job(jobNumber string) (JobSummary, bool) {
	for _, j := range s.Jobs {
		if j.JobNumber == jobNumber {
			return j, true
		}
	}
	return JobSummary{}, false
}

// DisplayJobName strips module tokens for titles. It falls back to the raw
// name, then to the job number.
func DisplayJobName(jobName, jobNumber string) string {
	if stripped := strings.Join(strings.Fields(models.StripModule(jobName)), " "); stripped != "" {
		return stripped
	}
	if jobName = strings.TrimSpace(jobName); jobName != "" {
		return jobName
	}
	return jobNumber
}

// BuildHoursSummary groups entries by job number, module and activity type,
// keeping first-occurrence order at every level.
func BuildHoursSummary(entries []models.WorkHourEntry) Summary {
	summary := Summary{Jobs: []JobSummary{}, GrandTotal: decimal.Zero}
	jobIndex := map[string]int{}

	for _, entry := range entries {
		ji, ok := jobIndex[entry.JobNumber]
		if !ok {
			name := entry.JobName
			if strings.TrimSpace(name) == "" {
				name = entry.JobNumber
			}
			summary.Jobs = append(summary.Jobs, JobSummary{
				JobNumber:   entry.JobNumber,
				JobName:     name,
				DisplayName: DisplayJobName(entry.JobName, entry.JobNumber),
				Modules:     []ModuleSummary{},
				TotalHours:  decimal.Zero,
			})
			ji = len(summary.Jobs) - 1
			jobIndex[entry.JobNumber] = ji
		}
		job := &summary.Jobs[ji]

		module := job.moduleFor(entry.Module())
		module.addActivity(entry.ActivityType, entry.HoursWorked)

		job.TotalHours = job.TotalHours.Add(entry.HoursWorked)
		summary.GrandTotal = summary.GrandTotal.Add(entry.HoursWorked)
	}

	return summary
}

func (j *JobSummary) moduleFor(key string) *ModuleSummary {
	for i := range j.Modules {
		if j.Modules[i].Key == key {
			return &j.Modules[i]
		}
	}
	j.Modules = append(j.Modules, ModuleSummary{Key: key, Activities: []ActivityHours{}, Subtotal: decimal.Zero})
	return &j.Modules[len(j.Modules)-1]
}

func (m *ModuleSummary) addActivity(activity models.ActivityType, h decimal.Decimal) {
	m.Subtotal = m.Subtotal.Add(h)
	for i := range m.Activities {
		if m.Activities[i].ActivityType == activity {
			m.Activities[i].Hours = m.Activities[i].Hours.Add(h)
			return
		}
	}
	m.Activities = append(m.Activities, ActivityHours{ActivityType: activity, Hours: h})
}

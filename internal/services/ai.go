package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
	"github.com/yukikurage/ndt-worklog/internal/constants"
	"github.com/yukikurage/ndt-worklog/internal/models"
)

var (
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoValidEntries       = errors.New("no valid entries could be drafted from the text")
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type AIService struct {
	client chatCompleter
}

// DraftEntry is a work-hour entry proposed from free text. It is never stored.
type DraftEntry struct {
	WorkDate      string              `json:"work_date"`
	JobNumber     string              `json:"job_number"`
	JobName       string              `json:"job_name"`
	ActivityType  models.ActivityType `json:"activity_type"`
	RepairCompany string              `json:"repair_company"`
	HoursWorked   decimal.Decimal     `json:"hours_worked"`
	Notes         string              `json:"notes"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// DraftEntriesFromText turns a free-text work log into draft entries. Drafts
// with an unknown activity type or out-of-range hours are dropped.
func (s *AIService) DraftEntriesFromText(ctx context.Context, text string, today time.Time) ([]DraftEntry, error) {
	if s == nil || s.client == nil {
		return nil, ErrAIServiceNotConfigured
	}

	activities := make([]string, len(models.ActivityTypes))
	for i, a := range models.ActivityTypes {
		activities[i] = fmt.Sprintf("%q", a)
	}

	prompt := fmt.Sprintf(`You extract NDT inspection work-hour entries from an inspector's notes.

Today is %s.

Notes:
%s

Return a JSON array of entries:
[
  {
    "work_date": "YYYY-MM-DD",
    "job_number": "job order number",
    "job_name": "job name, keeping any MOD <number> module token",
    "activity_type": one of [%s],
    "repair_company": "repair company or empty string",
    "hours_worked": number of hours, greater than 0 and at most %d,
    "notes": "short note"
  }
]

Rules:
- Resolve relative dates such as "yesterday" against today
- Return [] when the notes describe no work
- Return JSON only, with no explanation`, today.Format(constants.DateLayout), text, strings.Join(activities, ", "), constants.MaxHoursPerEntry)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.2,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimSuffix(strings.TrimPrefix(content, "```"), "```")

	var drafts []DraftEntry
	if err := json.Unmarshal([]byte(content), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	valid := make([]DraftEntry, 0, len(drafts))
	maxHours := decimal.NewFromInt(constants.MaxHoursPerEntry)
	for _, d := range drafts {
		if !d.ActivityType.Valid() || !d.HoursWorked.IsPositive() || d.HoursWorked.GreaterThan(maxHours) {
			continue
		}
		if strings.TrimSpace(d.JobNumber) == "" {
			continue
		}
		if _, err := time.Parse(constants.DateLayout, d.WorkDate); err != nil {
			d.WorkDate = today.Format(constants.DateLayout)
		}
		valid = append(valid, d)
	}

	if len(valid) == 0 {
		return nil, ErrAINoValidEntries
	}
	return valid, nil
}

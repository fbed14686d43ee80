package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/sponsor-deliverables-api/internal/constants"
	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
)

type AIService struct {
	client *openai.Client
}

// GeneratedDeliverable is a draft extracted from a sponsorship contract.
type GeneratedDeliverable struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DueDate     *time.Time      `json:"due_date"`
	Priority    models.Priority `json:"priority"`
}

// ContractContext is what the model is told about the contract.
type ContractContext struct {
	Text        string
	Today       time.Time
	CompanyName string
	EventDate   *time.Time
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// NewAIServiceWithConfig creates an AIService against a custom endpoint.
func NewAIServiceWithConfig(cfg openai.ClientConfig) *AIService {
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
	}
}

type rawDeliverable struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
	Priority    string  `json:"priority"`
}

// GenerateDeliverablesFromContract asks the model for the obligations in a contract
func (s *AIService) GenerateDeliverablesFromContract(ctx context.Context, in ContractContext) ([]GeneratedDeliverable, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	eventDate := "unknown"
	if in.EventDate != nil {
		eventDate = in.EventDate.Format(constants.DateLayout)
	}

	prompt := fmt.Sprintf(`You extract sponsor deliverables from sponsorship agreements.

Today: %s
Sponsor: %s
Event date: %s

Agreement:
%s

Return a JSON array of the deliverables the event organizer owes the sponsor:
[
  {
    "title": "short title",
    "description": "what has to be delivered",
    "due_date": "YYYY-MM-DD, or null when the agreement gives no deadline",
    "priority": "low | medium | high | critical"
  }
]

Rules:
- Return [] when there are no deliverables
- Resolve relative deadlines ("two weeks before the event") against the event date
- Return only JSON, no prose`, in.Today.Format(constants.DateLayout), in.CompanyName, eventDate, in.Text)

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

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var raw []rawDeliverable
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	out := make([]GeneratedDeliverable, 0, len(raw))
	for _, r := range raw {
		g := GeneratedDeliverable{
			Title:       strings.TrimSpace(r.Title),
			Description: strings.TrimSpace(r.Description),
			Priority:    models.Priority(strings.ToLower(strings.TrimSpace(r.Priority))),
		}
		if r.DueDate != nil {
			if due, err := time.Parse(constants.DateLayout, strings.TrimSpace(*r.DueDate)); err == nil {
				g.DueDate = &due
			}
		}
		out = append(out, g)
	}

	return out, nil
}

// stripCodeFence removes a markdown code fence the model sometimes wraps JSON in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

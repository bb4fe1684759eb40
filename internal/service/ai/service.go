package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/prepview/backend/internal/config"
	interviewModel "github.com/prepview/backend/internal/model/interview"
	interviewService "github.com/prepview/backend/internal/service/interview"
)

// Service implements the interview question capability and the scoring pass
// on top of a single compiled eino chain.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the AI capability backed by the configured chat model.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{chatModel: chatModel, cfg: cfg, chain: runnable}, nil
}

// AskNext generates the next interview question for the session.
func (s *Service) AskNext(ctx context.Context, in interviewService.NextQuestionInput) (string, error) {
	query := "Ask me the next interview question."
	if len(in.History) == 0 {
		query = "Begin the interview with your first question."
	}

	response, err := s.chain.Invoke(ctx, map[string]any{
		"system":  buildInterviewerPrompt(in),
		"history": historyMessages(in.History),
		"query":   query,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run question chain: %w", err)
	}

	log.Printf("[ai] generated question, position=%s remaining=%d length=%d",
		in.Position, in.Remaining, len(response.Content))
	return strings.TrimSpace(response.Content), nil
}

// Explain re-states a question in plain language. The core appends the
// acknowledgment trailer if the model drops it; the prompt asks for it so the
// usual path needs no patching.
func (s *Service) Explain(ctx context.Context, questionText string) (string, error) {
	response, err := s.chain.Invoke(ctx, map[string]any{
		"system": buildExplainPrompt(),
		"query":  questionText,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run explain chain: %w", err)
	}
	return strings.TrimSpace(response.Content), nil
}

// Close produces the closing statement for an exhausted interview.
func (s *Service) Close(ctx context.Context, history []interviewModel.Turn) (string, error) {
	response, err := s.chain.Invoke(ctx, map[string]any{
		"system":  buildClosingPrompt(),
		"history": historyMessages(history),
		"query":   "The question budget is spent. End the interview now.",
	})
	if err != nil {
		return "", fmt.Errorf("failed to run closing chain: %w", err)
	}
	return strings.TrimSpace(response.Content), nil
}

// Score runs the analysis pass over a finished transcript and parses the
// model's JSON verdict into a report.
func (s *Service) Score(ctx context.Context, job interviewService.ScoringJob) (interviewModel.Report, error) {
	response, err := s.chain.Invoke(ctx, map[string]any{
		"system": buildScoringPrompt(job),
		"query":  renderTranscript(job.History),
	})
	if err != nil {
		return interviewModel.Report{}, fmt.Errorf("failed to run scoring chain: %w", err)
	}

	report, err := parseReport(response.Content)
	if err != nil {
		return interviewModel.Report{}, fmt.Errorf("failed to parse scoring output: %w", err)
	}
	report.SessionID = job.SessionID

	log.Printf("[ai] scored session=%s questions=%d", job.SessionID, len(report.Feedback))
	return report, nil
}

// historyMessages maps transcript turns to schema messages, keeping only the
// most recent window so the prompt stays bounded.
func historyMessages(turns []interviewModel.Turn) []*schema.Message {
	const historyLimit = 10

	if len(turns) == 0 {
		return nil
	}

	startIdx := 0
	if len(turns) > historyLimit {
		startIdx = len(turns) - historyLimit
	}

	history := make([]*schema.Message, 0, len(turns)-startIdx)
	for _, turn := range turns[startIdx:] {
		switch turn.Role {
		case interviewModel.RoleUser:
			history = append(history, schema.UserMessage(turn.Content))
		case interviewModel.RoleAI:
			history = append(history, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return history
}

// renderTranscript flattens the full history for the scoring prompt. Unlike
// the chat window, scoring always sees every turn.
func renderTranscript(turns []interviewModel.Turn) string {
	var builder strings.Builder
	for _, turn := range turns {
		switch turn.Role {
		case interviewModel.RoleAI:
			builder.WriteString("Interviewer: ")
		case interviewModel.RoleUser:
			builder.WriteString("Candidate: ")
		}
		builder.WriteString(turn.Content)
		builder.WriteString("\n")
	}
	return builder.String()
}

package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	interviewModel "github.com/prepview/backend/internal/model/interview"
	interviewService "github.com/prepview/backend/internal/service/interview"
)

// resumeLimit bounds how much resume text reaches the prompt.
const resumeLimit = 4000

func buildInterviewerPrompt(in interviewService.NextQuestionInput) string {
	var builder strings.Builder

	builder.WriteString("You are a professional interviewer conducting a mock interview.\n\n")
	fmt.Fprintf(&builder, "Target position: %s\n", in.Position)
	if in.ExperienceLevel != "" {
		fmt.Fprintf(&builder, "Candidate experience level: %s\n", in.ExperienceLevel)
	}
	fmt.Fprintf(&builder, "Questions remaining in this interview: %d\n", in.Remaining)

	if resume := truncateRunes(in.ResumeText, resumeLimit); resume != "" {
		builder.WriteString("\nCandidate resume:\n")
		builder.WriteString(resume)
		builder.WriteString("\n")
	}

	switch in.Mode {
	case interviewModel.ModeHard:
		builder.WriteString("\nStyle: challenging. Probe weaknesses, follow up on vague answers, and expect precise technical depth.")
	default:
		builder.WriteString("\nStyle: guided. Be encouraging, keep questions focused, and build on the candidate's previous answers.")
	}

	builder.WriteString("\n\nAsk exactly one question relevant to the position and the resume. " +
		"Do not evaluate or comment on previous answers. Reply with the question only.")
	return builder.String()
}

func buildExplainPrompt() string {
	return "You are a professional interviewer. The candidate did not understand your last question. " +
		"Re-state the question below in plain language with a short example of what a good answer covers. " +
		"Do not answer the question for them and do not ask a new one. " +
		"End your reply with exactly: " + interviewService.ExplainTrailer
}

func buildClosingPrompt() string {
	return "You are a professional interviewer ending a mock interview. " +
		"Reply with a closing statement that begins with exactly \"" + interviewService.ClosingOpening + "\", " +
		"continues with one brief neutral pleasantry thanking the candidate for their time, " +
		"and ends with exactly \"" + interviewService.ClosingTrailer + "\". " +
		"Do not reference, summarize or score any specific answer."
}

func buildScoringPrompt(job interviewService.ScoringJob) string {
	var builder strings.Builder

	builder.WriteString("You are an expert interview coach reviewing a finished mock interview transcript.\n\n")
	fmt.Fprintf(&builder, "Position: %s\n", job.Position)
	if job.ExperienceLevel != "" {
		fmt.Fprintf(&builder, "Experience level: %s\n", job.ExperienceLevel)
	}
	if resume := truncateRunes(job.ResumeText, resumeLimit); resume != "" {
		builder.WriteString("\nResume:\n")
		builder.WriteString(resume)
		builder.WriteString("\n")
	}

	builder.WriteString(`
Rate every question/answer pair. Return ONLY a JSON object with this exact structure, no markdown:
{
  "feedback": [
    {"question": "<the question>", "answer": "<the answer>", "feedback": "<2-3 sentences>", "rating": <1-10>}
  ],
  "overallRating": "<one of: poor, fair, good, excellent>"
}`)
	return builder.String()
}

// parseReport extracts the JSON object from the model output, tolerating
// stray prose or code fences around it.
func parseReport(content string) (interviewModel.Report, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return interviewModel.Report{}, fmt.Errorf("no JSON object in model output")
	}

	var report interviewModel.Report
	if err := json.Unmarshal([]byte(content[start:end+1]), &report); err != nil {
		return interviewModel.Report{}, err
	}
	if report.OverallRating == "" {
		report.OverallRating = "fair"
	}
	return report, nil
}

// truncateRunes caps s at limit runes without splitting a multibyte rune.
func truncateRunes(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

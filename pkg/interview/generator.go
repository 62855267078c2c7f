package interview

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// systemInstruction constrains the generation capability to interviewer
// behavior: one question only, no repetition, professional tone.
const systemInstruction = `You are an expert technical interviewer conducting a software engineering interview.
Your task is to:
1. Ask relevant follow-up questions based on the candidate's previous answers
2. Dig deeper into technologies or experiences they mention
3. Assess their problem-solving abilities and technical knowledge
4. Keep questions professional and relevant to software development
5. Vary between questions about past experiences, technical knowledge, and problem-solving approaches
6. Don't repeat questions that have already been asked
7. Keep questions concise and clear

Respond with ONLY the next interview question. Do not include any explanations or additional text.`

// GenerationConfig carries the sampling parameters for the external
// generation capability. They are fixed by the engine and not exposed to
// end users.
type GenerationConfig struct {
	Temperature     float32
	TopK            float32
	TopP            float32
	MaxOutputTokens int32
}

// DefaultGenerationConfig returns the engine's fixed sampling parameters.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.7,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 200,
	}
}

// Capability is the external text-generation contract.
type Capability interface {
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
}

// Generator produces the next interview question. The AI path drives
// relevance; the fallback selector guarantees graceful degradation when the
// capability is unavailable, fails, times out, or returns empty text.
type Generator struct {
	capability Capability
	fallback   *Selector
	timeout    time.Duration
	logger     *slog.Logger
}

// NewGenerator creates a generator. capability may be nil, in which case
// every question comes from the fallback selector.
func NewGenerator(capability Capability, fallback *Selector, timeout time.Duration, logger *slog.Logger) *Generator {
	if fallback == nil {
		fallback = NewSelector()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		capability: capability,
		fallback:   fallback,
		timeout:    timeout,
		logger:     logger,
	}
}

// NextQuestion returns the next question given the session history and the
// candidate's latest answer. closing is true when the fallback bank is
// exhausted and the returned text is the closing remark. Generation failures
// never escape: they are recovered through the fallback path.
func (g *Generator) NextQuestion(ctx context.Context, history []Message, latestAnswer string) (text string, closing bool) {
	if g.capability != nil {
		genCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		generated, err := g.capability.Generate(genCtx, renderPrompt(history, latestAnswer), DefaultGenerationConfig())
		if err == nil {
			if trimmed := strings.TrimSpace(generated); trimmed != "" {
				return trimmed, false
			}
			err = errEmptyGeneration
		}
		g.logger.Warn("question generation failed, using fallback", "error", err)
	}

	return g.fallback.Next(QuestionContents(history), latestAnswer)
}

var errEmptyGeneration = errEmpty{}

type errEmpty struct{}

func (errEmpty) Error() string { return "generation capability returned empty text" }

// renderPrompt flattens the conversation oldest-first, labeling each turn by
// role, and ends with an open Interviewer cue for the model to complete.
func renderPrompt(history []Message, latestAnswer string) string {
	var b strings.Builder
	b.WriteString(systemInstruction)
	b.WriteString("\n\n")

	for _, msg := range history {
		role := "Candidate"
		if msg.Kind == KindQuestion {
			role = "Interviewer"
		}
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n\n")
	}

	if latestAnswer != "" {
		b.WriteString("Candidate: ")
		b.WriteString(latestAnswer)
		b.WriteString("\n\n")
	}
	b.WriteString("Interviewer:")
	return b.String()
}

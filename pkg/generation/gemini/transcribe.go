package gemini

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"github.com/mockmate/mockmate/pkg/core"
)

const transcribeInstruction = "Transcribe this audio recording. Respond with only the transcript text, nothing else."

// Transcribe converts a recorded answer to text. The audio is passed inline;
// recordings are short (a single spoken answer), well under inline limits.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", core.NewInvalidRequestError("audio is empty")
	}
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "audio/webm"
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(audio, mimeType),
			genai.NewPartFromText(transcribeInstruction),
		}, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", core.NewGenerationError("gemini transcribe", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

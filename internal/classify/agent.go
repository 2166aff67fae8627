package classify

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/caloric/internal/asset"
	"github.com/JaimeStill/caloric/pkg/invoke"
)

const agentPrompt = `You are a food recognition model. Identify the main food item in the image.

Respond with a JSON object matching this exact structure:

{
  "predictions": [
    {"label": "<food name>", "confidence": <number between 0 and 1>}
  ]
}

Constraints:
- At most 5 predictions, most likely first
- Labels are short, lower-case dish or ingredient names (e.g. "egg salad", "grilled chicken")
- Return an empty predictions array when no food is visible
- Always respond with valid JSON, no markdown fencing`

type agentClassifier struct {
	cfg    gaconfig.AgentConfig
	logger *slog.Logger
}

// NewAgent creates a Classifier that asks a vision-capable model to label
// the image. The image is sent inline as a base64 data URI.
func NewAgent(cfg gaconfig.AgentConfig, logger *slog.Logger) Classifier {
	return &agentClassifier{cfg: cfg, logger: logger}
}

func (c *agentClassifier) Classify(ctx context.Context, img asset.Image) (Result, error) {
	data, err := img.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", invoke.ErrProcessFailed, err)
	}

	a, err := agent.New(&c.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: create agent: %w", invoke.ErrProcessFailed, err)
	}

	resp, err := a.Vision(ctx, agentPrompt, []string{DataURI(data, img.ContentType)})
	if err != nil {
		return nil, fmt.Errorf("%w: vision call: %w", invoke.ErrProcessFailed, err)
	}

	content := resp.Content()
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: vision call returned no output", invoke.ErrProcessFailed)
	}

	return parseLogged(ctx, c.logger, []byte(content))
}

// DataURI encodes data as a base64 data URI. The declared content type is
// used when it names an image type; otherwise the type is sniffed from data.
func DataURI(data []byte, contentType string) string {
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}

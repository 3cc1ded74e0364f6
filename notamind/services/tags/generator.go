package tags

import (
	"context"
	"encoding/json"
	"notamind/notamind/config"
	httputils "notamind/notamind/utils/http"
	"notamind/notamind/utils/jsonutils"
	"notamind/notamind/utils/logging"
	"strings"

	"go.uber.org/zap"
)

// Sentinel tags stand in for a real tag list when generation cannot
// complete. Generate never fails; one of these is returned instead.
const (
	SentinelFetchError = "ErrorFetchingTags"
	SentinelParseError = "ErrorParsingTags"
	SentinelBadFormat  = "InvalidTagsFormat"
	SentinelNoTags     = "NoTagsGenerated"
)

const instruction = "Produce 3-5 relevant one-word tags for the following note. " +
	"Respond with a JSON array of strings only, no other text."

// Generator asks an OpenAI-compatible chat-completions endpoint for
// tags describing a piece of note text.
type Generator struct {
	baseURL string
	apiKey  string
	model   string
}

func NewGenerator(cfg config.Config) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(cfg.CompletionsEndpoint, "/"),
		apiKey:  cfg.CompletionsAPIKey,
		model:   cfg.CompletionsModel,
	}
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Generate is total: every failure mode of the completion service maps
// to a single-element sentinel list, so note persistence can always
// proceed with a usable tag set.
func (g *Generator) Generate(ctx context.Context, text string) []string {
	defer logging.LogDuration(ctx, "tag_generate")()

	req := chatRequest{
		Model: g.model,
		Messages: []message{
			{Role: "system", Content: instruction},
			{Role: "user", Content: text},
		},
	}

	raw, err := httputils.PostJSON(g.baseURL+"/chat/completions", g.apiKey, req)
	if err != nil {
		logging.ErrorLogger.Error("tag generation fetch failed", zap.Error(err))
		return []string{SentinelFetchError}
	}

	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil || len(resp.Choices) == 0 {
		logging.ErrorLogger.Error("tag generation envelope unreadable",
			zap.Error(err), zap.Int("choices", len(resp.Choices)))
		return []string{SentinelParseError}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return []string{SentinelBadFormat}
	}

	arr := jsonutils.ExtractArray(content)
	if !strings.HasPrefix(arr, "[") || !strings.HasSuffix(arr, "]") {
		return []string{SentinelBadFormat}
	}

	var generated []string
	if err := json.Unmarshal([]byte(arr), &generated); err != nil {
		return []string{SentinelBadFormat}
	}
	if len(generated) == 0 {
		return []string{SentinelNoTags}
	}
	return generated
}

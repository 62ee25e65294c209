// Package gemini turns collected raw material into the formatted digest via
// the Gemini API. The output must follow a strict Telegram-Markdown contract;
// conformance is checked after generation and reported as warnings.
package gemini

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/vioflow/ainews/internal/pipeerr"
)

type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, pipeerr.Classify(pipeerr.StageGeneration, err)
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Summarize produces the digest text for the given material. The provider
// error is classified here and never propagated raw: its payload can echo
// the API key.
func (c *Client) Summarize(ctx context.Context, m Material) (string, error) {
	if m.empty() {
		return "", pipeerr.New(pipeerr.StageGeneration, pipeerr.EmptyResult, "no search material to summarize")
	}

	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.5)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(BuildPrompt(m)))
	if err != nil {
		return "", pipeerr.Classify(pipeerr.StageGeneration, err)
	}

	text := responseText(resp)
	if text == "" {
		return "", pipeerr.New(pipeerr.StageGeneration, pipeerr.EmptyResult, "model returned an empty response")
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}

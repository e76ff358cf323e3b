package assist

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	openai "github.com/sashabaranov/go-openai"
)

type openAIProvider struct {
	client    *openai.Client
	model     string
	maxTokens int
	maxChars  int
}

func newOpenAI(cfg *Config) *openAIProvider {
	return &openAIProvider{
		client:    openai.NewClient(cfg.APIKey),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		maxChars:  cfg.MaxDocumentChars,
	}
}

func (p *openAIProvider) Name() string { return ProviderOpenAI }

// Complete inlines the PDF text layer, since chat completions take text only.
func (p *openAIProvider) Complete(ctx context.Context, pr Prompt) (string, error) {
	text := pr.Text
	if len(pr.PDF) > 0 {
		doc, err := extractText(pr.PDF, p.maxChars)
		if err != nil {
			return "", err
		}
		text = "<document>\n" + doc + "\n</document>\n\n" + text
	}

	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if pr.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: pr.System})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: text})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		Messages:  msgs,
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// extractText reads the PDF text layer, truncated to maxChars when positive.
func extractText(data []byte, maxChars int) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: read pdf: %v", ErrInvalidInput, err)
	}

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		fmt.Fprintf(&buf, "[page %d]\n%s\n", i, text)
		if maxChars > 0 && buf.Len() >= maxChars {
			break
		}
	}

	out := buf.String()
	if maxChars > 0 && len(out) > maxChars {
		out = strings.ToValidUTF8(out[:maxChars], "")
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("%w: document has no text layer", ErrInvalidInput)
	}
	return out, nil
}

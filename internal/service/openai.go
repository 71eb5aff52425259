package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/msomdec/outreach/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are an expert in B2B prospecting and copywriting. " +
	"Write short, punchy, personalised messages."

// LLMGenerator writes drafts with an OpenAI chat completion.
type LLMGenerator struct {
	client *openai.Client
	model  string
}

// NewLLMGenerator creates an LLMGenerator. baseURL may be empty to use the
// public API.
func NewLLMGenerator(apiKey, model, baseURL string) *LLMGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &LLMGenerator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (g *LLMGenerator) Generate(ctx context.Context, req DraftRequest) (*Draft, error) {
	req, err := req.normalize()
	if err != nil {
		return nil, err
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(req)},
		},
		Temperature: 0.7,
		MaxTokens:   400,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: chat completion: %v", domain.ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: chat completion returned no choices", domain.ErrUpstream)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: chat completion returned no content", domain.ErrUpstream)
	}

	return &Draft{
		Content:    content,
		Source:     domain.GeneratedByAI,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

func buildPrompt(req DraftRequest) string {
	var b strings.Builder
	b.WriteString("Write a short, punchy prospecting message for:\n")
	fmt.Fprintf(&b, "- Contact: %s\n", req.Name)
	fmt.Fprintf(&b, "- Company: %s\n", req.Company)
	fmt.Fprintf(&b, "- Objective: %s\n", req.Objective)
	fmt.Fprintf(&b, "- Tone: %s\n", req.Tone)
	if len(req.Highlights) > 0 {
		fmt.Fprintf(&b, "- Key points: %s\n", strings.Join(req.Highlights, ", "))
	}
	if c := strings.TrimSpace(req.Context); c != "" {
		fmt.Fprintf(&b, "- Context: %s\n", c)
	}
	b.WriteString("\nThe message must be short (2-3 paragraphs at most), personal rather than automated, ")
	b.WriteString("and end with a clear call to action.\n\nReturn only the message, without explanations.")
	return b.String()
}

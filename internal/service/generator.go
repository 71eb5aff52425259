package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/msomdec/outreach/internal/domain"
)

// Defaults applied when a draft request leaves tone or objective blank.
const (
	DefaultTone      = "Professional and friendly"
	DefaultObjective = "Book a meeting"
)

// DraftRequest describes the prospect a draft is written for.
type DraftRequest struct {
	Name       string
	Company    string
	Tone       string
	Objective  string
	Highlights []string
	Context    string
}

func (r DraftRequest) normalize() (DraftRequest, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Company = strings.TrimSpace(r.Company)
	if r.Name == "" || r.Company == "" {
		return r, fmt.Errorf("%w: name and company are required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(r.Tone) == "" {
		r.Tone = DefaultTone
	}
	if strings.TrimSpace(r.Objective) == "" {
		r.Objective = DefaultObjective
	}
	return r, nil
}

// Draft is generated message text plus where it came from.
type Draft struct {
	Content     string
	Source      string // domain.GeneratedByAI or domain.GeneratedByTemplate
	TokensUsed  int
	FallbackErr error // set when the LLM failed and a template was used instead
}

// Generator produces a draft for a prospect.
type Generator interface {
	Generate(ctx context.Context, req DraftRequest) (*Draft, error)
}

var draftTemplates = []string{
	`Hi {name}, I hope you're doing well!

I'm reaching out because I came across your work at {company}, and I think there's room to go further on content creation.
We already help a number of founders shape the strategy that brings in new customers.

Would you have time for a quick call this week?`,

	`Hi {name},

I came across your content and I think it has real potential.
I work with people like you on video editing and strategy, aiming for concrete results rather than just views.

We've partnered with several creators, and it could be a good fit for what you're doing at {company}.
Shall we talk about it?`,

	`Hello {name},

I specialise in supporting B2B teams.
We already help companies like {company} structure their content and speed up their customer acquisition.

Would you be free this week for a short call?`,
}

// TemplateGenerator fills one of a fixed set of templates, chosen at random.
type TemplateGenerator struct {
	pick func(n int) int
}

// NewTemplateGenerator creates a TemplateGenerator. A nil rng uses the
// global source.
func NewTemplateGenerator(rng *rand.Rand) *TemplateGenerator {
	pick := rand.IntN
	if rng != nil {
		pick = rng.IntN
	}
	return &TemplateGenerator{pick: pick}
}

func (g *TemplateGenerator) Generate(_ context.Context, req DraftRequest) (*Draft, error) {
	req, err := req.normalize()
	if err != nil {
		return nil, err
	}

	tmpl := draftTemplates[g.pick(len(draftTemplates))]
	content := strings.NewReplacer("{name}", req.Name, "{company}", req.Company).Replace(tmpl)
	return &Draft{Content: content, Source: domain.GeneratedByTemplate}, nil
}

// FallbackGenerator tries primary and, on any error other than invalid
// input, returns the fallback's draft with FallbackErr set.
type FallbackGenerator struct {
	primary  Generator
	fallback Generator
}

// NewFallbackGenerator creates a FallbackGenerator.
func NewFallbackGenerator(primary, fallback Generator) *FallbackGenerator {
	return &FallbackGenerator{primary: primary, fallback: fallback}
}

func (g *FallbackGenerator) Generate(ctx context.Context, req DraftRequest) (*Draft, error) {
	draft, err := g.primary.Generate(ctx, req)
	if err == nil {
		return draft, nil
	}
	if _, invalid := req.normalize(); invalid != nil {
		return nil, invalid
	}

	slog.Warn("llm generation failed, falling back to template", "error", err)
	draft, fbErr := g.fallback.Generate(ctx, req)
	if fbErr != nil {
		return nil, fmt.Errorf("fallback generation: %w", fbErr)
	}
	draft.FallbackErr = err
	return draft, nil
}

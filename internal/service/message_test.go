package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/outreach/internal/domain"
	"github.com/msomdec/outreach/internal/repository/memory"
	"github.com/msomdec/outreach/internal/service"
)

type observed struct {
	source   string
	fallback bool
}

func newTestMessageService(t *testing.T, llm service.Generator) (*service.MessageService, *memory.Store, *[]observed) {
	t.Helper()
	store := memory.New()
	svc := service.NewMessageService(store.Messages(), store.AICalls(), service.NewTemplateGenerator(nil), llm)
	var seen []observed
	svc.SetObserver(func(source string, fallback bool) {
		seen = append(seen, observed{source, fallback})
	})
	return svc, store, &seen
}

func TestMessageService_Generate_TemplateOnly(t *testing.T) {
	svc, store, seen := newTestMessageService(t, nil)
	ctx := context.Background()

	msg, err := svc.Generate(ctx, "u1", service.DraftRequest{Name: "Ada", Company: "Acme"}, true)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if msg.GeneratedBy != domain.GeneratedByTemplate {
		t.Fatalf("expected template source without an LLM, got %q", msg.GeneratedBy)
	}
	if msg.Tone != service.DefaultTone || msg.Objective != service.DefaultObjective {
		t.Fatalf("expected default tone and objective, got %q / %q", msg.Tone, msg.Objective)
	}
	if store.AICallCount() != 0 {
		t.Fatal("no AI call should be logged when the LLM is not configured")
	}
	if len(*seen) != 1 || (*seen)[0].source != domain.GeneratedByTemplate {
		t.Fatalf("unexpected observations: %+v", *seen)
	}
}

func TestMessageService_Generate_AISuccess(t *testing.T) {
	srv := newFakeOpenAI(t, "Hello from the model", nil)
	svc, store, _ := newTestMessageService(t, service.NewLLMGenerator("sk", "gpt-3.5-turbo", srv.URL+"/v1"))
	ctx := context.Background()

	msg, err := svc.Generate(ctx, "u1", service.DraftRequest{Name: "Ada", Company: "Acme", Tone: "casual"}, true)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if msg.GeneratedBy != domain.GeneratedByAI || msg.Content != "Hello from the model" || msg.Tone != "casual" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if store.AICallCount() != 1 {
		t.Fatalf("expected one AI call logged, got %d", store.AICallCount())
	}

	saved, err := svc.Get(ctx, "u1", msg.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if saved.Content != msg.Content {
		t.Fatal("generated message was not saved")
	}
}

func TestMessageService_Generate_AIFallbackRecordsActualSource(t *testing.T) {
	srv := newFakeOpenAI(t, "", nil)
	svc, store, seen := newTestMessageService(t, service.NewLLMGenerator("sk", "gpt-3.5-turbo", srv.URL+"/v1"))

	msg, err := svc.Generate(context.Background(), "u1", service.DraftRequest{Name: "Ada", Company: "Acme"}, true)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if msg.GeneratedBy != domain.GeneratedByTemplate {
		t.Fatalf("expected template source after fallback, got %q", msg.GeneratedBy)
	}
	if store.AICallCount() != 1 {
		t.Fatalf("expected fallback to be logged, got %d calls", store.AICallCount())
	}
	if len(*seen) != 1 || !(*seen)[0].fallback {
		t.Fatalf("expected fallback observation, got %+v", *seen)
	}
}

func TestMessageService_Generate_UseAIFalse(t *testing.T) {
	srv := newFakeOpenAI(t, "should not be used", nil)
	svc, store, _ := newTestMessageService(t, service.NewLLMGenerator("sk", "gpt-3.5-turbo", srv.URL+"/v1"))

	msg, err := svc.Generate(context.Background(), "u1", service.DraftRequest{Name: "Ada", Company: "Acme"}, false)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if msg.GeneratedBy != domain.GeneratedByTemplate || store.AICallCount() != 0 {
		t.Fatalf("expected template without AI logging, got %q and %d calls", msg.GeneratedBy, store.AICallCount())
	}
}

func TestMessageService_Generate_InvalidInput(t *testing.T) {
	svc, _, _ := newTestMessageService(t, nil)
	if _, err := svc.Generate(context.Background(), "u1", service.DraftRequest{Name: "Ada"}, false); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMessageService_Ownership(t *testing.T) {
	svc, _, _ := newTestMessageService(t, nil)
	ctx := context.Background()

	msg, err := svc.Generate(ctx, "owner", service.DraftRequest{Name: "Ada", Company: "Acme"}, false)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := svc.Get(ctx, "other", msg.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Get(ctx, "owner", "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	content := "Edited"
	if _, err := svc.Update(ctx, "other", msg.ID, service.MessageUpdate{Content: &content}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on update, got %v", err)
	}
	updated, err := svc.Update(ctx, "owner", msg.ID, service.MessageUpdate{Content: &content})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Content != "Edited" || updated.Tone != service.DefaultTone {
		t.Fatalf("unexpected update: %+v", updated)
	}

	if err := svc.Delete(ctx, "other", msg.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting another user's message, got %v", err)
	}
	if err := svc.Delete(ctx, "owner", msg.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestMessageService_ListSearchStats(t *testing.T) {
	svc, _, _ := newTestMessageService(t, nil)
	ctx := context.Background()

	for _, company := range []string{"Acme", "Globex", "Initech"} {
		if _, err := svc.Generate(ctx, "u1", service.DraftRequest{Name: "Ada", Company: company}, false); err != nil {
			t.Fatalf("Generate: %v", err)
		}
	}
	if _, err := svc.SaveSent(ctx, "u1", "u1@example.com", service.SentDraft{ContactName: "Bob", Company: "Hooli", Content: "Sent by hand"}); err != nil {
		t.Fatalf("SaveSent: %v", err)
	}

	list, err := svc.List(ctx, "u1", 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(list))
	}
	if list[0].Content != "Sent by hand" {
		t.Fatalf("expected newest message first, got %q", list[0].Content)
	}

	found, err := svc.Search(ctx, "u1", "globex", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 match, got %d", len(found))
	}
	if _, err := svc.Search(ctx, "u1", "  ", 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank term, got %v", err)
	}

	stats, err := svc.Stats(ctx, "u1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 4 || stats.Template != 4 || stats.AI != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestMessageService_SaveSent_RequiresFields(t *testing.T) {
	svc, _, _ := newTestMessageService(t, nil)
	_, err := svc.SaveSent(context.Background(), "u1", "u1@example.com", service.SentDraft{ContactName: "Bob", Content: "x"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

package view_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/msomdec/outreach/internal/domain"
	"github.com/msomdec/outreach/internal/view"
)

func TestMessageItem_EscapesContent(t *testing.T) {
	var b strings.Builder
	m := domain.Message{ID: "m1", Content: `<script>alert("x")</script>`, GeneratedBy: domain.GeneratedByAI, CreatedAt: time.Now()}
	if err := view.MessageItem(m).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := b.String()
	if strings.Contains(out, "<script>") {
		t.Fatalf("content was not escaped: %s", out)
	}
	if !strings.Contains(out, `id="message-m1"`) || !strings.Contains(out, "AI") {
		t.Fatalf("unexpected markup: %s", out)
	}
}

func TestAppPage(t *testing.T) {
	var b strings.Builder
	data := view.AppPageData{
		Email:     "a@b.com",
		AIEnabled: true,
		Stats:     domain.MessageStats{Total: 1, Template: 1},
		Contacts:  []domain.Contact{{ID: "c1", Name: "Bob", Email: "bob@corp.io"}},
		Messages:  []domain.Message{{ID: "m1", Content: "Hello", GeneratedBy: domain.GeneratedByTemplate}},
	}
	if err := view.AppPage(data).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := b.String()
	for _, want := range []string{`id="draft"`, `id="message-list"`, `id="contact-c1"`, "@post('/app/generate'", `name="useAI"`, "a@b.com"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in page", want)
		}
	}
}

func TestLoginPage_ShowsError(t *testing.T) {
	var b strings.Builder
	if err := view.LoginPage("Invalid email or password.", "").Render(context.Background(), &b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(b.String(), "Invalid email or password.") {
		t.Fatal("expected error message on page")
	}
}

func TestDraftError_Escapes(t *testing.T) {
	var b strings.Builder
	if err := view.DraftError(`<b>bad</b>`).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(b.String(), "<b>") || !strings.Contains(b.String(), `role="alert"`) {
		t.Fatalf("unexpected markup: %s", b.String())
	}
}

func TestDraftFragment_MarksFallback(t *testing.T) {
	m := domain.Message{ID: "m2", Content: "Hi Ada", GeneratedBy: domain.GeneratedByTemplate}

	var b strings.Builder
	if err := view.DraftFragment(m, true).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(b.String(), "Template") || !strings.Contains(b.String(), "AI unavailable") {
		t.Fatalf("unexpected markup: %s", b.String())
	}

	b.Reset()
	if err := view.DraftFragment(m, false).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(b.String(), "AI unavailable") {
		t.Fatalf("fallback marker without a fallback: %s", b.String())
	}
}

func TestContactRow_DeleteAction(t *testing.T) {
	var b strings.Builder
	if err := view.ContactRow(domain.Contact{ID: "c9", Name: "Joan"}).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, `id="contact-c9"`) || !strings.Contains(out, "/app/contacts/c9") {
		t.Fatalf("unexpected markup: %s", out)
	}
	if strings.Contains(out, "<span>") {
		t.Fatalf("expected no email span for a contact without email: %s", out)
	}
}

func TestHomePage_Layout(t *testing.T) {
	var b strings.Builder
	if err := view.HomePage("").Render(context.Background(), &b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := b.String()
	for _, want := range []string{"<!doctype html>", "<title>Home · Outreach</title>", "datastar.js", `href="/login"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in page:\n%s", want, out)
		}
	}
}

package mistral

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeChat struct {
	resp     *llms.ContentResponse
	err      error
	messages []llms.MessageContent
	options  int
}

func (f *fakeChat) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	f.options = len(options)
	return f.resp, f.err
}

func reply(content string) *llms.ContentResponse {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: content}}}
}

func TestOracleScore(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	chat := &fakeChat{resp: reply("  {\"score\": 72, \"explanation\": \"Bon profil\"}  ")}
	oracle := newOracle(chat, DefaultModel, 0, 0, zap.New(core))

	raw, err := oracle.Score(context.Background(), "Compétences: SEO", "campagne SEO")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw != `{"score": 72, "explanation": "Bon profil"}` {
		t.Fatalf("unexpected raw response: %q", raw)
	}

	if len(chat.messages) != 1 || chat.messages[0].Role != llms.ChatMessageTypeHuman {
		t.Fatalf("expected a single human message, got %+v", chat.messages)
	}
	part, ok := chat.messages[0].Parts[0].(llms.TextContent)
	if !ok || !strings.Contains(part.Text, "campagne SEO") {
		t.Fatalf("expected prompt to embed query, got %+v", chat.messages[0].Parts[0])
	}
	if chat.options != 2 {
		t.Fatalf("expected temperature and json mode options, got %d", chat.options)
	}

	entries := observed.FilterMessage("mistral chat response").All()
	if len(entries) != 1 {
		t.Fatalf("expected response debug log, got %d", len(entries))
	}
	if entries[0].ContextMap()["oracle"] != Name {
		t.Fatalf("expected oracle field, got %v", entries[0].ContextMap())
	}

	if oracle.Name() != Name || oracle.Model() != DefaultModel {
		t.Fatalf("unexpected description %q %q", oracle.Name(), oracle.Model())
	}
}

func TestOracleScoreErrors(t *testing.T) {
	tests := []struct {
		name string
		chat *fakeChat
	}{
		{name: "transport", chat: &fakeChat{err: errors.New("connection reset")}},
		{name: "no choices", chat: &fakeChat{resp: &llms.ContentResponse{}}},
		{name: "nil response", chat: &fakeChat{}},
		{name: "blank content", chat: &fakeChat{resp: reply("   ")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := newOracle(tt.chat, DefaultModel, 0, 0, nil)
			if _, err := oracle.Score(context.Background(), "profil", "requête"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewOracleRequiresKey(t *testing.T) {
	if _, err := NewOracle(Config{}, nil); err == nil {
		t.Fatal("expected error without api key")
	}

	oracle, err := NewOracle(Config{APIKey: "secret"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if oracle.Model() != DefaultModel {
		t.Fatalf("expected default model, got %q", oracle.Model())
	}
}

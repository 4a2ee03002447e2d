package bank

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ashwch/etherea/internal/emotion"
)

const sampleBank = `{
  "intents": {
    "zeta": {"patterns": ["hello"], "responses": ["zeta wins"], "emotion": {"mood": "calm", "intensity": 0.4}},
    "alpha": {"patterns": ["hello"], "responses": ["alpha wins"], "emotion": {"mood": "hype", "intensity": 0.9}},
    "urgent": {"patterns": ["^help"], "responses": ["on it"], "emotion": {"mood": "stressed", "intensity": 0.7}, "priority": 5},
    "default": {"patterns": [".*"], "responses": ["fallback"], "emotion": {"mood": "curious", "intensity": 0.5}}
  },
  "microLines": {"hype": ["Let's go."]}
}`

func TestBuiltinBankIsValid(t *testing.T) {
	b := Builtin()
	if b.Source() != SourceBuiltin {
		t.Fatalf("expected builtin source, got %q", b.Source())
	}
	if got := b.Match("HELLO"); got.ID != "greeting" {
		t.Fatalf("expected greeting intent, got %q", got.ID)
	}
	if got := b.Match("something else"); got.ID != DefaultIntentID {
		t.Fatalf("expected default intent, got %q", got.ID)
	}
	for _, mood := range emotion.Moods() {
		if len(b.MicroLines(mood)) == 0 {
			t.Fatalf("expected micro lines for %s", mood)
		}
	}
}

func TestMatchOrderIsPriorityThenID(t *testing.T) {
	b, err := Parse([]byte(sampleBank), FormatJSON, "test")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	var ids []string
	for _, intent := range b.Intents() {
		ids = append(ids, intent.ID)
	}
	if strings.Join(ids, ",") != "urgent,alpha,zeta,default" {
		t.Fatalf("unexpected order: %v", ids)
	}
	if got := b.Match("well hello there"); got.ID != "alpha" {
		t.Fatalf("expected alpha to win the tie, got %q", got.ID)
	}
	if got := b.Match("Help me"); got.ID != "urgent" {
		t.Fatalf("expected urgent, got %q", got.ID)
	}
}

func TestParseYAML(t *testing.T) {
	payload := `
intents:
  thanks:
    patterns: ["thank(s| you)"]
    responses: ["Any time."]
    emotion: {mood: care, intensity: 0.6}
  default:
    patterns: [".*"]
    responses: ["Go on."]
    emotion: {mood: calm, intensity: 0.5}
microLines:
  care: ["I am with you."]
`
	b, err := Parse([]byte(payload), FormatYAML, "yaml")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := b.Match("Thank you!"); got.ID != "thanks" || got.Emotion.Mood != emotion.MoodCare {
		t.Fatalf("unexpected match: %#v", got)
	}
}

func TestParseRejectsInvalidBanks(t *testing.T) {
	cases := map[string]string{
		"no default":      `{"intents": {"a": {"patterns": ["x"], "responses": ["y"], "emotion": {"mood": "calm", "intensity": 0.5}}}}`,
		"empty responses": `{"intents": {"default": {"patterns": [".*"], "responses": [], "emotion": {"mood": "calm", "intensity": 0.5}}}}`,
		"no patterns":     `{"intents": {"default": {"patterns": [], "responses": ["y"], "emotion": {"mood": "calm", "intensity": 0.5}}}}`,
		"unknown mood":    `{"intents": {"default": {"patterns": [".*"], "responses": ["y"], "emotion": {"mood": "angry", "intensity": 0.5}}}}`,
		"missing emotion": `{"intents": {"default": {"patterns": [".*"], "responses": ["y"]}}}`,
		"bad regex":       `{"intents": {"default": {"patterns": ["(unclosed"], "responses": ["y"], "emotion": {"mood": "calm", "intensity": 0.5}}}}`,
		"not json":        `{intents`,
	}
	for name, payload := range cases {
		if _, err := Parse([]byte(payload), FormatJSON, "test"); err == nil {
			t.Fatalf("%s: expected parse error", name)
		}
	}
}

func TestFormatForPath(t *testing.T) {
	if FormatForPath("bank.YML") != FormatYAML || FormatForPath("bank.json") != FormatJSON || FormatForPath("bank") != FormatJSON {
		t.Fatalf("unexpected format detection")
	}
}

func TestProviderMemoizesOneLoad(t *testing.T) {
	var calls atomic.Int32
	loader := LoaderFunc(func(context.Context) (*Bank, error) {
		calls.Add(1)
		return Parse([]byte(sampleBank), FormatJSON, "counted")
	})
	p := NewProvider(loader)
	for i := 0; i < 3; i++ {
		if got := p.Source(context.Background()); got != "counted" {
			t.Fatalf("unexpected source %q", got)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one load, got %d", calls.Load())
	}
}

func TestProviderFallsBackOnceOnFailure(t *testing.T) {
	var calls atomic.Int32
	loader := LoaderFunc(func(context.Context) (*Bank, error) {
		calls.Add(1)
		return nil, errors.New("offline")
	})
	p := NewProvider(loader)
	if got := p.Source(context.Background()); got != SourceBuiltin {
		t.Fatalf("expected builtin fallback, got %q", got)
	}
	p.Get(context.Background())
	if calls.Load() != 1 {
		t.Fatalf("fallback must be cached, got %d loads", calls.Load())
	}
	if err := p.LoadError(context.Background()); err == nil || !strings.Contains(err.Error(), "offline") {
		t.Fatalf("expected load error to be kept, got %v", err)
	}
}

func TestProviderIgnoresFirstCallerCancellation(t *testing.T) {
	loader := LoaderFunc(func(ctx context.Context) (*Bank, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return Parse(fallbackBankJSON, FormatJSON, "file:custom.json")
	})
	p := NewProvider(loader)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := p.Source(ctx); got != "file:custom.json" {
		t.Fatalf("cancelled first caller pinned %q", got)
	}
	if err := p.LoadError(context.Background()); err != nil {
		t.Fatalf("unexpected load error %v", err)
	}
}

func TestProviderRecoversLoaderPanic(t *testing.T) {
	p := NewProvider(LoaderFunc(func(context.Context) (*Bank, error) { panic("boom") }))
	if got := p.Source(context.Background()); got != SourceBuiltin {
		t.Fatalf("expected builtin after panic, got %q", got)
	}
}

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	if err := os.WriteFile(path, []byte(sampleBank), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	b, err := FileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if b.Source() != "file:"+path {
		t.Fatalf("unexpected source %q", b.Source())
	}
	if _, err := FileLoader(filepath.Join(t.TempDir(), "missing.json")).Load(context.Background()); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestURLLoader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/brain.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleBank))
	}))
	defer server.Close()

	b, err := URLLoader(server.URL+"/brain.json", server.Client()).Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got := b.Match("hello"); got.ID != "alpha" {
		t.Fatalf("unexpected intent %q", got.ID)
	}
	if _, err := URLLoader(server.URL+"/missing", server.Client()).Load(context.Background()); err == nil {
		t.Fatalf("expected non-2xx to fail")
	}
}

func TestChainLoaderFirstSuccessWins(t *testing.T) {
	failing := LoaderFunc(func(context.Context) (*Bank, error) { return nil, errors.New("first down") })
	good := LoaderFunc(func(context.Context) (*Bank, error) { return Parse([]byte(sampleBank), FormatJSON, "second") })
	b, err := ChainLoader(failing, good).Load(context.Background())
	if err != nil || b.Source() != "second" {
		t.Fatalf("expected second loader, got %v err=%v", b, err)
	}

	_, err = ChainLoader(failing, failing).Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "first down") {
		t.Fatalf("expected combined error, got %v", err)
	}
}

func TestLoaderForHonorsEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.json")
	if err := os.WriteFile(path, []byte(sampleBank), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	t.Setenv(EnvBankFile, path)
	loader := LoaderFor(Sources{File: filepath.Join(t.TempDir(), "missing.json")})
	b, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if b.Source() != "file:"+path {
		t.Fatalf("expected override file, got %q", b.Source())
	}

	t.Setenv(EnvBankFile, "")
	if LoaderFor(Sources{}) != nil {
		t.Fatalf("expected nil loader when nothing is configured")
	}
}

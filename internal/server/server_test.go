package server

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"log/slog"

	"github.com/goccy/go-json"

	"github.com/kapu/youtube-tracker-bot-go/internal/command"
)

type stubGuilds struct{ ids []string }

func (s *stubGuilds) ListGuildIDs(context.Context) ([]string, error) { return s.ids, nil }

type stubQuota struct{}

func (stubQuota) GetQuotaStatus() (int, int, time.Time) { return 120, 9380, time.Now() }

type echoCommand struct{}

func (echoCommand) Name() string        { return "echo" }
func (echoCommand) Description() string { return "echo" }
func (echoCommand) Execute(_ context.Context, cmdCtx *command.Context, opts command.Options) (string, error) {
	return "guild=" + cmdCtx.GuildID + " video=" + opts.Get("video"), nil
}

func newTestServer(t *testing.T) (*Server, ed25519.PrivateKey) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := command.NewRegistry(logger)
	registry.Register(echoCommand{})

	srv, err := NewServer(Config{
		Port:      0,
		PublicKey: hex.EncodeToString(pub),
	}, registry, &stubGuilds{ids: []string{"g1", "g2"}}, stubQuota{}, logger)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, priv
}

func signedRequest(t *testing.T, priv ed25519.PrivateKey, body []byte) *http.Request {
	t.Helper()

	timestamp := "1700000000"
	message := append([]byte(timestamp), body...)
	sig := ed25519.Sign(priv, message)

	req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature-Ed25519", hex.EncodeToString(sig))
	req.Header.Set("X-Signature-Timestamp", timestamp)
	return req
}

func TestKeepaliveIncludesGuildCount(t *testing.T) {
	srv, _ := newTestServer(t)

	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}

	var resp struct {
		Status string `json:"status"`
		Guilds int    `json:"guilds"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" || resp.Guilds != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestQuotaStatusEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/quota", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}

	var resp struct {
		Used      int `json:"used"`
		Remaining int `json:"remaining"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Used != 120 || resp.Remaining != 9380 {
		t.Fatalf("unexpected quota payload: %+v", resp)
	}
}

func TestInteractionsPingPong(t *testing.T) {
	srv, priv := newTestServer(t)

	body := []byte(`{"type":1}`)
	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, signedRequest(t, priv, body))

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Type int `json:"type"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Type != responsePong {
		t.Fatalf("expected pong, got type %d", resp.Type)
	}
}

func TestInteractionsRejectsBadSignature(t *testing.T) {
	srv, _ := newTestServer(t)

	// 다른 키로 서명된 요청
	_, otherPriv, _ := ed25519.GenerateKey(rand.Reader)
	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, signedRequest(t, otherPriv, []byte(`{"type":1}`)))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestInteractionsDispatchesCommand(t *testing.T) {
	srv, priv := newTestServer(t)

	body := []byte(`{
		"type": 2,
		"guild_id": "g1",
		"channel_id": "c1",
		"data": {"name": "echo", "options": [{"name": "video", "value": "dQw4w9WgXcQ"}]}
	}`)
	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, signedRequest(t, priv, body))

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Type int `json:"type"`
		Data struct {
			Content string `json:"content"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Type != responseChannelMessage {
		t.Fatalf("expected channel message response, got %d", resp.Type)
	}
	if resp.Data.Content != "guild=g1 video=dQw4w9WgXcQ" {
		t.Fatalf("unexpected content: %q", resp.Data.Content)
	}
}

func TestNormalizeOptionsCoercesTypes(t *testing.T) {
	opts := normalizeOptions([]interactionOption{
		{Name: "video", Value: json.RawMessage(`"abc"`)},
		{Name: "minutes", Value: json.RawMessage(`30`)},
		{Name: "enabled", Value: json.RawMessage(`true`)},
	})

	if opts.Get("video") != "abc" {
		t.Errorf("string option: %q", opts.Get("video"))
	}
	if opts.Get("minutes") != "30" {
		t.Errorf("number option: %q", opts.Get("minutes"))
	}
	if opts.Get("enabled") != "true" {
		t.Errorf("bool option: %q", opts.Get("enabled"))
	}
}

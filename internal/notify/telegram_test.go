package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestBot(server *httptest.Server) *Bot {
	return &Bot{
		token:      "test-token",
		httpClient: server.Client(),
		baseURL:    server.URL,
	}
}

func TestSendMessageReturnsID(t *testing.T) {
	var receivedChatID, receivedText, receivedMode string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/sendMessage") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		receivedChatID = r.URL.Query().Get("chat_id")
		receivedText = r.URL.Query().Get("text")
		receivedMode = r.URL.Query().Get("parse_mode")
		resp := map[string]any{
			"ok":     true,
			"result": map[string]any{"message_id": 42, "chat": map[string]any{"id": 7}},
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	bot := newTestBot(server)
	id, err := bot.SendMessage(context.Background(), 7, "hello")
	if err != nil {
		t.Fatalf("send should succeed: %v", err)
	}
	if id != 42 {
		t.Errorf("expected message id 42, got %d", id)
	}
	if receivedChatID != "7" {
		t.Errorf("expected chat_id=7, got %s", receivedChatID)
	}
	if receivedText != "hello" {
		t.Errorf("expected text=hello, got %s", receivedText)
	}
	if receivedMode != "Markdown" {
		t.Errorf("expected parse_mode=Markdown, got %s", receivedMode)
	}
}

func TestSendMessageAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		resp := map[string]any{"ok": false, "description": "chat not found"}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	bot := newTestBot(server)
	_, err := bot.SendMessage(context.Background(), 7, "hello")
	if err == nil {
		t.Fatal("expected error for API error response")
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("expected description in error, got %v", err)
	}
}

func TestEditMessageText(t *testing.T) {
	var receivedMessageID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/editMessageText") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		receivedMessageID = r.URL.Query().Get("message_id")
		resp := map[string]any{"ok": true, "result": map[string]any{"message_id": 42}}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	bot := newTestBot(server)
	if err := bot.EditMessageText(context.Background(), 7, 42, "updated"); err != nil {
		t.Fatalf("edit should succeed: %v", err)
	}
	if receivedMessageID != "42" {
		t.Errorf("expected message_id=42, got %s", receivedMessageID)
	}
}

func TestDeleteMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/deleteMessage") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		resp := map[string]any{"ok": true, "result": true}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	bot := newTestBot(server)
	if err := bot.DeleteMessage(context.Background(), 7, 42); err != nil {
		t.Fatalf("delete should succeed: %v", err)
	}
}

func TestGetUpdates(t *testing.T) {
	var receivedOffset string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedOffset = r.URL.Query().Get("offset")
		resp := map[string]any{
			"ok": true,
			"result": []map[string]any{
				{
					"update_id": 100,
					"message": map[string]any{
						"message_id": 1,
						"chat":       map[string]any{"id": 7},
						"text":       "/audit 0xabc",
					},
				},
			},
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	bot := newTestBot(server)
	updates, err := bot.GetUpdates(context.Background(), 99, 5*time.Second)
	if err != nil {
		t.Fatalf("get updates should succeed: %v", err)
	}
	if receivedOffset != "99" {
		t.Errorf("expected offset=99, got %s", receivedOffset)
	}
	if len(updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(updates))
	}
	if updates[0].UpdateID != 100 {
		t.Errorf("expected update id 100, got %d", updates[0].UpdateID)
	}
	if updates[0].Message == nil || updates[0].Message.Text != "/audit 0xabc" {
		t.Errorf("unexpected message: %+v", updates[0].Message)
	}
}

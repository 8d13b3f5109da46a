package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func testStoreContext() StoreContext {
	return StoreContext{
		Products: []ProductSummary{
			{Name: "Vestido rojo", Price: "49.90", Category: "lenceria", Colors: "red"},
		},
		PaymentMethods: []string{"Yape", "Plin", "Transferencia"},
		DeliveryInfo:   DeliveryInfo{Lima: "24-48 horas", Provincia: "3-5 días"},
		ContactInfo:    ContactInfo{Whatsapp: "+51 999 999 999"},
	}
}

func TestAskMissingAPIKeyMakesNoRequest(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	svc := NewGeminiService("", server.URL)
	_, err := svc.Ask(context.Background(), "¿Tienen vestidos rojos?", testStoreContext())
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no network call, got %d", calls.Load())
	}
}

func TestAskRelaysUpstreamReply(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.Contains(r.URL.RawQuery, "key=test-key") {
			t.Errorf("expected api key in query, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Sí, tenemos el Vestido rojo a S/ 49.90."}]}}]}`))
	}))
	defer server.Close()

	svc := NewGeminiService("test-key", server.URL)
	reply, err := svc.Ask(context.Background(), "¿Tienen vestidos rojos?", testStoreContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Sí, tenemos el Vestido rojo a S/ 49.90." {
		t.Fatalf("unexpected reply: %q", reply)
	}
}

func TestAskUpstreamErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := NewGeminiService("test-key", server.URL)
	_, err := svc.Ask(context.Background(), "hola", testStoreContext())

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstreamErr.Status != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", upstreamErr.Status)
	}
}

func TestAskTransportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	svc := NewGeminiService("test-key", server.URL)
	_, err := svc.Ask(context.Background(), "hola", testStoreContext())

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstreamErr.Err == nil {
		t.Fatal("expected transport error to be preserved")
	}
}

func TestAskEmptyCandidatesFallback(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	svc := NewGeminiService("test-key", server.URL)
	reply, err := svc.Ask(context.Background(), "hola", testStoreContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Lo siento, no pude obtener una respuesta." {
		t.Fatalf("unexpected fallback reply: %q", reply)
	}
}

func TestBuildPromptContainsSnapshot(t *testing.T) {
	t.Parallel()

	prompt, err := buildPrompt("¿Cuánto demora el envío a provincia?", testStoreContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"Vestido rojo",
		"Yape, Plin, Transferencia",
		"Lima (24-48 horas)",
		"Provincia (3-5 días)",
		"WhatsApp (+51 999 999 999)",
		"¿Cuánto demora el envío a provincia?",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

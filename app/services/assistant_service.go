package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiModel          = "gemini-2.5-flash-preview-05-20"
)

// ErrMissingAPIKey is a configuration error: without a credential no request
// is ever attempted against the upstream API.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not configured")

// UpstreamError classifies a failed round-trip to the generation API, either a
// transport failure (Err set) or a non-2xx response (Status set).
type UpstreamError struct {
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("assistant API request failed: %v", e.Err)
	}
	return fmt.Sprintf("assistant API returned status %d: %s", e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// StoreContext is the snapshot of store data the model may answer from.
type StoreContext struct {
	Products       []ProductSummary `json:"products"`
	PaymentMethods []string         `json:"paymentMethods"`
	DeliveryInfo   DeliveryInfo     `json:"deliveryInfo"`
	ContactInfo    ContactInfo      `json:"contactInfo"`
}

type ProductSummary struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Category string `json:"category"`
	Colors   string `json:"colors"`
}

type DeliveryInfo struct {
	Lima      string `json:"lima"`
	Provincia string `json:"provincia"`
}

type ContactInfo struct {
	Whatsapp string `json:"whatsapp"`
}

type AssistantClient interface {
	Ask(ctx context.Context, message string, storeCtx StoreContext) (string, error)
}

type GeminiService struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

func NewGeminiService(apiKey, baseURL string) *GeminiService {
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &GeminiService{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Ask forwards the visitor question plus the store snapshot to the generation
// API and relays the reply. The model is instructed to answer strictly from
// the snapshot or defer to the WhatsApp contact.
func (s *GeminiService) Ask(ctx context.Context, message string, storeCtx StoreContext) (string, error) {
	if s.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	prompt, err := buildPrompt(message, storeCtx)
	if err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}

	payload := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request payload: %w", err)
	}

	apiURL := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, geminiModel, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("GeminiService.Ask: request to generation API failed: %v", err)
		return "", &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("GeminiService.Ask: generation API returned non-OK status: %d, Body: %s", resp.StatusCode, string(respBody))
		return "", &UpstreamError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &UpstreamError{Status: resp.StatusCode, Body: string(respBody), Err: err}
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "Lo siento, no pude obtener una respuesta.", nil
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

func buildPrompt(message string, storeCtx StoreContext) (string, error) {
	productsJSON, err := json.MarshalIndent(storeCtx.Products, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Eres un asistente virtual para una tienda de lencería en línea. ")
	b.WriteString("Tu objetivo es responder preguntas sobre los productos, métodos de pago y envío, ")
	b.WriteString("basándote únicamente en la siguiente información. Si la pregunta no se puede responder ")
	b.WriteString("con la información proporcionada, debes indicar que no tienes esa información y ")
	b.WriteString("sugerirle que contacte a la tienda por WhatsApp.\n\n")
	b.WriteString("---\n")
	b.WriteString("INFORMACIÓN DE LA TIENDA:\n")
	fmt.Fprintf(&b, "- Productos disponibles: %s\n", productsJSON)
	fmt.Fprintf(&b, "- Métodos de pago aceptados: %s.\n", strings.Join(storeCtx.PaymentMethods, ", "))
	fmt.Fprintf(&b, "- Tiempos de envío: Lima (%s), Provincia (%s).\n", storeCtx.DeliveryInfo.Lima, storeCtx.DeliveryInfo.Provincia)
	fmt.Fprintf(&b, "- Información de contacto: WhatsApp (%s).\n\n", storeCtx.ContactInfo.Whatsapp)
	b.WriteString("PREGUNTA DEL USUARIO:\n")
	b.WriteString(message)
	b.WriteString("\n---\n\nRespuesta:")

	return b.String(), nil
}

// Package describer fetches natural-language disease descriptions from the
// hosted generative-language API. A Describe call never fails the caller:
// every transport or parsing problem degrades to a fixed message so the
// diagnosis pipeline can always complete.
package describer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ch4uTR/TarimKocum/config"
)

const requestTimeout = 30 * time.Second

const promptTemplate = "Bitkide '%s' hastalığı tespit edildi. " +
	"Aşağıdaki başlıklara göre Türkçe, kısa ve anlaşılır bir açıklama yap:\n\n" +
	"1. Nedir?\n" +
	"2. Belirtileri nelerdir?\n" +
	"3. Nasıl tedavi edilir?\n" +
	"Cevabı madde madde ve toplamda 3–5 cümleyi geçmeyecek şekilde oluştur."

// Gemini calls the generateContent endpoint with a templated prompt.
type Gemini struct {
	apiKey   string
	endpoint string
	client   *http.Client
	log      *slog.Logger
}

// Option configures a Gemini client.
type Option func(*Gemini)

// WithTimeout overrides the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gemini) { g.client.Timeout = d }
}

// NewGemini constructs a description fetcher from config. An empty API key
// is allowed; Describe then short-circuits without network I/O.
func NewGemini(cfg config.GeminiConfig, log *slog.Logger, opts ...Option) *Gemini {
	g := &Gemini{
		apiKey:   cfg.APIKey,
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: requestTimeout},
		log:      log,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// geminiRequest is the generateContent request body.
type geminiRequest struct {
	Contents       []geminiContent       `json:"contents"`
	SafetySettings []geminiSafetySetting `json:"safetySettings"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// geminiResponse carries the nested candidates[0].content.parts[0].text field.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Describe returns explanatory text for the disease label. It always
// returns a non-empty string; failures yield label-specific messages
// instead of errors. No retries are attempted.
func (g *Gemini) Describe(ctx context.Context, diseaseName string) string {
	if g.apiKey == "" {
		g.log.Error("gemini api key not found")
		return "API key not found - Description unavailable"
	}

	sanitized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(diseaseName)), "_", " ")
	prompt := fmt.Sprintf(promptTemplate, sanitized)

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		SafetySettings: []geminiSafetySetting{{
			Category:  "HARM_CATEGORY_DANGEROUS_CONTENT",
			Threshold: "BLOCK_NONE",
		}},
	})
	if err != nil {
		return g.failure(diseaseName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"?key="+url.QueryEscape(g.apiKey), bytes.NewReader(body))
	if err != nil {
		return g.failure(diseaseName, err)
	}
	req.Header.Set("Content-Type", "application/json")

	g.log.Debug("requesting disease description", "disease", sanitized)

	resp, err := g.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			g.log.Error("gemini request timed out", "disease", sanitized)
			return fmt.Sprintf("Could not get description for %s - Request timed out", diseaseName)
		}
		return g.failure(diseaseName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return g.failure(diseaseName, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var content geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&content); err != nil {
		return g.failure(diseaseName, err)
	}
	if len(content.Candidates) == 0 || len(content.Candidates[0].Content.Parts) == 0 {
		return g.failure(diseaseName, fmt.Errorf("empty candidates in response"))
	}

	return strings.TrimSpace(content.Candidates[0].Content.Parts[0].Text)
}

func (g *Gemini) failure(diseaseName string, err error) string {
	g.log.Error("failed to fetch disease description", "disease", diseaseName, "error", err)
	return fmt.Sprintf("Could not process description for %s. Error: %v", diseaseName, err)
}

func isTimeout(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

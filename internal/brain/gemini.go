package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/infopulse/internal/logging"
)

const (
	defaultGeminiModel    = "gemini-2.5-flash"
	defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"
)

// GeminiProvider implements Provider using Gemini with Google Search grounding
type GeminiProvider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewGeminiProvider creates a new Gemini provider. requestsPerMinute <= 0
// disables pacing.
func NewGeminiProvider(apiKey, model, endpoint string, requestsPerMinute int) *GeminiProvider {
	if model == "" {
		model = defaultGeminiModel
	}
	if endpoint == "" {
		endpoint = defaultGeminiEndpoint
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
	return &GeminiProvider{
		apiKey:   apiKey,
		model:    model,
		endpoint: strings.TrimRight(endpoint, "/"),
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		limiter: limiter,
	}
}

func (g *GeminiProvider) Name() string {
	return "gemini"
}

func (g *GeminiProvider) Available() bool {
	return g.apiKey != ""
}

// Model returns the configured model name
func (g *GeminiProvider) Model() string {
	return g.model
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason      string `json:"finishReason"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	ModelVersion string `json:"modelVersion"`
}

func (g *GeminiProvider) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	if !g.Available() {
		logging.Warn("Gemini provider not configured")
		return SearchResponse{}, fmt.Errorf("gemini: %w", ErrNotConfigured)
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return SearchResponse{}, err
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	logging.Debug("Gemini search request starting", "model", g.model, "query", req.Query)

	body := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]string{
					{"text": req.Prompt},
				},
			},
		},
		"tools": []map[string]interface{}{
			{"google_search": map[string]interface{}{}},
		},
		"generationConfig": map[string]interface{}{
			"maxOutputTokens": maxTokens,
		},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.endpoint, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return SearchResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logging.Error("Gemini API error", "status", resp.StatusCode, "body", string(respBody))
		return SearchResponse{}, &APIError{Provider: "gemini", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return SearchResponse{}, fmt.Errorf("failed to parse response: %w", err)
	}

	modelName := g.model
	if result.ModelVersion != "" {
		modelName = result.ModelVersion
	}

	out := SearchResponse{Model: modelName}
	if len(result.Candidates) == 0 {
		logging.Warn("Gemini returned no candidates", "query", req.Query)
		return out, nil
	}

	cand := result.Candidates[0]
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		sb.WriteString(part.Text)
	}
	out.Content = sb.String()

	if cand.GroundingMetadata != nil {
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk.Web == nil || chunk.Web.URI == "" || chunk.Web.Title == "" {
				continue
			}
			out.Sources = append(out.Sources, Source{Title: chunk.Web.Title, URL: chunk.Web.URI})
		}
	}

	if cand.FinishReason == "MAX_TOKENS" {
		logging.Warn("Gemini response truncated due to max tokens",
			"model", modelName,
			"max_tokens", maxTokens,
			"content_length", len(out.Content))
	}

	logging.Info("Gemini search response",
		"model", modelName,
		"content_length", len(out.Content),
		"sources", len(out.Sources),
		"finish_reason", cand.FinishReason)

	return out, nil
}

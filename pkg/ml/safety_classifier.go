package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ManualCheckAdvised is the reasoning reported whenever the classifier could not give a verdict.
const ManualCheckAdvised = "manual check advised"

// SafetyClassifier inspects an evidence or donation photo. The verdict is advisory.
type SafetyClassifier interface {
	Analyze(ctx context.Context, imageURL string) (*SafetyResult, error)
}

type SafetyResult struct {
	IsSafe        bool    `json:"is_safe"`
	Reasoning     string  `json:"reasoning"`
	DetectedLabel string  `json:"detected_label"`
	Confidence    float64 `json:"confidence"`
	Degraded      bool    `json:"degraded"`
}

// Fallback is the conservative verdict used when the classifier is unreachable or disabled.
func Fallback() *SafetyResult {
	return &SafetyResult{
		IsSafe:    false,
		Reasoning: ManualCheckAdvised,
		Degraded:  true,
	}
}

type HTTPSafetyClassifier struct {
	endpoint      string
	apiKey        string
	minConfidence float64
	httpClient    *http.Client
}

func NewHTTPSafetyClassifier(endpoint, apiKey string, timeout time.Duration, minConfidence float64) *HTTPSafetyClassifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSafetyClassifier{
		endpoint:      strings.TrimRight(endpoint, "/"),
		apiKey:        apiKey,
		minConfidence: minConfidence,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

type analyzeRequest struct {
	ImageURL string `json:"image_url"`
}

type analyzeResponse struct {
	IsSafe        *bool   `json:"is_safe"`
	Reasoning     string  `json:"reasoning"`
	DetectedLabel string  `json:"detected_label"`
	Confidence    float64 `json:"confidence"`
}

func (c *HTTPSafetyClassifier) Analyze(ctx context.Context, imageURL string) (*SafetyResult, error) {
	if imageURL == "" {
		return nil, fmt.Errorf("image URL is required")
	}

	payload, err := json.Marshal(analyzeRequest{ImageURL: imageURL})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/analyze", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var result analyzeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.IsSafe == nil {
		return nil, fmt.Errorf("classifier response has no verdict")
	}

	verdict := &SafetyResult{
		IsSafe:        *result.IsSafe,
		Reasoning:     result.Reasoning,
		DetectedLabel: result.DetectedLabel,
		Confidence:    result.Confidence,
	}

	// A low-confidence "safe" is not trusted.
	if verdict.IsSafe && verdict.Confidence < c.minConfidence {
		verdict.IsSafe = false
		verdict.Reasoning = ManualCheckAdvised
	}

	return verdict, nil
}

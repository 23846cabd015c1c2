package engine

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hazemkhaled/text-extractor/internal/extract"
	"github.com/hazemkhaled/text-extractor/pkg/logger"
)

// ocrPrompt keeps the model from editorializing. The output must be the
// page text and nothing else.
const ocrPrompt = `Extract all text from this document image verbatim.
Do not summarize, translate, explain, or add any commentary.
Preserve the reading order and line structure of the original.
If the page contains no text, return an empty response.`

const DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com"

// GeminiEngine is the hosted multimodal OCR variant. One Recognize call is
// one generateContent request with the page image inlined; throttles
// surface as RateLimitError so the retry policy can wait them out.
type GeminiEngine struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
	retry      *RetryPolicy
	detector   *extract.Detector
	logger     logger.Logger
}

func NewGeminiEngine(endpoint, apiKey, model string, retry *RetryPolicy, detector *extract.Detector, log logger.Logger) *GeminiEngine {
	if endpoint == "" {
		endpoint = DefaultGeminiEndpoint
	}
	return &GeminiEngine{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		model:    model,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
		retry:    retry,
		detector: detector,
		logger:   log,
	}
}

func (g *GeminiEngine) Name() string { return "remote-ocr" }

// Recognize runs the page through the model, retrying throttles per the
// policy. Corrupted model output degrades to empty text.
func (g *GeminiEngine) Recognize(ctx context.Context, imagePath string, languageHint string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read page image: %w", err)
	}

	text, attempts, err := g.retry.Do(ctx, func(ctx context.Context) (string, error) {
		return g.generate(ctx, data, mimeTypeOf(imagePath))
	})
	if err != nil {
		g.logger.Warn("Remote OCR failed",
			logger.Int("attempts", attempts),
			logger.Error(err),
		)
		return "", err
	}

	text = strings.TrimSpace(text)
	if !g.detector.Usable(text) {
		g.logger.Info("Remote OCR output rejected as corrupted",
			logger.String("image", filepath.Base(imagePath)),
		)
		return "", nil
	}
	return text, nil
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Type       string `json:"@type"`
			RetryDelay string `json:"retryDelay"`
		} `json:"details"`
	} `json:"error"`
}

func (g *GeminiEngine) generate(ctx context.Context, image []byte, mimeType string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: ocrPrompt},
				{InlineData: &geminiInlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
	}

	reqData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.endpoint, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	// Decode is best-effort until the status is known: a throttle can come
	// back from a proxy with a non-JSON body, and it must still surface as
	// a rate limit rather than a decode failure.
	var result geminiResponse
	decodeErr := json.Unmarshal(body, &result)

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &RateLimitError{
			RetryAfter: retryAfterOf(resp, &result),
			Err:        fmt.Errorf("quota exhausted: %s", errorMessage(&result)),
		}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, decodeErr)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, errorMessage(&result))
	}

	var sb strings.Builder
	for _, c := range result.Candidates {
		for _, p := range c.Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	return sb.String(), nil
}

func errorMessage(r *geminiResponse) string {
	if r.Error != nil {
		return r.Error.Message
	}
	return "no error detail"
}

// retryAfterOf digs the provider-suggested wait out of either the HTTP
// header or the google.rpc.RetryInfo error detail ("13s" style).
func retryAfterOf(resp *http.Response, r *geminiResponse) time.Duration {
	if h := resp.Header.Get("Retry-After"); h != "" {
		if secs, err := strconv.Atoi(h); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if r.Error != nil {
		for _, d := range r.Error.Details {
			if d.RetryDelay == "" {
				continue
			}
			if wait, err := time.ParseDuration(d.RetryDelay); err == nil && wait > 0 {
				return wait
			}
		}
	}
	return 0
}

func mimeTypeOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".tiff", ".tif":
		return "image/tiff"
	default:
		return "image/png"
	}
}

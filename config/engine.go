package config

import (
	"sync"
	"time"
)

var (
	engineOnce   sync.Once
	engineConfig *EngineConfig
)

type EngineConfig struct {
	// Gemini is the preferred remote engine; it is active when an API key
	// is present.
	GeminiAPIKey   string
	GeminiModel    string
	GeminiEndpoint string

	// Textract is the fallback remote engine for AWS deployments, active
	// when no Gemini key is set but AWS credentials are.
	TextractRegion    string
	TextractAccessKey string
	TextractSecretKey string

	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration
	PageTimeout      time.Duration
}

func GetEngineConfig() *EngineConfig {
	engineOnce.Do(func() {
		loadEnv()
		engineConfig = &EngineConfig{
			GeminiAPIKey:      getString("GEMINI_API_KEY", ""),
			GeminiModel:       getString("GEMINI_MODEL", "gemini-1.5-flash"),
			GeminiEndpoint:    getString("GEMINI_ENDPOINT", ""),
			TextractRegion:    getString("AWS_REGION", "eu-west-1"),
			TextractAccessKey: getString("AWS_ACCESS_KEY", ""),
			TextractSecretKey: getString("AWS_SECRET_KEY", ""),
			RetryMaxAttempts:  getInt("OCR_RETRY_MAX_ATTEMPTS", 3),
			RetryBaseDelay:    getSeconds("OCR_RETRY_BASE_SECONDS", 2*time.Second),
			RetryMaxDelay:     getSeconds("OCR_RETRY_MAX_SECONDS", 20*time.Second),
			PageTimeout:       getSeconds("OCR_PAGE_TIMEOUT_SECONDS", 90*time.Second),
		}
	})
	return engineConfig
}

// HasGemini reports whether the hosted multimodal engine is configured.
func (c *EngineConfig) HasGemini() bool { return c.GeminiAPIKey != "" }

// HasTextract reports whether the AWS remote engine is configured.
func (c *EngineConfig) HasTextract() bool {
	return c.TextractAccessKey != "" && c.TextractSecretKey != ""
}

package config

import (
	"fmt"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate reports settings the API server cannot start with.
func (c *AppConfig) Validate() []ValidationError {
	var errs []ValidationError

	if c.Auth.SecretKey == "" {
		errs = append(errs, ValidationError{Field: "auth.secret_key", Message: "SECRET_KEY is required"})
	}
	if c.Auth.AccessTokenExpireMin < 1 {
		errs = append(errs, ValidationError{Field: "auth.access_token_expire_minutes", Message: "must be positive"})
	}

	if c.Upload.MaxFileSize < 1 {
		errs = append(errs, ValidationError{Field: "upload.max_file_size", Message: "must be positive"})
	}
	if len(c.Upload.AllowedTypes) == 0 {
		errs = append(errs, ValidationError{Field: "upload.allowed_types", Message: "at least one type is required"})
	}

	switch c.AI.Provider {
	case "openai":
		if c.AI.OpenAIAPIKey == "" {
			errs = append(errs, ValidationError{Field: "ai.openai_api_key", Message: "OPENAI_API_KEY is required for the openai provider"})
		}
	case "gemini":
		if c.AI.GeminiAPIKey == "" {
			errs = append(errs, ValidationError{Field: "ai.gemini_api_key", Message: "GOOGLE_API_KEY is required for the gemini provider"})
		}
	default:
		errs = append(errs, ValidationError{Field: "ai.provider", Message: fmt.Sprintf("unsupported provider: %s", c.AI.Provider)})
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		errs = append(errs, ValidationError{Field: "ai.temperature", Message: "temperature must be between 0 and 2"})
	}
	if c.AI.MaxTokens < 1 {
		errs = append(errs, ValidationError{Field: "ai.max_tokens", Message: "must be positive"})
	}

	if c.Worker.Count < 1 {
		errs = append(errs, ValidationError{Field: "worker.count", Message: "must be positive"})
	}
	if c.Worker.QueueSize < 1 {
		errs = append(errs, ValidationError{Field: "worker.queue_size", Message: "must be positive"})
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, ValidationError{Field: "app.timezone", Message: fmt.Sprintf("unknown timezone: %s", c.Timezone)})
	}

	return errs
}

// Location resolves the configured timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
//
// A default quota IP-hash salt is deliberately NOT an error here: the quota
// service logs a startup warning instead. Everything else that would make
// the pipeline misbehave fails fast.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.LLM.validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}

	if c.Quota.DailyLimit <= 0 {
		return fmt.Errorf("quota.daily_limit must be > 0 (got %d)", c.Quota.DailyLimit)
	}

	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("rate_limit.max_requests must be > 0 (got %d)", c.RateLimit.MaxRequests)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be > 0 (got %v)", c.RateLimit.Window)
	}

	return nil
}

func (l *LLMConfig) validate() error {
	if !l.Mock && l.APIKey == "" {
		return fmt.Errorf("api_key is required unless mock mode is enabled")
	}
	if l.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if l.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if l.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %v)", l.Timeout)
	}
	if l.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be > 0 (got %d)", l.MaxTokens)
	}
	return nil
}

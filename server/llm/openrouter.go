package llm

import (
	"errors"
	"os"
	"strings"
)

type providerKind int

const (
	providerOpenAI providerKind = iota
	providerOpenRouter
)

const (
	defaultModel     = "gpt-4o"
	defaultSiteURL   = "https://github.com/blackjack-helper"
	defaultSiteTitle = "BlackJack Helper"
)

type apiConfig struct {
	Kind         providerKind
	APIKey       string
	Model        string
	BaseURL      string
	HeaderName   string
	HeaderPrefix string
	Organization string
	ExtraHeaders map[string]string
}

func resolveAPIConfig(model string) (apiConfig, error) {
	cfg := apiConfig{
		Model:        strings.TrimSpace(model),
		ExtraHeaders: map[string]string{},
	}

	cfg.Kind = providerOpenAI
	if preferOpenRouterEnv() {
		cfg.Kind = providerOpenRouter
	}

	manualOverride := false
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER"))) {
	case "openrouter":
		cfg.Kind = providerOpenRouter
		manualOverride = true
	case "openai":
		cfg.Kind = providerOpenAI
		manualOverride = true
	}

	if cfg.Model == "" {
		if cfg.Kind == providerOpenRouter {
			cfg.Model = strings.TrimSpace(os.Getenv("OPENROUTER_MODEL"))
		}
		if cfg.Model == "" {
			cfg.Model = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
		}
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if !manualOverride && strings.Contains(strings.ToLower(cfg.Model), "openrouter/") {
		cfg.Kind = providerOpenRouter
	}

	base := firstNonEmpty(
		os.Getenv("OPENAI_API_BASE"),
		os.Getenv("OPENAI_BASE_URL"),
		os.Getenv("OPENROUTER_API_BASE"),
		os.Getenv("OPENROUTER_BASE_URL"),
	)
	if base == "" {
		if cfg.Kind == providerOpenRouter {
			base = "https://openrouter.ai/api/v1"
		} else {
			base = "https://api.openai.com/v1"
		}
	}
	cfg.BaseURL = strings.TrimRight(base, "/")
	if !manualOverride && strings.Contains(strings.ToLower(cfg.BaseURL), "openrouter") {
		cfg.Kind = providerOpenRouter
	}

	openAIKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	openRouterKey := strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY"))
	if cfg.Kind == providerOpenRouter {
		cfg.APIKey = firstNonEmpty(openRouterKey, openAIKey)
	} else {
		cfg.APIKey = firstNonEmpty(openAIKey, openRouterKey)
	}
	if cfg.APIKey == "" {
		return apiConfig{}, errors.New("API key missing: set OPENAI_API_KEY or OPENROUTER_API_KEY")
	}

	cfg.HeaderName = firstNonEmpty(os.Getenv("OPENAI_API_KEY_HEADER"), os.Getenv("OPENROUTER_API_KEY_HEADER"))
	if cfg.HeaderName == "" {
		cfg.HeaderName = "Authorization"
	}
	cfg.HeaderPrefix = os.Getenv("OPENAI_API_KEY_PREFIX")
	if cfg.HeaderPrefix == "" {
		cfg.HeaderPrefix = os.Getenv("OPENROUTER_API_KEY_PREFIX")
	}
	if cfg.HeaderName == "Authorization" && strings.TrimSpace(cfg.HeaderPrefix) == "" {
		cfg.HeaderPrefix = "Bearer "
	}
	cfg.Organization = strings.TrimSpace(os.Getenv("OPENAI_ORG"))

	if cfg.Kind == providerOpenRouter {
		site := firstNonEmpty(os.Getenv("OPENROUTER_SITE_URL"), defaultSiteURL)
		cfg.ExtraHeaders["HTTP-Referer"] = site
		cfg.ExtraHeaders["Referer"] = site
		cfg.ExtraHeaders["X-Title"] = firstNonEmpty(os.Getenv("OPENROUTER_TITLE"), defaultSiteTitle)
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func preferOpenRouterEnv() bool {
	if os.Getenv("OPENROUTER_API_KEY") != "" && strings.TrimSpace(os.Getenv("OPENAI_API_KEY")) == "" {
		return true
	}
	if strings.TrimSpace(os.Getenv("OPENROUTER_MODEL")) != "" && strings.TrimSpace(os.Getenv("OPENAI_MODEL")) == "" {
		return true
	}
	if firstNonEmpty(os.Getenv("OPENROUTER_API_BASE"), os.Getenv("OPENROUTER_BASE_URL")) != "" {
		return true
	}
	base := strings.ToLower(firstNonEmpty(os.Getenv("OPENAI_API_BASE"), os.Getenv("OPENAI_BASE_URL")))
	return strings.Contains(base, "openrouter")
}

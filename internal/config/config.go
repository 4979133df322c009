package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config contains runtime configuration required by the service.
type Config struct {
	DBURL   string
	Port    string
	APIKeys map[string]string // apiKey -> tenantID

	// MarkTouchesUpdatedAt controls whether marking an event as exported
	// bumps its updated_at, making the mark visible through the change feed
	// to other sync participants.
	MarkTouchesUpdatedAt bool
}

// Load reads values from the environment, with an optional .env file for
// local development.
// API_KEYS format: "tenant1:key1,tenant2:key2"
func Load() (Config, error) {
	_ = godotenv.Load()

	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		return Config{}, errors.New("DB_URL required")
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	apiKeys, err := ParseAPIKeys(os.Getenv("API_KEYS"))
	if err != nil {
		return Config{}, err
	}

	markTouches := true
	if raw := strings.TrimSpace(os.Getenv("MARK_TOUCHES_UPDATED_AT")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, errors.New("MARK_TOUCHES_UPDATED_AT must be a boolean")
		}
		markTouches = v
	}

	return Config{
		DBURL:                dbURL,
		Port:                 port,
		APIKeys:              apiKeys,
		MarkTouchesUpdatedAt: markTouches,
	}, nil
}

// ParseAPIKeys parses the "tenant:key,tenant:key" mapping. An empty input
// yields a local dev fallback so the service runs out-of-the-box.
func ParseAPIKeys(raw string) (map[string]string, error) {
	apiKeys := map[string]string{}

	for _, p := range strings.Split(strings.TrimSpace(raw), ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parts := strings.SplitN(p, ":", 2)
		if len(parts) != 2 {
			return nil, errors.New(`API_KEYS must be "tenant:key,tenant:key"`)
		}
		tenant := strings.TrimSpace(parts[0])
		key := strings.TrimSpace(parts[1])
		if tenant == "" || key == "" {
			return nil, errors.New(`API_KEYS must be "tenant:key,tenant:key"`)
		}
		apiKeys[key] = tenant
	}

	if len(apiKeys) == 0 {
		apiKeys["tenant-key-123"] = "tenant1"
	}

	return apiKeys, nil
}

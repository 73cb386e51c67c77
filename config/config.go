// Package config resolves settings from config/app.json, then .env, then
// the process environment; later sources win. Keys are upper snake case.
// Sections in app.json flatten into prefixes:
//
//	{"low_stock": {"threshold": 5, "webhook_url": "http://hooks/low"}}
//
// yields LOW_STOCK_THRESHOLD=5 and LOW_STOCK_WEBHOOK_URL=http://hooks/low.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaults()
)

// Load reads the default files once. Every accessor calls it, so explicit
// calls only matter for surfacing a malformed file early.
func Load() error {
	loadOnce.Do(func() {
		loadErr = load("config/app.json", ".env")
	})
	return loadErr
}

// LoadFrom replaces the current settings with defaults overlaid by the given
// JSON and dotenv files and the environment. Missing files are skipped.
func LoadFrom(jsonPath, envPath string) error {
	loadOnce.Do(func() {})
	return load(jsonPath, envPath)
}

func load(jsonPath, envPath string) error {
	next := defaults()
	if err := readJSON(jsonPath, next); err != nil {
		return err
	}
	if err := readDotEnv(envPath, next); err != nil {
		return err
	}
	readEnviron(next)

	mu.Lock()
	values = next
	mu.Unlock()
	return nil
}

func readJSON(path string, into map[string]string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	flatten("", doc, into)
	return nil
}

func flatten(prefix string, node map[string]any, into map[string]string) {
	for k, v := range node {
		key := prefix + strings.ToUpper(strings.TrimSpace(k))
		switch x := v.(type) {
		case map[string]any:
			flatten(key+"_", x, into)
		case string:
			into[key] = strings.TrimSpace(x)
		case float64:
			into[key] = strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			into[key] = strconv.FormatBool(x)
		}
	}
}

func readDotEnv(path string, into map[string]string) error {
	env, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	for k, v := range env {
		into[strings.ToUpper(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return nil
}

// readEnviron takes every variable that is already known or carries one of
// the service prefixes.
func readEnviron(into map[string]string) {
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		if _, known := into[k]; known || owned(k) {
			into[k] = v
		}
	}
}

func owned(key string) bool {
	prefix, _, ok := strings.Cut(key, "_")
	if !ok {
		return false
	}
	switch prefix {
	case "APP", "DB", "DATABASE", "REDIS", "JWT", "AUTH", "ADMIN", "GRPC", "QUEUE", "AMQP",
		"LOW", "SLACK", "REPORT", "STORAGE", "S3", "LOG", "RATE", "MAX", "MAIL":
		return true
	}
	return false
}

func lookup(key, fallback string) string {
	mu.RLock()
	v := strings.TrimSpace(values[key])
	mu.RUnlock()
	if v == "" {
		return fallback
	}
	return v
}

// Get returns key or fallback when it is unset or blank.
func Get(key, fallback string) string {
	_ = Load()
	return lookup(key, fallback)
}

// Int returns key as an integer, or fallback when unset or malformed.
func Int(key string, fallback int) int {
	n, err := strconv.Atoi(Get(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

// Bool understands true/false, 1/0, yes/no and on/off.
func Bool(key string, fallback bool) bool {
	switch strings.ToLower(Get(key, "")) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return fallback
}

// List splits a comma separated key, dropping blanks.
func List(key string) []string {
	var out []string
	for _, part := range strings.Split(Get(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Set overrides key until the next LoadFrom. Tests restore the previous
// value with Set(key, old).
func Set(key, value string) {
	_ = Load()
	mu.Lock()
	values[key] = value
	mu.Unlock()
}

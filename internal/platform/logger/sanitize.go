package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// policy decides what a logged value may reveal. Loaded from the environment
// on first use.
type policy struct {
	enabled bool
	salt    string
	// maxText caps prompt and generated-text values, in runes.
	maxText int
}

var (
	policyOnce sync.Once
	active     policy
)

func currentPolicy() policy {
	policyOnce.Do(func() {
		active = policy{enabled: true, maxText: 300}
		switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED"))) {
		case "0", "false", "no", "off":
			active.enabled = false
		}
		active.salt = strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))
		if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("LOG_MAX_TEXT_CHARS"))); err == nil && n > 0 {
			active.maxText = n
		}
	})
	return active
}

type keyClass int

const (
	keyPlain keyClass = iota
	keySecret
	keyIdentity
	keyText
)

var (
	secretFragments   = []string{"api_key", "apikey", "token", "secret", "authorization", "password", "credential"}
	identityFragments = []string{"user_id", "lesson_owner"}
	// Model prompts and generated lesson text are long and may quote the user.
	textFragments = []string{"prompt", "content", "script", "narration", "response"}
)

func classify(key string) keyClass {
	key = strings.ToLower(strings.TrimSpace(key))
	switch {
	case key == "":
		return keyPlain
	case containsAny(key, secretFragments):
		return keySecret
	case containsAny(key, identityFragments):
		return keyIdentity
	case containsAny(key, textFragments):
		return keyText
	default:
		return keyPlain
	}
}

func containsAny(s string, frags []string) bool {
	for _, f := range frags {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

func sanitizeKVs(kv []interface{}) []interface{} {
	p := currentPolicy()
	if len(kv) == 0 || !p.enabled {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		name := toString(kv[i])
		out = append(out, name, p.value(name, kv[i+1]))
	}
	if len(kv)%2 == 1 {
		out = append(out, kv[len(kv)-1])
	}
	return out
}

func sanitizeValue(key string, val interface{}) interface{} {
	return currentPolicy().value(key, val)
}

func (p policy) value(key string, val interface{}) interface{} {
	switch classify(key) {
	case keySecret:
		return "[REDACTED]"
	case keyIdentity:
		return p.hash(val)
	case keyText:
		if s, ok := val.(string); ok {
			return truncate(s, p.maxText)
		}
	}
	switch t := val.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, v := range t {
			out[k] = p.value(k, v)
		}
		return out
	case string:
		if looksLikeJWT(t) {
			return "[REDACTED]"
		}
	}
	return val
}

func (p policy) hash(val interface{}) string {
	raw := toString(val)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(p.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	return string(r[:max]) + fmt.Sprintf("...(+%d chars)", len(r)-max)
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

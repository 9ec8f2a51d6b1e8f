package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const redacted = "[REDACTED]"

// Keys containing one of these fragments never reach the log sink.
var secretFragments = []string{
	"token", "authorization", "password", "secret", "api_key", "apikey",
	"email", "recipient", "phone",
}

// Student ids are logged as salted hashes so runs still correlate.
var hashedFragments = []string{"student_id", "user_id"}

type redactor struct {
	enabled bool
	salt    string
}

// redactorFromEnv reads LOG_REDACTION_ENABLED (on unless set to a false
// value) and LOG_HASH_SALT.
func redactorFromEnv(getenv func(string) string) *redactor {
	r := &redactor{enabled: true, salt: strings.TrimSpace(getenv("LOG_HASH_SALT"))}
	switch strings.ToLower(strings.TrimSpace(getenv("LOG_REDACTION_ENABLED"))) {
	case "0", "false", "no", "off":
		r.enabled = false
	}
	return r
}

func (r *redactor) kvs(kv []interface{}) []interface{} {
	if !r.enabled || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		out[i] = stringify(out[i])
		out[i+1] = r.value(normalizeKey(out[i]), out[i+1])
	}
	return out
}

func (r *redactor) value(key string, v interface{}) interface{} {
	switch {
	case key == "":
		return v
	case containsAny(key, secretFragments):
		return redacted
	case containsAny(key, hashedFragments):
		return r.hash(v)
	}
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, inner := range t {
			out[k] = r.value(normalizeKey(k), inner)
		}
		return out
	case string:
		if looksLikeJWT(t) {
			return redacted
		}
	}
	return v
}

func (r *redactor) hash(v interface{}) string {
	raw := stringify(v)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(r.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func normalizeKey(k interface{}) string {
	return strings.ToLower(strings.TrimSpace(stringify(k)))
}

func stringify(v interface{}) string {
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

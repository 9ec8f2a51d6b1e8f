package gcp

import (
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// credentialsFromEnv prefers inline JSON in GOOGLE_APPLICATION_CREDENTIALS_JSON,
// then GOOGLE_APPLICATION_CREDENTIALS as JSON or a key file path. Nil means
// application default credentials.
func credentialsFromEnv(getenv func(string) string) option.ClientOption {
	for _, key := range []string{"GOOGLE_APPLICATION_CREDENTIALS_JSON", "GOOGLE_APPLICATION_CREDENTIALS"} {
		v := strings.TrimSpace(getenv(key))
		switch {
		case v == "":
			continue
		case strings.HasPrefix(v, "{"):
			return option.WithCredentialsJSON([]byte(v))
		default:
			return option.WithCredentialsFile(v)
		}
	}
	return nil
}

// storageClientOptions builds the client options for the bucket. The storage
// package reads STORAGE_EMULATOR_HOST itself, so emulator mode exports it and
// drops authentication.
func storageClientOptions(emulatorHost string, getenv func(string) string) []option.ClientOption {
	if emulatorHost != "" {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", emulatorHost)
		return []option.ClientOption{option.WithoutAuthentication()}
	}
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if cred := credentialsFromEnv(getenv); cred != nil {
		opts = append(opts, cred)
	}
	return opts
}

package config

import (
	"fmt"
	"os"
	"strings"
)

// Secret describes where a credential comes from. File wins over Value.
type Secret struct {
	Name  string
	Value string
	File  string
}

// Resolve returns the trimmed secret. An unconfigured secret resolves to ""
// without error; an unreadable or empty file is an error.
func (s Secret) Resolve() (string, error) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(s.File)
	if file == "" {
		return strings.TrimSpace(s.Value), nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
	}
	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", fmt.Errorf("%s file %q is empty", name, file)
	}
	return secret, nil
}

func (c AdzunaConfig) Secret() Secret {
	return Secret{Name: "adzuna app key", Value: c.AppKey, File: c.AppKeyFile}
}

func (c JSearchConfig) Secret() Secret {
	return Secret{Name: "rapidapi key", Value: c.APIKey, File: c.APIKeyFile}
}

func (c GeminiConfig) Secret() Secret {
	return Secret{Name: "gemini api key", Value: c.APIKey, File: c.APIKeyFile}
}

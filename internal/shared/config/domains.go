package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// EmailDomains is the data behind the email-domain heuristic. It is a hint
// for login suggestions, not an access rule.
type EmailDomains struct {
	Gmail     []string `yaml:"gmail"`
	Workspace []string `yaml:"workspace"`
	Public    []string `yaml:"public"`
}

// DefaultEmailDomains returns the built-in lists.
func DefaultEmailDomains() EmailDomains {
	return EmailDomains{
		Gmail:     []string{"gmail.com", "googlemail.com"},
		Workspace: []string{"exosolve.io"},
		Public: []string{
			"yahoo.com", "hotmail.com", "outlook.com", "aol.com", "icloud.com",
			"protonmail.com", "tutanota.com", "mail.com", "yandex.com", "zoho.com",
			"gmx.com", "fastmail.com",
		},
	}
}

// LoadEmailDomains reads a YAML file of domain lists. An empty path yields the
// defaults; lists missing from the file keep their defaults.
func LoadEmailDomains(path string) (EmailDomains, error) {
	out := DefaultEmailDomains()
	path = strings.TrimSpace(path)
	if path == "" {
		return out, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseEmailDomains(raw)
}

// ParseEmailDomains decodes YAML domain lists over the defaults.
func ParseEmailDomains(raw []byte) (EmailDomains, error) {
	out := DefaultEmailDomains()
	var parsed EmailDomains
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return out, fmt.Errorf("decode email domains: %w", err)
	}
	if len(parsed.Gmail) > 0 {
		out.Gmail = normalizeDomains(parsed.Gmail)
	}
	if len(parsed.Workspace) > 0 {
		out.Workspace = normalizeDomains(parsed.Workspace)
	}
	if len(parsed.Public) > 0 {
		out.Public = normalizeDomains(parsed.Public)
	}
	return out, nil
}

func normalizeDomains(in []string) []string {
	out := make([]string, 0, len(in))
	for _, d := range in {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

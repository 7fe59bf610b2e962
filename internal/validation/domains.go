package validation

import (
	"fmt"
	"strings"
	"sync"

	"job-tracker/internal/shared/config"
)

// Domain types reported by the classifier.
const (
	DomainGmail     = "Gmail"
	DomainCorporate = "corporate"
	DomainPersonal  = "personal"
	DomainInvalid   = "invalid"
)

// DomainAnalysis describes what an email domain suggests about how the user
// signs in. It is a UX hint only.
type DomainAnalysis struct {
	Domain                  string `json:"domain"`
	Type                    string `json:"type"`
	IsGmail                 bool   `json:"isGmail"`
	IsLikelyGoogleWorkspace bool   `json:"isLikelyGoogleWorkspace"`
}

// UsesGoogle reports whether a Google sign-in suggestion applies.
func (a DomainAnalysis) UsesGoogle() bool {
	return a.IsGmail || a.IsLikelyGoogleWorkspace
}

// DomainClassifier classifies email domains from configured lists.
type DomainClassifier struct {
	mu        sync.RWMutex
	gmail     map[string]struct{}
	workspace map[string]struct{}
	public    map[string]struct{}
}

// NewDomainClassifier builds a classifier over the given lists.
func NewDomainClassifier(domains config.EmailDomains) *DomainClassifier {
	return &DomainClassifier{
		gmail:     toSet(domains.Gmail),
		workspace: toSet(domains.Workspace),
		public:    toSet(domains.Public),
	}
}

var defaultClassifier = NewDomainClassifier(config.DefaultEmailDomains())

// AnalyzeEmailDomain classifies email with the built-in domain lists.
func AnalyzeEmailDomain(email string) DomainAnalysis {
	return defaultClassifier.Analyze(email)
}

// AuthSuggestion returns the sign-in hint for email using the built-in lists.
func AuthSuggestion(email string) string {
	return defaultClassifier.AuthSuggestion(email)
}

// Analyze classifies the domain part of email.
func (c *DomainClassifier) Analyze(email string) DomainAnalysis {
	domain := DomainOf(email)
	if domain == "" {
		return DomainAnalysis{Type: DomainInvalid}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.gmail[domain]; ok {
		return DomainAnalysis{Domain: domain, Type: DomainGmail, IsGmail: true}
	}
	if _, ok := c.workspace[domain]; ok {
		return DomainAnalysis{Domain: domain, Type: DomainCorporate, IsLikelyGoogleWorkspace: true}
	}
	if _, ok := c.public[domain]; ok {
		return DomainAnalysis{Domain: domain, Type: DomainPersonal}
	}
	// Anything not known to be public webmail is treated as an organization.
	return DomainAnalysis{Domain: domain, Type: DomainCorporate, IsLikelyGoogleWorkspace: true}
}

// AuthSuggestion returns a hint pointing Google-likely users at federated
// sign-in, or "" when none applies.
func (c *DomainClassifier) AuthSuggestion(email string) string {
	a := c.Analyze(email)
	switch {
	case a.IsGmail:
		return `Gmail users typically sign in with Google. Try the "Continue with Google" button.`
	case a.IsLikelyGoogleWorkspace:
		return fmt.Sprintf(`This appears to be a %s email. Many organizations use Google Workspace. Try the "Continue with Google" button.`, a.Type)
	default:
		return ""
	}
}

// AddWorkspaceDomain records another domain known to use Google Workspace.
func (c *DomainClassifier) AddWorkspaceDomain(domain string) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return
	}
	c.mu.Lock()
	c.workspace[domain] = struct{}{}
	c.mu.Unlock()
}

// DomainOf returns the lowercased part after the first '@', or "".
func DomainOf(email string) string {
	_, domain, ok := strings.Cut(strings.TrimSpace(email), "@")
	if !ok {
		return ""
	}
	if i := strings.IndexByte(domain, '@'); i >= 0 {
		domain = domain[:i]
	}
	return strings.ToLower(domain)
}

func toSet(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, d := range in {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			out[d] = struct{}{}
		}
	}
	return out
}

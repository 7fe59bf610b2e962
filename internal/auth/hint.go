package auth

import (
	"fmt"
	"strings"
	"time"

	"job-tracker/internal/users"
	"job-tracker/internal/validation"
)

// Flow selects which screen's wording a hint uses.
type Flow string

const (
	FlowLogin    Flow = "login"
	FlowRegister Flow = "register"
)

const (
	hintDuration       = 5 * time.Second
	googleHintDuration = 8 * time.Second
)

// Hint turns a failure code into the toast shown to the user. Addresses that
// look like Gmail or Google Workspace get a nudge toward Google sign-in, and
// any message mentioning Google stays up longer.
func Hint(flow Flow, code Code, email string, classifier *validation.DomainClassifier) users.Notice {
	var a validation.DomainAnalysis
	if classifier != nil {
		a = classifier.Analyze(email)
	} else {
		a = validation.AnalyzeEmailDomain(email)
	}

	var msg string
	if flow == FlowRegister {
		msg = registerHint(code, email, a)
	} else {
		msg = loginHint(code, email, a)
	}

	d := hintDuration
	if strings.Contains(msg, "Google") {
		d = googleHintDuration
	}
	return users.Notice{Message: msg, Duration: d, Error: true}
}

func loginHint(code Code, email string, a validation.DomainAnalysis) string {
	switch code {
	case CodeInvalidCredential:
		switch {
		case a.IsLikelyGoogleWorkspace:
			return fmt.Sprintf(`🔍 "%s" appears to be a %s email. These often use Google Workspace authentication. Try the "Continue with Google" button above.`, email, a.Type)
		case a.IsGmail:
			return fmt.Sprintf(`🔍 Gmail accounts like "%s" often use Google sign-in. Try the "Continue with Google" button above, or check your password if you set one up.`, email)
		default:
			return fmt.Sprintf(`❌ Invalid email or password for "%s". Please check your credentials and try again.`, email)
		}
	case CodeUserNotFound:
		switch {
		case a.IsLikelyGoogleWorkspace:
			return fmt.Sprintf(`❌ No account found for "%s". %s emails often use Google Workspace. Try the "Continue with Google" button above.`, email, a.Type)
		case a.IsGmail:
			return fmt.Sprintf(`❌ No account found for "%s". Gmail users often sign up with Google. Try the "Continue with Google" button above.`, email)
		default:
			return fmt.Sprintf(`❌ No account found for "%s". Please check your email or create a new account.`, email)
		}
	case CodeWrongPassword:
		if a.UsesGoogle() {
			return fmt.Sprintf(`❌ Incorrect password for "%s". If you signed up with Google, use the "Continue with Google" button instead.`, email)
		}
		return fmt.Sprintf(`❌ Incorrect password for "%s". Please try again or reset your password.`, email)
	case CodeTooManyRequests:
		return "Too many failed login attempts. Please wait a moment before trying again."
	case CodeUserDisabled:
		return "This account has been disabled. Please contact support."
	case CodeInvalidEmail:
		return "Please enter a valid email address."
	case CodeNetwork:
		return "Network error. Please check your internet connection and try again."
	}
	if a.UsesGoogle() {
		return fmt.Sprintf(`Login failed for "%s". 💡 Tip: Try the "Continue with Google" button if you registered with Google.`, email)
	}
	return fmt.Sprintf("Login failed: %s. Please try again or contact support.", code)
}

func registerHint(code Code, email string, a validation.DomainAnalysis) string {
	switch code {
	case CodeEmailInUse:
		switch {
		case a.IsGmail:
			return fmt.Sprintf(`📧 "%s" is already registered. Gmail users often sign up with Google - try the "Sign up with Google" button above.`, email)
		case a.IsLikelyGoogleWorkspace:
			return fmt.Sprintf(`📧 "%s" is already registered. %s emails often use Google Workspace - try the "Sign up with Google" button above.`, email, a.Type)
		default:
			return fmt.Sprintf(`📧 An account with "%s" already exists. Please sign in instead.`, email)
		}
	case CodeWeakPassword:
		return "Password is too weak. Please use at least 6 characters with a mix of letters and numbers."
	case CodeNotAllowed:
		return "Email/password accounts are not enabled. Please contact support."
	case CodeInvalidEmail:
		return "Please enter a valid email address."
	case CodeNetwork:
		return "Network error. Please check your internet connection and try again."
	}
	if a.UsesGoogle() {
		return fmt.Sprintf(`Registration failed for "%s". 💡 Tip: Try the "Sign up with Google" button if you prefer.`, email)
	}
	return fmt.Sprintf("Registration failed: %s. Please try again or contact support.", code)
}

// GoogleHint is the toast after a failed Google sign-in or sign-up.
func GoogleHint(flow Flow, code Code) users.Notice {
	var msg string
	switch code {
	case CodeCancelled:
		if flow == FlowRegister {
			msg = "Signup was cancelled. Please try again."
		} else {
			msg = "Login was cancelled. Please try again."
		}
	case CodeAccountExists:
		msg = "An account already exists with this email. Please use email/password login."
	default:
		if flow == FlowRegister {
			msg = "Google signup failed. Please try again."
		} else {
			msg = "Google login failed. Please try again."
		}
	}
	return users.Notice{Message: msg, Duration: hintDuration, Error: true}
}

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"job-tracker/internal/shared/server/respond"
	"job-tracker/internal/shared/telemetry"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleConfig holds the OAuth client settings.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	UIRedirect   string
	Enabled      bool
}

// GoogleService runs the OAuth code flow and hands the resulting identity to
// Service.GoogleSignIn.
type GoogleService struct {
	svc         *Service
	oauthConfig *oauth2.Config
	uiRedirect  string
	enabled     bool
	stateTTL    time.Duration
	states      *stateStore
	userInfo    func(ctx context.Context, token *oauth2.Token) (googleUserInfo, error)
}

// NewGoogleService builds a GoogleService.
func NewGoogleService(svc *Service, cfg GoogleConfig) *GoogleService {
	g := &GoogleService{
		svc: svc,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		uiRedirect: cfg.UIRedirect,
		enabled:    cfg.Enabled,
		stateTTL:   5 * time.Minute,
		states:     newStateStore(),
	}
	g.userInfo = g.fetchUserInfo
	return g
}

// RegisterRoutes attaches Google auth routes.
func (g *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", g.start)
	rg.GET("/auth/google/callback", g.callback)
}

func (g *GoogleService) configured() bool {
	return g.oauthConfig.ClientID != "" && g.oauthConfig.ClientSecret != "" && g.oauthConfig.RedirectURL != ""
}

func (g *GoogleService) start(c *gin.Context) {
	if !g.enabled {
		respond.Error(c, http.StatusForbidden, string(CodeNotAllowed), "Google sign-in is disabled", nil)
		return
	}
	if !g.configured() {
		respond.Error(c, http.StatusInternalServerError, "auth_not_configured", "Google auth not configured", nil)
		return
	}

	flow := FlowLogin
	if c.Query("flow") == string(FlowRegister) {
		flow = FlowRegister
	}
	state := uuid.NewString()
	g.states.put(state, flow, time.Now().Add(g.stateTTL))

	c.Redirect(http.StatusFound, g.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline))
}

func (g *GoogleService) callback(c *gin.Context) {
	state := c.Query("state")
	flow, ok := g.states.consume(state)
	if state == "" || !ok {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	// The consent screen was dismissed.
	if c.Query("error") != "" {
		g.redirectError(c, flow, CodeCancelled)
		return
	}
	code := c.Query("code")
	if code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}

	ctx := c.Request.Context()
	token, err := g.oauthConfig.Exchange(ctx, code)
	if err != nil {
		telemetry.Warn("auth.google_exchange_failed", map[string]any{"error": err})
		g.redirectError(c, flow, CodeInternal)
		return
	}

	info, err := g.userInfo(ctx, token)
	if err != nil || info.Sub == "" {
		telemetry.Warn("auth.google_profile_failed", map[string]any{"error": err})
		g.redirectError(c, flow, CodeInternal)
		return
	}

	out, err := g.svc.GoogleSignIn(ctx, info.Sub, info.Email)
	if err != nil {
		g.redirectError(c, flow, CodeOf(err))
		return
	}

	target, err := withQuery(g.uiRedirect, url.Values{"token": {out.Token}})
	if err != nil {
		respond.Internal(c, "failed to redirect")
		return
	}
	c.Redirect(http.StatusFound, target)
}

func (g *GoogleService) redirectError(c *gin.Context, flow Flow, code Code) {
	notice := GoogleHint(flow, code)
	target, err := withQuery(g.uiRedirect, url.Values{
		"error":   {string(code)},
		"message": {notice.Message},
	})
	if err != nil {
		respond.Error(c, http.StatusBadGateway, string(code), notice.Message, nil)
		return
	}
	c.Redirect(http.StatusFound, target)
}

type googleUserInfo struct {
	Sub   string `json:"sub"`
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (g *GoogleService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (googleUserInfo, error) {
	client := g.oauthConfig.Client(ctx, token)
	resp, err := client.Get(userInfoURL)
	if err != nil {
		return googleUserInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, err
	}

	// Some responses use "id" instead of "sub".
	if info.Sub == "" {
		info.Sub = info.ID
	}
	return info, nil
}

type pendingState struct {
	flow    Flow
	expires time.Time
}

type stateStore struct {
	items map[string]pendingState
	mu    sync.Mutex
	now   func() time.Time
}

func newStateStore() *stateStore {
	return &stateStore{items: make(map[string]pendingState), now: time.Now}
}

func (s *stateStore) put(state string, flow Flow, exp time.Time) {
	s.mu.Lock()
	s.items[state] = pendingState{flow: flow, expires: exp}
	s.mu.Unlock()
}

func (s *stateStore) consume(state string) (Flow, bool) {
	s.mu.Lock()
	p, ok := s.items[state]
	if ok {
		delete(s.items, state)
	}
	s.mu.Unlock()
	if !ok || s.now().After(p.expires) {
		return "", false
	}
	return p.flow, true
}

func withQuery(rawURL string, values url.Values) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range values {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

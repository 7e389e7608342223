package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RESTConfig configures a RESTProvider
type RESTConfig struct {
	BaseURL             string
	APIKey              string
	Timeout             time.Duration
	GoogleSignInEnabled bool
}

// RESTProvider talks to an identity-toolkit style REST API
type RESTProvider struct {
	baseURL       string
	apiKey        string
	googleEnabled bool
	httpClient    *http.Client
	logger        *log.Logger
	now           func() time.Time

	mu      sync.RWMutex
	session *Session
}

// NewRESTProvider creates a provider with no session
func NewRESTProvider(cfg RESTConfig, logger *log.Logger) *RESTProvider {
	if logger == nil {
		logger = log.Default()
	}
	return &RESTProvider{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		googleEnabled: cfg.GoogleSignInEnabled,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		logger:        logger,
		now:           time.Now,
	}
}

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type idpRequest struct {
	PostBody          string `json:"postBody"`
	RequestURI        string `json:"requestUri"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type tokenResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn authenticates with email and password
func (p *RESTProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	return p.authenticate(ctx, "accounts:signInWithPassword", passwordRequest{
		Email: email, Password: password, ReturnSecureToken: true,
	})
}

// SignUp creates an account and signs it in
func (p *RESTProvider) SignUp(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	return p.authenticate(ctx, "accounts:signUp", passwordRequest{
		Email: email, Password: password, ReturnSecureToken: true,
	})
}

// SignInWithGoogle exchanges a Google ID token for a session
func (p *RESTProvider) SignInWithGoogle(ctx context.Context, googleIDToken string) (*Session, error) {
	if !p.googleEnabled {
		return nil, ErrGoogleSignInDisabled
	}
	body := url.Values{"id_token": {googleIDToken}, "providerId": {"google.com"}}
	return p.authenticate(ctx, "accounts:signInWithIdp", idpRequest{
		PostBody:          body.Encode(),
		RequestURI:        "http://localhost",
		ReturnSecureToken: true,
	})
}

// SignOut drops the local session. Tokens already issued stay valid at the
// provider until they expire.
func (p *RESTProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != nil {
		p.logger.Printf("Signed out %s", p.session.User.UID)
	}
	p.session = nil
	return nil
}

func (p *RESTProvider) CurrentUser() *User {
	s := p.current()
	if s == nil {
		return nil
	}
	u := s.User
	return &u
}

func (p *RESTProvider) IDToken() string {
	s := p.current()
	if s == nil {
		return ""
	}
	return s.IDToken
}

func (p *RESTProvider) current() *Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.session == nil || !p.now().Before(p.session.ExpiresAt) {
		return nil
	}
	return p.session
}

func (p *RESTProvider) authenticate(ctx context.Context, method string, in any) (*Session, error) {
	jsonData, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/%s?key=%s", p.baseURL, method, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
			return nil, fmt.Errorf("identity request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return nil, newError(errResp.Error.Message)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if tr.IDToken == "" {
		return nil, fmt.Errorf("identity response did not include an ID token")
	}

	session := &Session{
		User:         User{UID: tr.LocalID, Email: tr.Email},
		IDToken:      tr.IDToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    p.expiry(tr),
	}

	p.mu.Lock()
	p.session = session
	p.mu.Unlock()

	p.logger.Printf("Signed in %s via %s", session.User.UID, method)
	copied := *session
	return &copied, nil
}

// expiry prefers the token's exp claim and falls back to expiresIn
func (p *RESTProvider) expiry(tr tokenResponse) time.Time {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tr.IDToken, claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	if secs, err := strconv.Atoi(tr.ExpiresIn); err == nil {
		return p.now().Add(time.Duration(secs) * time.Second)
	}
	return p.now().Add(time.Hour)
}

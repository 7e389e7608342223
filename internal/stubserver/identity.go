package stubserver

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/nutriplan/internal/identity"
)

const tokenLifetime = time.Hour

const minPasswordLength = 6

// Account is a provider-side user record
type Account struct {
	UID          string
	Email        string
	passwordHash []byte
}

// Identity issues HS256 ID tokens for email/password accounts held in memory
type Identity struct {
	secret []byte
	apiKey string
	logger *log.Logger
	now    func() time.Time

	mu       sync.Mutex
	accounts map[string]*Account
}

// NewIdentity creates an identity service. An empty apiKey accepts any key.
func NewIdentity(secret, apiKey string, logger *log.Logger) *Identity {
	if logger == nil {
		logger = log.Default()
	}
	return &Identity{
		secret:   []byte(secret),
		apiKey:   apiKey,
		logger:   logger,
		now:      time.Now,
		accounts: make(map[string]*Account),
	}
}

// identityError is an error code in the provider's wire format
type identityError string

func (e identityError) Error() string { return string(e) }

const (
	errEmailExists      identityError = "EMAIL_EXISTS"
	errEmailNotFound    identityError = "EMAIL_NOT_FOUND"
	errInvalidPassword  identityError = "INVALID_PASSWORD"
	errInvalidEmail     identityError = "INVALID_EMAIL"
	errMissingPassword  identityError = "MISSING_PASSWORD"
	errWeakPassword     identityError = "WEAK_PASSWORD : Password should be at least 6 characters"
	errInvalidIdp       identityError = "INVALID_IDP_RESPONSE"
	errInvalidAPIKey    identityError = "API key not valid. Please pass a valid API key."
	errOperationUnknown identityError = "OPERATION_NOT_ALLOWED"
)

// SignUp creates an account and returns its first token
func (i *Identity) SignUp(email, password string) (*Account, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, "", errInvalidEmail
	}
	if password == "" {
		return nil, "", errMissingPassword
	}
	if len(password) < minPasswordLength {
		return nil, "", errWeakPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	i.mu.Lock()
	if _, exists := i.accounts[email]; exists {
		i.mu.Unlock()
		return nil, "", errEmailExists
	}
	acc := &Account{UID: uuid.NewString(), Email: email, passwordHash: hashedPassword}
	i.accounts[email] = acc
	i.mu.Unlock()

	i.logger.Printf("Created account %s for %s", acc.UID, email)
	token, err := i.issue(acc)
	return acc, token, err
}

// SignIn checks a password and returns a fresh token
func (i *Identity) SignIn(email, password string) (*Account, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if password == "" {
		return nil, "", errMissingPassword
	}

	i.mu.Lock()
	acc, ok := i.accounts[email]
	i.mu.Unlock()
	if !ok {
		return nil, "", errEmailNotFound
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return nil, "", errInvalidPassword
	}

	token, err := i.issue(acc)
	return acc, token, err
}

// SignInWithIdp accepts any non-empty Google ID token and maps it to a
// stable account
func (i *Identity) SignInWithIdp(postBody string) (*Account, string, error) {
	values, err := url.ParseQuery(postBody)
	if err != nil || values.Get("id_token") == "" || values.Get("providerId") != "google.com" {
		return nil, "", errInvalidIdp
	}

	googleToken := values.Get("id_token")
	key := "google:" + googleToken
	i.mu.Lock()
	acc, ok := i.accounts[key]
	if !ok {
		uid := uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
		acc = &Account{UID: uid, Email: uid[:8] + "@google.test"}
		i.accounts[key] = acc
	}
	i.mu.Unlock()

	token, err := i.issue(acc)
	return acc, token, err
}

func (i *Identity) issue(acc *Account) (string, error) {
	now := i.now()
	claims := identity.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acc.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
		UserID: acc.UID,
		Email:  acc.Email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks signature and expiry of an ID token
func (i *Identity) ValidateToken(tokenString string) (*identity.Claims, error) {
	claims := &identity.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	PostBody          string `json:"postBody"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// Handle serves POST /v1/:action in the identity-toolkit wire format
func (i *Identity) Handle(c *gin.Context) {
	if i.apiKey != "" && c.Query("key") != i.apiKey {
		identityFailure(c, errInvalidAPIKey)
		return
	}

	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": http.StatusBadRequest, "message": "INVALID_JSON"}})
		return
	}

	var (
		acc   *Account
		token string
		err   error
	)
	switch c.Param("action") {
	case "accounts:signUp":
		acc, token, err = i.SignUp(req.Email, req.Password)
	case "accounts:signInWithPassword":
		acc, token, err = i.SignIn(req.Email, req.Password)
	case "accounts:signInWithIdp":
		acc, token, err = i.SignInWithIdp(req.PostBody)
	default:
		err = errOperationUnknown
	}
	if err != nil {
		identityFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"localId":      acc.UID,
		"email":        acc.Email,
		"idToken":      token,
		"refreshToken": uuid.NewString(),
		"expiresIn":    strconv.Itoa(int(tokenLifetime.Seconds())),
	})
}

func identityFailure(c *gin.Context, err error) {
	var code identityError
	if !errors.As(err, &code) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": http.StatusInternalServerError, "message": err.Error()}})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": http.StatusBadRequest, "message": string(code)}})
}

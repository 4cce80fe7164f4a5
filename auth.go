package main

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenExpiry     = 24 * time.Hour
	tokenIssuer     = "deadwave"
	bcryptCost      = 12
	soloRateWindow  = 60 * time.Second
	maxSoloAttempts = 5
)

var ErrInvalidToken = errors.New("invalid session token")

// Auth signs session tokens and checks admin credentials
type Auth struct {
	jwtSecret []byte
	adminUser string
	adminHash []byte
	now       func() time.Time

	// Rate limiting for unauthenticated score submissions (IP -> attempts)
	rateMu  sync.Mutex
	rateMap map[string]*rateEntry
}

type rateEntry struct {
	Count   int
	ResetAt time.Time
}

type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// NewAuth creates an Auth. An empty adminHash disables the admin API.
func NewAuth(secret []byte, adminUser, adminHash string) *Auth {
	return &Auth{
		jwtSecret: secret,
		adminUser: adminUser,
		adminHash: []byte(adminHash),
		now:       time.Now,
		rateMap:   make(map[string]*rateEntry),
	}
}

// SettingsStore persists small key/value settings
type SettingsStore interface {
	GetSetting(key string) string
	SetSetting(key, value string) error
}

// loadOrCreateSecret picks the token signing key: the configured value, else
// one persisted in settings, else a fresh random key (persisted when
// possible so tokens survive a restart).
func loadOrCreateSecret(configured string, settings SettingsStore, log *zap.Logger) []byte {
	if configured != "" {
		return []byte(configured)
	}
	if settings != nil {
		if h := settings.GetSetting("jwt_secret"); h != "" {
			if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate JWT secret: " + err.Error())
	}
	if settings != nil {
		if err := settings.SetSetting("jwt_secret", hex.EncodeToString(secret)); err != nil {
			log.Warn("could not persist JWT secret", zap.Error(err))
		}
	}
	return secret
}

// IssueToken signs a token that names a server-side session
func (a *Auth) IssueToken(sessionID string) (string, error) {
	now := a.now()
	claims := sessionClaims{
		SID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenExpiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(a.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// ParseToken validates a token and returns the session id it carries
func (a *Auth) ParseToken(tokenStr string) (string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(a.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.SID == "" {
		return "", ErrInvalidToken
	}
	return claims.SID, nil
}

// AdminEnabled reports whether admin credentials are configured
func (a *Auth) AdminEnabled() bool {
	return a.adminUser != "" && len(a.adminHash) > 0
}

// CheckAdmin verifies basic-auth credentials against the bcrypt hash
func (a *Auth) CheckAdmin(user, password string) bool {
	if !a.AdminEnabled() {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.adminUser)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.adminHash, []byte(password)) == nil
	return userOK && passOK
}

// HashPassword produces a bcrypt hash for ADMIN_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// checkRate limits solo score submissions per IP
func (a *Auth) checkRate(ip string) bool {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()

	now := a.now()
	entry, ok := a.rateMap[ip]
	if !ok || now.After(entry.ResetAt) {
		a.rateMap[ip] = &rateEntry{Count: 1, ResetAt: now.Add(soloRateWindow)}
		return true
	}
	entry.Count++
	return entry.Count <= maxSoloAttempts
}

// pruneRate drops expired rate entries
func (a *Auth) pruneRate() {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()
	now := a.now()
	for ip, e := range a.rateMap {
		if now.After(e.ResetAt) {
			delete(a.rateMap, ip)
		}
	}
}

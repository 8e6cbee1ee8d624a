package auth

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/crypto/hkdf"
)

// cookieKeys expands sessionKey into a 64-byte HMAC key and a 32-byte AES
// key so the stored token is both signed and encrypted.
func cookieKeys(sessionKey string) (hashKey, blockKey []byte, err error) {
	r := hkdf.New(sha256.New, []byte(sessionKey), nil, []byte("churchhub session cookie"))
	hashKey = make([]byte, 64)
	blockKey = make([]byte, 32)
	if _, err = io.ReadFull(r, hashKey); err != nil {
		return nil, nil, err
	}
	if _, err = io.ReadFull(r, blockKey); err != nil {
		return nil, nil, err
	}
	return hashKey, blockKey, nil
}

// NewSessionStore builds the cookie store the guard reads tokens from.
//
// In production (secure=true) cookies are Secure + SameSite=None so the
// dashboard can call the API cross-site over HTTPS. In local dev over
// http://localhost use secure=false.
func NewSessionStore(sessionKey, domain string, secure bool, logger *zap.Logger) (*sessions.CookieStore, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	hashKey, blockKey, err := cookieKeys(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("derive session keys: %w", err)
	}
	store := sessions.NewCookieStore(hashKey, blockKey)
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))
	return store, nil
}

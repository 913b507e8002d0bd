package main

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/pbkdf2"
)

const sessionTTL = 12 * time.Hour

func newSessionStore() *cache.Cache {
	return cache.New(sessionTTL, 30*time.Minute)
}

// verifyPassword checks the candidate against the configured credential.
// LAWYER_PASS_HASH takes precedence over the plain LAWYER_PASS and must look
// like pbkdf2_sha256$iterations$salt$base64key (SHA-256, 32-byte key).
func verifyPassword(cfg *Config, password string) bool {
	if cfg.LawyerPassHash != "" {
		if !strings.HasPrefix(cfg.LawyerPassHash, "pbkdf2_sha256$") {
			return false
		}
		parts := strings.SplitN(cfg.LawyerPassHash, "$", 4)
		if len(parts) != 4 {
			return false
		}
		iterations, err := strconv.Atoi(parts[1])
		if err != nil || iterations <= 0 || parts[2] == "" || parts[3] == "" {
			return false
		}
		derived := pbkdf2.Key([]byte(password), []byte(parts[2]), iterations, 32, sha256.New)
		candidate := base64.StdEncoding.EncodeToString(derived)
		return subtle.ConstantTimeCompare([]byte(parts[3]), []byte(candidate)) == 1
	}
	if cfg.LawyerPass != "" {
		return subtle.ConstantTimeCompare([]byte(cfg.LawyerPass), []byte(password)) == 1
	}
	return false
}

// Login checks the operator credentials and issues a session cookie on
// success.
func (s *server) Login() http.HandlerFunc {
	type loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if !s.cfg.LoginConfigured() {
			s.Respond(w, r, http.StatusServiceUnavailable, errLoginNotConfigured)
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Respond(w, r, http.StatusBadRequest, errInvalidBody)
			return
		}

		userOk := subtle.ConstantTimeCompare([]byte(s.cfg.LawyerUser), []byte(strings.TrimSpace(req.Username))) == 1
		passOk := verifyPassword(s.cfg, req.Password)
		if !userOk || !passOk {
			log.Warn().Str("username", req.Username).Msg("Dashboard login rejected")
			s.Respond(w, r, http.StatusUnauthorized, errBadCredentials)
			return
		}

		token := uuid.NewString()
		s.sessions.Set(token, s.cfg.LawyerUser, cache.DefaultExpiration)

		http.SetCookie(w, &http.Cookie{
			Name:     s.cfg.SessionName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})

		log.Info().Str("username", s.cfg.LawyerUser).Msg("Dashboard login succeeded")
		s.Respond(w, r, http.StatusOK, "Login successful")
	}
}

// Logout revokes the current session and expires the cookie.
func (s *server) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(s.cfg.SessionName); err == nil {
			s.sessions.Delete(c.Value)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     s.cfg.SessionName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		s.Respond(w, r, http.StatusOK, "Logged out")
	}
}

// requireSession gates the dashboard routes behind a valid session cookie.
func (s *server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(s.cfg.SessionName)
		if err != nil {
			s.Respond(w, r, http.StatusUnauthorized, errUnauthorized)
			return
		}
		if _, found := s.sessions.Get(c.Value); !found {
			s.Respond(w, r, http.StatusUnauthorized, errUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	errInvalidBody        = errors.New("Invalid request body.")
	errMissingFields      = errors.New("Message and clientId are required.")
	errMissingClientID    = errors.New("clientId is required.")
	errMissingMessageID   = errors.New("Message ID is required.")
	errInternal           = errors.New("Internal server error.")
	errUnauthorized       = errors.New("Unauthorized.")
	errBadCredentials     = errors.New("Usuario ou senha invalidos.")
	errLoginNotConfigured = errors.New("Login nao configurado. Configure LAWYER_USER e LAWYER_PASS ou LAWYER_PASS_HASH.")
)

// Respond writes a JSON response. Errors become {"error": ...}, bare strings
// become {"message": ...}, anything else is marshaled as-is.
func (s *server) Respond(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")

	var payload interface{}
	switch v := data.(type) {
	case error:
		payload = map[string]string{"error": v.Error()}
	case string:
		payload = map[string]string{"message": v}
	default:
		payload = data
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Could not marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error."}`))
		return
	}

	w.WriteHeader(status)
	w.Write(body)
}

// generateClientID returns an opaque random hex token identifying one
// conversation.
func generateClientID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// clientLocks hands out one mutex per client id so two near-simultaneous
// messages from the same client cannot interleave their state machine
// read-modify-write cycles.
type clientLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newClientLocks() *clientLocks {
	return &clientLocks{locks: make(map[string]*sync.Mutex)}
}

func (c *clientLocks) For(clientID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lk, ok := c.locks[clientID]
	if !ok {
		lk = &sync.Mutex{}
		c.locks[clientID] = lk
	}
	return lk
}

// logRequest is the access-log middleware for every route.
func (s *server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

type server struct {
	router   *mux.Router
	store    *Store
	ai       *AIClient
	cfg      *Config
	sessions *cache.Cache
	locks    *clientLocks
}

func newServer(cfg *Config, store *Store, ai *AIClient) *server {
	s := &server{
		router:   mux.NewRouter(),
		store:    store,
		ai:       ai,
		cfg:      cfg,
		sessions: newSessionStore(),
		locks:    newClientLocks(),
	}
	s.routes()
	return s
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// StartChat opens a new conversation: it mints a client token, logs the
// welcome message and creates the state row at get_name.
func (s *server) StartChat() http.HandlerFunc {
	type startResponse struct {
		ClientID string `json:"clientId"`
		Message  string `json:"message"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := generateClientID()
		if err != nil {
			log.Error().Err(err).Msg("Could not generate client id")
			s.Respond(w, r, http.StatusInternalServerError, errInternal)
			return
		}

		if _, err := s.store.InsertMessage(clientID, WelcomeMessage, false, false); err != nil {
			log.Error().Err(err).Msg("Could not save welcome message")
			s.Respond(w, r, http.StatusInternalServerError, errInternal)
			return
		}
		if _, err := s.store.CreateClientState(clientID); err != nil {
			log.Error().Err(err).Str("clientID", clientID).Msg("Could not create client state")
			s.Respond(w, r, http.StatusInternalServerError, errInternal)
			return
		}

		log.Info().Str("clientID", clientID).Msg("Conversation started")
		s.Respond(w, r, http.StatusOK, startResponse{ClientID: clientID, Message: WelcomeMessage})
	}
}

// SendMessage runs one full intake turn: log the inbound message, advance the
// state machine, compose the prompt, ask the provider and fall back to the
// scripted reply when it fails.
func (s *server) SendMessage() http.HandlerFunc {
	type sendRequest struct {
		Message  string `json:"message"`
		ClientID string `json:"clientId"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Respond(w, r, http.StatusBadRequest, errInvalidBody)
			return
		}
		message := strings.TrimSpace(req.Message)
		clientID := strings.TrimSpace(req.ClientID)
		if message == "" || clientID == "" {
			s.Respond(w, r, http.StatusBadRequest, errMissingFields)
			return
		}

		// Serializes turns of the same client; different clients proceed
		// independently.
		lk := s.locks.For(clientID)
		lk.Lock()
		defer lk.Unlock()

		state, err := s.store.EnsureClientState(clientID)
		if err != nil {
			log.Error().Err(err).Str("clientID", clientID).Msg("Could not load client state")
			s.Respond(w, r, http.StatusInternalServerError, errInternal)
			return
		}

		// The inbound message is logged before the prompt is composed so the
		// history handed to the provider always contains it.
		if _, err := s.store.InsertMessage(clientID, message, true, false); err != nil {
			log.Error().Err(err).Str("clientID", clientID).Msg("Could not save client message")
			s.Respond(w, r, http.StatusInternalServerError, errInternal)
			return
		}

		fallback := Advance(state, message)

		if err := s.store.UpdateClientState(state); err != nil {
			log.Error().Err(err).Str("clientID", clientID).Msg("Could not update client state")
			s.Respond(w, r, http.StatusInternalServerError, errInternal)
			return
		}
		if err := s.store.SyncMessageDetails(state); err != nil {
			log.Error().Err(err).Str("clientID", clientID).Msg("Could not back-fill message details")
			s.Respond(w, r, http.StatusInternalServerError, errInternal)
			return
		}

		history, err := s.store.ListClientMessages(clientID)
		if err != nil {
			log.Error().Err(err).Str("clientID", clientID).Msg("Could not load message history")
			s.Respond(w, r, http.StatusInternalServerError, errInternal)
			return
		}

		reply, err := s.ai.Complete(r.Context(), BuildPrompt(state, history))
		if err != nil {
			if errors.Is(err, ErrAIDisabled) {
				log.Debug().Str("clientID", clientID).Msg("Provider disabled, using scripted reply")
			} else {
				log.Warn().Err(err).Str("clientID", clientID).Msg("Provider call failed, using scripted reply")
			}
			reply = fallback
		}

		if _, err := s.store.InsertMessage(clientID, reply, false, false); err != nil {
			log.Error().Err(err).Str("clientID", clientID).Msg("Could not save assistant reply")
			s.Respond(w, r, http.StatusInternalServerError, errInternal)
			return
		}
		if err := s.store.SyncMessageDetails(state); err != nil {
			log.Error().Err(err).Str("clientID", clientID).Msg("Could not back-fill message details")
			s.Respond(w, r, http.StatusInternalServerError, errInternal)
			return
		}

		s.Respond(w, r, http.StatusOK, reply)
	}
}

// ClientMessages returns the chronological transcript of one client.
func (s *server) ClientMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID := strings.TrimSpace(mux.Vars(r)["clientId"])
		if clientID == "" {
			s.Respond(w, r, http.StatusBadRequest, errMissingClientID)
			return
		}
		msgs, err := s.store.ListClientMessages(clientID)
		if err != nil {
			log.Error().Err(err).Str("clientID", clientID).Msg("Could not list client messages")
			s.Respond(w, r, http.StatusInternalServerError, errInternal)
			return
		}
		s.Respond(w, r, http.StatusOK, msgs)
	}
}

// DashboardMessages returns the most recent client-authored message of every
// conversation for the operator list, newest first.
func (s *server) DashboardMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msgs, err := s.store.ListLatestPerClient()
		if err != nil {
			log.Error().Err(err).Msg("Could not list dashboard messages")
			s.Respond(w, r, http.StatusInternalServerError, errInternal)
			return
		}
		s.Respond(w, r, http.StatusOK, msgs)
	}
}

// OperatorReply inserts a message written by the operator. It is stored
// assistant-authored and already read.
func (s *server) OperatorReply() http.HandlerFunc {
	type replyRequest struct {
		Message  string `json:"message"`
		ClientID string `json:"clientId"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req replyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Respond(w, r, http.StatusBadRequest, errInvalidBody)
			return
		}
		message := strings.TrimSpace(req.Message)
		clientID := strings.TrimSpace(req.ClientID)
		if message == "" || clientID == "" {
			s.Respond(w, r, http.StatusBadRequest, errMissingFields)
			return
		}

		if _, err := s.store.InsertMessage(clientID, message, false, true); err != nil {
			log.Error().Err(err).Str("clientID", clientID).Msg("Could not save operator reply")
			s.Respond(w, r, http.StatusInternalServerError, errInternal)
			return
		}
		s.Respond(w, r, http.StatusOK, "Message sent successfully")
	}
}

// MarkRead flags one message as read for the read-receipt indicator.
func (s *server) MarkRead() http.HandlerFunc {
	type readRequest struct {
		MessageID int64 `json:"messageId"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req readRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Respond(w, r, http.StatusBadRequest, errInvalidBody)
			return
		}
		if req.MessageID <= 0 {
			s.Respond(w, r, http.StatusBadRequest, errMissingMessageID)
			return
		}
		if err := s.store.MarkMessageRead(req.MessageID); err != nil {
			log.Error().Err(err).Int64("messageID", req.MessageID).Msg("Could not mark message as read")
			s.Respond(w, r, http.StatusInternalServerError, errInternal)
			return
		}
		s.Respond(w, r, http.StatusOK, "Message marked as read")
	}
}

// DeleteMessage removes one message row.
func (s *server) DeleteMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil || id <= 0 {
			s.Respond(w, r, http.StatusBadRequest, errMissingMessageID)
			return
		}
		if err := s.store.DeleteMessage(id); err != nil {
			log.Error().Err(err).Int64("messageID", id).Msg("Could not delete message")
			s.Respond(w, r, http.StatusInternalServerError, errInternal)
			return
		}
		s.Respond(w, r, http.StatusOK, "Message deleted")
	}
}

// DeleteClient purges one conversation: all messages plus the state row.
func (s *server) DeleteClient() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID := strings.TrimSpace(mux.Vars(r)["clientId"])
		if clientID == "" {
			s.Respond(w, r, http.StatusBadRequest, errMissingClientID)
			return
		}
		if err := s.store.DeleteClient(clientID); err != nil {
			log.Error().Err(err).Str("clientID", clientID).Msg("Could not delete client")
			s.Respond(w, r, http.StatusInternalServerError, errInternal)
			return
		}
		log.Info().Str("clientID", clientID).Msg("Client purged")
		s.Respond(w, r, http.StatusOK, "Client messages deleted")
	}
}

// DeleteAll wipes every conversation.
func (s *server) DeleteAll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.DeleteAll(); err != nil {
			log.Error().Err(err).Msg("Could not delete all messages")
			s.Respond(w, r, http.StatusInternalServerError, errInternal)
			return
		}
		log.Info().Msg("All conversations purged")
		s.Respond(w, r, http.StatusOK, "All messages deleted")
	}
}

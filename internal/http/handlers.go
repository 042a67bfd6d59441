package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/scorekeeper/internal/club"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
	"github.com/mauv0809/scorekeeper/internal/registrar"
)

const maxBodyBytes = 1 << 20

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) RegisterUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerUserRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
			writeError(w, http.StatusBadRequest, "invalid_input", "name is required")
			return
		}
		if req.Team == nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "team is required")
			return
		}

		user, err := s.Store.CreateUser(r.Context(), *req.Name, *req.Team)
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		s.Metrics.IncUsersRegistered()
		s.publishUserEvent(r.Context(), pubsub.EventUserRegistered, *user)
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) ListUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := s.Store.ListUsers(r.Context())
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		log.FromContext(r.Context()).Debug("Listing users", "count", len(users))
		writeJSON(w, http.StatusOK, users)
	}
}

func (s *Server) GetUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		user, err := s.Store.GetUser(r.Context(), id)
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) UpdateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var req updateUserRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
			writeError(w, http.StatusBadRequest, "invalid_input", "name is required")
			return
		}

		user, err := s.Store.UpdateUserName(r.Context(), id, *req.Name)
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) DeleteUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		user, err := s.Store.DeleteUser(r.Context(), id)
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		s.Metrics.IncUsersDeleted()
		s.publishUserEvent(r.Context(), pubsub.EventUserDeleted, *user)
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Store.ListMatches(r.Context())
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		log.FromContext(r.Context()).Debug("Listing matches", "count", len(matches))
		writeJSON(w, http.StatusOK, matches)
	}
}

func (s *Server) GetMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		match, err := s.Store.GetMatch(r.Context(), id)
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, match)
	}
}

func (s *Server) AddMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registrar.MatchRequest
		if !decodeBody(w, r, &req) {
			return
		}
		isDryRun := isDryRunFromContext(r)

		match, err := s.Registrar.RegisterMatch(r.Context(), req, isDryRun)
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, match)
	}
}

// publishUserEvent is best effort: the user change is already committed.
func (s *Server) publishUserEvent(ctx context.Context, eventType pubsub.EventType, user club.User) {
	event := pubsub.UserEvent{
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		User:       user,
	}
	if err := s.pubsub.SendMessage(ctx, eventType, event); err != nil {
		log.FromContext(ctx).Error("Failed to publish user event", "event", eventType, "userID", user.ID, "error", err)
	}
}

// decodeBody decodes a JSON request body into v. It writes a 400 response
// and returns false when the body is not valid JSON for v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.FromContext(r.Context()).Warn("Failed to decode request body", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// pathID parses the {id} path segment. It writes a 400 response and returns
// false when the segment is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", fmt.Sprintf("invalid id %q", raw))
		return 0, false
	}
	return id, true
}

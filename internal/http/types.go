package http

import (
	"net/http"

	"github.com/mauv0809/scorekeeper/internal/club"
	"github.com/mauv0809/scorekeeper/internal/metrics"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
	"github.com/mauv0809/scorekeeper/internal/registrar"
)

type Server struct {
	Store          club.ClubStore
	Registrar      *registrar.Registrar
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// registerUserRequest is the body of POST /register. Pointers tell a missing
// field apart from an empty one.
type registerUserRequest struct {
	Name *string `json:"name"`
	Team *string `json:"team"`
}

// updateUserRequest is the body of PUT /user/{id}.
type updateUserRequest struct {
	Name *string `json:"name"`
}

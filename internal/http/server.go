package http

import (
	"net/http"

	"github.com/mauv0809/scorekeeper/internal/club"
	"github.com/mauv0809/scorekeeper/internal/metrics"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
	"github.com/mauv0809/scorekeeper/internal/registrar"
)

func NewServer(store club.ClubStore, registrar *registrar.Registrar, metricsSvc metrics.Metrics, metricsHandler http.Handler, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Registrar:      registrar,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(s.MyHandler(), requestIDMiddleware, paramsMiddleware, authMiddleware)
	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), requestIDMiddleware, paramsMiddleware))

	s.Router.Handle("POST /register", Chain(s.RegisterUserHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("GET /users", Chain(s.ListUsersHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("GET /user/{id}", Chain(s.GetUserHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("PUT /user/{id}", Chain(s.UpdateUserHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("DELETE /user/{id}", Chain(s.DeleteUserHandler(), requestIDMiddleware, paramsMiddleware))

	s.Router.Handle("GET /matches", Chain(s.ListMatchesHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("GET /match/{id}", Chain(s.GetMatchHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("POST /add/match", Chain(s.AddMatchHandler(), requestIDMiddleware, paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

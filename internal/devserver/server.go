// Package devserver is a local fake support backend: the REST
// collaborator endpoints plus a websocket hub speaking the channel
// protocol, enough to run the sync engine end to end without a real
// backend. It holds everything in memory and is not meant for
// production.
package devserver

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"chatsync/internal/config"
	"chatsync/internal/lib/sl"
)

type Server struct {
	conf *config.Config
	log  *slog.Logger
	hub  *Hub
	st   *state
}

// New creates a dev server and seeds one open conversation.
func New(conf *config.Config, log *slog.Logger) *Server {
	st := newState()
	lg := log.With(sl.Module("devserver"))

	conv := st.seed(conf.Account.ID)
	lg.Info("seeded demo conversation",
		slog.String("conversation_id", conv.ID),
		slog.String("customer_id", conv.CustomerID),
	)

	return &Server{
		conf: conf,
		log:  lg,
		hub:  newHub(st, lg),
		st:   st,
	}
}

// Router builds the HTTP surface: REST collaborators and the websocket
// endpoint.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Get("/socket/websocket", func(w http.ResponseWriter, r *http.Request) {
		serveWs(s.hub, s.log, w, r)
	})

	router.Route("/api", func(api chi.Router) {
		api.Use(render.SetContentType(render.ContentTypeJSON))

		api.Route("/conversations", func(r chi.Router) {
			r.Get("/", s.listConversations)
			r.Post("/", s.createConversation)
			r.Get("/{id}/messages", s.listMessages)
			r.Post("/{id}/close", s.closeConversation)
			r.Post("/{id}/reopen", s.reopenConversation)
			r.Post("/{id}/priority", s.markPriority)
			r.Delete("/{id}/priority", s.removePriority)
			r.Post("/{id}/assignee", s.assignUser)
		})
		api.Route("/customers", func(r chi.Router) {
			r.Post("/", s.createCustomer)
			r.Get("/{id}/conversations", s.listCustomerConversations)
		})
	})

	return router
}

// Run serves until the listener fails. Blocking, like the API server it
// stands in for.
func (s *Server) Run() error {
	addr := fmt.Sprintf("%s:%s", s.conf.DevServer.BindIP, s.conf.DevServer.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.log.Info("starting dev server", slog.String("address", addr))

	httpLog := slog.NewLogLogger(s.log.Handler(), slog.LevelError)
	server := &http.Server{
		Handler:  s.Router(),
		ErrorLog: httpLog,
	}
	return server.Serve(listener)
}

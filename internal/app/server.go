package app

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"lastochka/messenger/internal/handler"
	"lastochka/messenger/internal/pkg/logger"
)

type Server struct {
	router *mux.Router
}

func NewServer(
	authMiddleware *handler.AuthMiddleware,
	userHandler *handler.UserHandler,
	chatHandler *handler.ChatHandler,
	messageHandler *handler.MessageHandler,
	draftHandler *handler.DraftHandler,
	reactionHandler *handler.ReactionHandler,
	readStatusHandler *handler.ReadStatusHandler,
	blackListHandler *handler.BlackListHandler,
	eventsHandler *handler.EventsHandler,
) *Server {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	userHandler.RegisterPublicRoutes(api)

	private := api.NewRoute().Subrouter()
	private.Use(authMiddleware.Middleware)
	userHandler.RegisterRoutes(private)
	chatHandler.RegisterRoutes(private)
	messageHandler.RegisterRoutes(private)
	draftHandler.RegisterRoutes(private)
	reactionHandler.RegisterRoutes(private)
	readStatusHandler.RegisterRoutes(private)
	blackListHandler.RegisterRoutes(private)
	eventsHandler.RegisterRoutes(private)

	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	router.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	return &Server{router: router}
}

func (s *Server) Run(host, port string) error {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With"}),
	)

	srv := &http.Server{
		Handler: cors(s.router),
		Addr:    host + ":" + port,
		// WriteTimeout не ставим: event-stream'ы живут дольше любого таймаута.
		ReadTimeout: 15 * time.Second,
	}

	logger.L.Info("server starting", zap.String("addr", srv.Addr))
	return srv.ListenAndServe()
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/chris/habit-pools/pkg/api"
	"github.com/chris/habit-pools/pkg/handlers/lifelines"
	"github.com/chris/habit-pools/pkg/handlers/pools"
	"github.com/chris/habit-pools/pkg/handlers/profiles"
	"github.com/chris/habit-pools/pkg/handlers/proofs"
	"github.com/chris/habit-pools/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// ApiHandler implements the generated server interface by composing the
// per-resource handlers.
type ApiHandler struct {
	*pools.PoolsHandler
	*proofs.ProofsHandler
	*lifelines.LifelinesHandler
	*profiles.ProfilesHandler
}

// Services are the domain services behind the API.
type Services struct {
	Pools    pools.PoolService
	Settler  pools.Settler
	Pipeline proofs.Pipeline
	Reviews  proofs.Reviews
	Bank     lifelines.Bank
	Profiles profiles.ProfileService
}

// NewApiHandler creates a new ApiHandler.
func NewApiHandler(s Services) *ApiHandler {
	return &ApiHandler{
		PoolsHandler:     pools.NewPoolsHandler(s.Pools, s.Settler),
		ProofsHandler:    proofs.NewProofsHandler(s.Pipeline, s.Reviews),
		LifelinesHandler: lifelines.NewLifelinesHandler(s.Bank),
		ProfilesHandler:  profiles.NewProfilesHandler(s.Profiles),
	}
}

// Make sure we conform to the interface
var _ api.ServerInterface = (*ApiHandler)(nil)

// NewRouter mounts the API, and the websocket endpoint when ws is not nil,
// on a chi router with request logging.
func NewRouter(handler api.ServerInterface, ws http.Handler, logger *slog.Logger) chi.Router {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.NewStructuredLogger(logger))
	router.Use(chimiddleware.Recoverer)

	if ws != nil {
		router.Handle("/ws", ws)
	}
	api.HandlerWithOptions(handler, api.ChiServerOptions{
		BaseRouter: router,
		ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		},
	})
	return router
}

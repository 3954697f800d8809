package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/szalonlabs/booking-api/internal/booking/service"
	"github.com/szalonlabs/booking-api/internal/booking/store"
	"github.com/szalonlabs/booking-api/pkg/httpx"
	"github.com/szalonlabs/booking-api/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	TokenService       *service.TokenService
	UserService        *service.UserService
	AppointmentService *service.AppointmentService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerAppointments()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /auth/register - strict rate limit by IP (account creation)
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(&RegisterHandler{Users: r.UserService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/login - strict rate limit by IP + submitted email so a
	// single source cannot brute force one account from many addresses
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(&LoginHandler{Users: r.UserService, Tokens: r.TokenService},
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	// POST /auth/forgot-password - strict rate limit (mail sender abuse)
	r.Mux.Handle("POST /auth/forgot-password",
		httpx.Chain(&ForgotPasswordHandler{Users: r.UserService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/reset-password - strict rate limit (token guessing)
	r.Mux.Handle("POST /auth/reset-password",
		httpx.Chain(&ResetPasswordHandler{Users: r.UserService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{Users: r.UserService}
	authn := RequireUser(r.TokenService, r.UserService)

	r.Mux.Handle("PATCH /auth/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			authn,
			httpx.RateLimitByBearer(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /auth/users/{id}/password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
			authn,
			httpx.RateLimitByBearer(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("DELETE /auth/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			authn,
			httpx.RateLimitByBearer(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAppointments() {
	h := &AppointmentsHandler{Appointments: r.AppointmentService}
	authn := RequireUser(r.TokenService, r.UserService)

	r.Mux.Handle("POST /appointments",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			authn,
			httpx.RateLimitByBearer(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /appointments/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			authn,
			httpx.RateLimitByBearer(httpx.ModerateLimit),
		),
	)

	// The busy/free view is deliberately unauthenticated.
	r.Mux.Handle("GET /appointments/public",
		httpx.Chain(http.HandlerFunc(h.HandleListPublic),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /appointments/me",
		httpx.Chain(http.HandlerFunc(h.HandleListMine),
			authn,
			httpx.RateLimitByBearer(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /{$}",
		httpx.Chain(WelcomeHandler(),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/idgate/internal/gateway/service"
	"github.com/aussiebroadwan/idgate/internal/gateway/store"
	"github.com/aussiebroadwan/idgate/pkg/httpx"
	"github.com/aussiebroadwan/idgate/pkg/jwtx"
	"github.com/aussiebroadwan/idgate/pkg/slogx"

	_ "github.com/aussiebroadwan/idgate/api/gateway" // Swagger docs
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// AdminAuthority is the mapped authority required for the user management endpoints.
const AdminAuthority = "ROLE_ADMIN"

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys               *jwtx.KeySet
	verifier           jwtx.Verifier
	defaultAuthorities []string
	buildVersion       string
	startTime          time.Time
	logger             *slog.Logger

	store        store.Store
	LoginService *service.LoginService
	UserService  *service.UserService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	defaultAuthorities []string,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:                http.NewServeMux(),
		keys:               keys,
		verifier:           verifier,
		defaultAuthorities: defaultAuthorities,
		buildVersion:       buildVersion,
		startTime:          time.Now(),
		store:              st,
		logger:             logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Identity Gateway API
//	@version		0.1.0
//	@description	Authentication and user provisioning gateway in front of a Keycloak identity provider.
//	@description
//	@description				Credential exchange uses the OAuth2 password grant against the provider; issued
//	@description				access tokens are verified locally against the provider's JWKS (RS256).
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/idgate
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token issued by the identity provider. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /login - strict rate limit by IP (authentication attempts)
	loginHandler := &LoginHandler{LoginService: r.LoginService}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /userinfo - any verified token, lenient rate limit by subject
	userInfoHandler := &UserInfoHandler{UserService: r.UserService}
	r.Mux.Handle("GET /v1/auth/userinfo",
		httpx.Chain(http.HandlerFunc(userInfoHandler.HandleUserInfo),
			httpx.AuthnMiddleware(r.verifier, r.defaultAuthorities),
			httpx.RateLimitBySubject(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	// All user management endpoints require the admin authority
	admin := func(handler http.Handler, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(handler,
			httpx.AuthnMiddleware(r.verifier, r.defaultAuthorities),
			httpx.RequireAnyAuthority(AdminAuthority),
			httpx.RateLimitBySubject(limit),
		)
	}

	r.Mux.Handle("POST /v1/auth/users", admin(http.HandlerFunc(h.HandleCreate), httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/auth/users", admin(http.HandlerFunc(h.HandleList), httpx.LenientLimit))
	r.Mux.Handle("GET /v1/auth/users/{id}", admin(http.HandlerFunc(h.HandleGet), httpx.LenientLimit))
	r.Mux.Handle("PUT /v1/auth/users/{id}", admin(http.HandlerFunc(h.HandleUpdate), httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/auth/users/{id}", admin(http.HandlerFunc(h.HandleDelete), httpx.ModerateLimit))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys))
	r.Mux.Handle("GET /metrics", promhttp.Handler())
}

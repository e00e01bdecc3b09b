package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/qaboard/internal/qa/service"
	"github.com/aussiebroadwan/qaboard/internal/qa/store"
	"github.com/aussiebroadwan/qaboard/pkg/httpx"
	"github.com/aussiebroadwan/qaboard/pkg/jwtx"
	"github.com/aussiebroadwan/qaboard/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store           store.Store
	AccountService  *service.AccountService
	SessionService  *service.SessionService
	OTPService      *service.OTPService
	InviteService   *service.InviteService
	QuestionService *service.QuestionService
	AnswerService   *service.AnswerService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
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
	r.registerSystem()
	r.registerCredentials()
	r.registerSessions()
	r.registerAccounts()
	r.registerAdmin()
	r.registerQuestions()
	r.registerAnswers()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// member is the chain shared by every endpoint a signed-in user may call.
// One-time password sessions are turned away.
func (r *Router) member(h http.Handler) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RejectAMR(jwtx.AMROTP),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
}

func (r *Router) admin(h http.Handler) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RejectAMR(jwtx.AMROTP),
		httpx.RequireRole("admin"),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
}

func (r *Router) registerSystem() {
	// Monitoring may poll frequently.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerCredentials() {
	r.Mux.Handle("POST /v1/credentials/check",
		httpx.Chain(&CredentialCheckHandler{},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSessions() {
	login := &SessionHandler{
		AccountService: r.AccountService,
		SessionService: r.SessionService,
	}

	// Brute force protection keys on the attempted username as well as the IP.
	r.Mux.Handle("POST /v1/sessions",
		httpx.Chain(login,
			httpx.RateLimitByIPAndField(httpx.StrictLimit, "username"),
		),
	)

	redeem := &OTPRedeemHandler{OTPService: r.OTPService}
	r.Mux.Handle("POST /v1/otp/redeem",
		httpx.Chain(redeem,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAMR(jwtx.AMROTP),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAccounts() {
	register := &RegisterHandler{AccountService: r.AccountService}
	r.Mux.Handle("POST /v1/users/register",
		httpx.Chain(register,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	me := &MeHandler{AccountService: r.AccountService}
	r.Mux.Handle("GET /v1/users/me", r.member(http.HandlerFunc(me.HandleGet)))
	r.Mux.Handle("PATCH /v1/users/me", r.member(http.HandlerFunc(me.HandlePatch)))
}

func (r *Router) registerAdmin() {
	h := &UsersHandler{
		AccountService: r.AccountService,
		OTPService:     r.OTPService,
	}
	r.Mux.Handle("GET /v1/users", r.admin(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("POST /v1/users", r.admin(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("DELETE /v1/users/{username}", r.admin(http.HandlerFunc(h.HandleDelete)))
	r.Mux.Handle("PUT /v1/users/{username}/role", r.admin(http.HandlerFunc(h.HandleChangeRole)))
	r.Mux.Handle("POST /v1/users/{username}/otp", r.admin(http.HandlerFunc(h.HandleIssueOTP)))

	invites := &InviteMintHandler{InviteService: r.InviteService}
	r.Mux.Handle("POST /v1/invitations", r.admin(invites))
}

func (r *Router) registerQuestions() {
	h := &QuestionsHandler{QuestionService: r.QuestionService}

	r.Mux.Handle("GET /v1/questions", r.member(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("POST /v1/questions", r.member(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/questions/{id}", r.member(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("PUT /v1/questions/{id}", r.member(http.HandlerFunc(h.HandleEdit)))
	r.Mux.Handle("DELETE /v1/questions/{id}", r.member(http.HandlerFunc(h.HandleDelete)))
	r.Mux.Handle("POST /v1/questions/{id}/resolve", r.member(http.HandlerFunc(h.HandleResolve)))
	r.Mux.Handle("POST /v1/questions/{id}/close", r.member(http.HandlerFunc(h.HandleClose)))
	r.Mux.Handle("POST /v1/questions/{id}/reopen", r.member(http.HandlerFunc(h.HandleReopen)))
}

func (r *Router) registerAnswers() {
	h := &AnswersHandler{AnswerService: r.AnswerService}

	r.Mux.Handle("GET /v1/questions/{id}/answers", r.member(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("POST /v1/questions/{id}/answers", r.member(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("PUT /v1/answers/{id}", r.member(http.HandlerFunc(h.HandleEdit)))
	r.Mux.Handle("DELETE /v1/answers/{id}", r.member(http.HandlerFunc(h.HandleDelete)))
	r.Mux.Handle("POST /v1/answers/{id}/upvote", r.member(http.HandlerFunc(h.HandleUpvote)))
	r.Mux.Handle("POST /v1/answers/{id}/read", r.member(http.HandlerFunc(h.HandleMarkRead)))
}

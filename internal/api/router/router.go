package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	// Registra a especificação OpenAPI servida em /swagger/
	_ "orderchat/docs"

	"orderchat/internal/api/chatroom"
	"orderchat/internal/api/message"
	"orderchat/internal/api/order"
	"orderchat/internal/api/user"
	"orderchat/internal/pkg/cache"
	"orderchat/internal/pkg/logger"
	"orderchat/internal/pkg/metrics"
	"orderchat/internal/pkg/middleware"
)

// Handlers agrupa os handlers já inicializados por injeção de dependências.
type Handlers struct {
	User     *user.Handler
	Order    *order.Handler
	Chatroom *chatroom.Handler
	Message  *message.Handler
	Realtime http.Handler
}

// RateLimit configura o limitador aplicado às rotas /auth públicas.
// Cache nil desliga o limitador.
type RateLimit struct {
	Cache  cache.Client
	Limit  int
	Window time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(h Handlers, tokenSvc middleware.TokenService, limit RateLimit, log logger.Logger) http.Handler {
	r := chi.NewRouter()

	// --- 1. Middlewares globais ---
	// Sem chimw.RealIP: o rate limiter usa o IP do par TCP, que o cliente não forja.
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)

	// --- 2. Rotas operacionais ---
	r.Get("/ping", PingHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	authMW := middleware.NewAuthMiddleware(tokenSvc, log)

	// --- 3. Autenticação ---
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if limit.Cache != nil {
				r.Use(middleware.RateLimiter(limit.Cache, limit.Limit, limit.Window, log))
			}
			r.Post("/register", h.User.RegisterUserHandler)
			r.Post("/login", h.User.LoginUserHandler)
		})
		r.With(authMW).Get("/users", h.User.ListUsersHandler)
	})

	// --- 4. Rotas protegidas ---
	r.Group(func(r chi.Router) {
		r.Use(authMW)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.Order.CreateOrderHandler)
			r.Get("/", h.Order.ListOrdersHandler)
			r.Get("/{id}", h.Order.GetOrderHandler)
			r.Patch("/{id}/status", h.Order.UpdateOrderStatusHandler)
		})

		r.Route("/chatrooms", func(r chi.Router) {
			r.Get("/", h.Chatroom.ListChatroomsHandler)
			r.Get("/{id}", h.Chatroom.GetChatroomHandler)
			r.Patch("/{id}/close", h.Chatroom.CloseChatroomHandler)
			r.Post("/{id}/create-message", h.Message.CreateMessageHandler)
			r.Post("/{id}/messages", h.Message.PostMessageHandler)
			r.Get("/{id}/messages", h.Message.ListMessagesHandler)
		})
	})

	// --- 5. Tempo real: autentica no handshake (aceita token por query/header "auth") ---
	if h.Realtime != nil {
		r.Method(http.MethodGet, "/ws/chat", h.Realtime)
	}

	return r
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"orderchat/internal/domain"
	"orderchat/internal/pkg/cache"
	"orderchat/internal/pkg/logger"
	"orderchat/internal/pkg/response"
)

// RateLimiter limita requisições por IP numa janela fixa, com o contador no Redis.
// O IP é o do par TCP (RemoteAddr); headers de proxy não são considerados.
// Se o cache falhar, a requisição passa (fail-open) e a falha é registrada.
func RateLimiter(client cache.Client, limit int, window time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			key := "rate-limit:" + ip

			ctx, cancel := context.WithTimeout(r.Context(), time.Second)
			defer cancel()

			// 1. INCR atômico: requisições concorrentes nunca leem o mesmo valor
			count, err := client.Incr(ctx, key)
			if err != nil {
				log.Warn("Rate limiter indisponível; requisição liberada.", map[string]interface{}{"error": err.Error()})
				next.ServeHTTP(w, r)
				return
			}

			// 2. Primeira requisição da janela: o TTL é definido uma única vez
			if count == 1 {
				if err := client.Expire(ctx, key, window); err != nil {
					log.Warn("Rate limiter: falha ao iniciar janela no cache.", map[string]interface{}{"error": err.Error()})
				}
			}

			// 3. Acima do limite
			if count > int64(limit) {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				response.JSON(w, http.StatusTooManyRequests, domain.ErrorResponse{
					Code:     http.StatusTooManyRequests,
					Category: "RATE_LIMITED",
					Message:  "Limite de requisições excedido.",
				})
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(int64(limit)-count, 10))
			next.ServeHTTP(w, r)
		})
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"orderchat/config"
	"orderchat/internal/domain"
	"orderchat/internal/pkg/cache"
	"orderchat/internal/pkg/database"
	"orderchat/internal/pkg/logger"
	"orderchat/internal/pkg/token"

	// Camadas para Injeção de Dependências
	"orderchat/internal/api/chatroom"
	"orderchat/internal/api/message"
	"orderchat/internal/api/order"
	"orderchat/internal/api/router"
	"orderchat/internal/api/user"
	"orderchat/internal/realtime"
	"orderchat/internal/repository/chatroomrepo"
	"orderchat/internal/repository/messagerepo"
	"orderchat/internal/repository/orderrepo"
	"orderchat/internal/repository/userrepo"
	"orderchat/internal/service/chatroomservice"
	"orderchat/internal/service/messageservice"
	"orderchat/internal/service/orderservice"
	"orderchat/internal/service/userservice"
)

func main() {
	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	// Sem .env seguimos com o ambiente do sistema (ex: Docker).
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	// 1. Configuração e Inicialização
	cfg := config.LoadConfig()
	appLog := logger.NewLogger(cfg.LogLevel)
	appLog.Info("⚡ Inicializando serviço OrderChat...", map[string]interface{}{"env": cfg.Environment})

	policy, err := domain.NewStatusPolicy(cfg.OrderStatusPolicy)
	if err != nil {
		appLog.Fatal("Política de status inválida.", err)
	}

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL, database.DefaultPoolOptions)
	if err != nil {
		appLog.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	appLog.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis). Indisponível não impede a subida: o cache é só atalho.
	cacheClient, err := cache.NewRedisClient(cfg.RedisAddr, cfg.CacheTimeout)
	if err != nil {
		appLog.Warn("Redis indisponível; seguindo sem cache efetivo.", map[string]interface{}{"addr": cfg.RedisAddr, "error": err.Error()})
	} else {
		appLog.Info("Conexão Redis estabelecida.", nil)
	}
	defer cacheClient.Close()

	// C. Serviço de Tokens (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)

	// 3. INJEÇÃO DE DEPENDÊNCIAS
	// Ordem: Repository -> Service -> Handler

	// A. Repositórios
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, appLog)
	orderRepo := orderrepo.NewOrderRepository(db, cfg.DBTimeout, appLog)
	chatroomRepo := chatroomrepo.NewChatroomRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTimeout, appLog)
	messageRepo := messagerepo.NewMessageRepository(db, cfg.DBTimeout, appLog)
	appLog.Debug("Repositórios inicializados.", nil)

	// B. Hub de tempo real: é o Broadcaster do serviço de mensagens
	hub := realtime.NewHub(cfg.WSSendBuffer, appLog)

	// C. Serviços
	userSvc := userservice.NewService(userRepo, tokenSvc, appLog)
	orderSvc := orderservice.NewService(orderRepo, policy, appLog)
	chatroomSvc := chatroomservice.NewService(chatroomRepo, appLog)
	messageSvc := messageservice.NewService(chatroomRepo, messageRepo, hub, appLog)
	appLog.Debug("Serviços inicializados.", map[string]interface{}{"status_policy": policy.Name()})

	// D. Handlers
	handlers := router.Handlers{
		User:     user.NewHandler(userSvc, appLog),
		Order:    order.NewHandler(orderSvc, appLog),
		Chatroom: chatroom.NewHandler(chatroomSvc, appLog),
		Message:  message.NewHandler(messageSvc, appLog),
		Realtime: realtime.NewHandler(hub, messageSvc, tokenSvc, appLog),
	}

	// 4. Configuração e Início do Roteador/Servidor
	r := router.NewRouter(handlers, tokenSvc, router.RateLimit{
		Cache:  cacheClient,
		Limit:  cfg.RateLimitMaxRequests,
		Window: cfg.RateLimitPeriod,
	}, appLog)

	// Sem WriteTimeout: conexões WebSocket são longas e controlam seus próprios deadlines.
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		appLog.Info("Servidor OrderChat ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLog.Error("Desligamento do servidor forçado.", err)
	}

	appLog.Info("Servidor encerrado com sucesso.", nil)
}

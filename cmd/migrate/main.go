package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"orderchat/config"
	"orderchat/internal/pkg/database"
	"orderchat/internal/pkg/logger"
)

// Uso: go run ./cmd/migrate [-dir ./sql] [up|down|status|reset|version] [args...]
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ Aviso: arquivo .env não encontrado. Usando apenas o ambiente do sistema: %v", err)
	}

	cfg := config.LoadConfig()
	appLog := logger.NewLogger(cfg.LogLevel)

	var migrationsDir string
	flag.StringVar(&migrationsDir, "dir", "./sql", "diretório com os arquivos de migração")
	flag.Parse()

	// Migrações rodam em série: uma conexão basta.
	opts := database.DefaultPoolOptions
	opts.MaxOpenConns, opts.MaxIdleConns = 1, 1
	db, err := database.NewPostgresDB(cfg.DatabaseURL, opts)
	if err != nil {
		appLog.Fatal("goose: falha ao conectar ao banco.", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		appLog.Fatal("goose: dialeto inválido.", err)
	}

	arguments := flag.Args()
	if len(arguments) == 0 {
		arguments = []string{"up"}
	}

	command := arguments[0]
	var args []string
	if len(arguments) > 1 {
		args = arguments[1:]
	}

	appLog.Info("Executando migrações.", map[string]interface{}{"command": command, "dir": migrationsDir})
	if err := goose.Run(command, db, migrationsDir, args...); err != nil {
		appLog.Fatal(fmt.Sprintf("goose %s falhou.", command), err)
	}

	appLog.Info(fmt.Sprintf("goose %s concluído.", command), nil)
}

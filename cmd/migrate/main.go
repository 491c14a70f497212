package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"estoque/config"
	"estoque/internal/pkg/logger"
	"estoque/internal/pkg/token"
	"estoque/internal/repository/stockrepo"
	"estoque/internal/repository/userrepo"
	"estoque/internal/service/userservice"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ Aviso: arquivo .env não encontrado. Usando apenas o ambiente do sistema: %v", err)
	}

	cfg := config.LoadConfig()

	var dataDir string
	var hashPasswords bool
	flag.StringVar(&dataDir, "dir", "", "diretório com os arquivos JSON (padrão: ESTOQUE_DATA_DIR)")
	flag.BoolVar(&hashPasswords, "hash-senhas", false, "converte senhas em texto puro do users.json para bcrypt")
	flag.Parse()

	if dataDir != "" {
		cfg = cfg.WithDataDir(dataDir)
	}

	appLog := logger.NewDevelopmentLogger(cfg.LogLevel)
	ctx := context.Background()

	// 1. Regravar estoques, requisições e diário no formato canônico
	repo := stockrepo.NewStockRepository(stockrepo.Paths{
		Requests:  cfg.RequestsFile,
		Warehouse: cfg.WarehouseFile,
		Sector:    cfg.SectorFile,
		Movements: cfg.MovementsFile,
	}, cfg.IOTimeout, appLog)

	summary, err := repo.Rewrite(ctx)
	if err != nil {
		log.Fatalf("migrate: falha ao regravar arquivos: %v", err)
	}
	fmt.Printf("migrate: almoxarifado=%d setor=%d requisicoes=%d movimentacoes=%d\n",
		summary.WarehouseItems, summary.SectorItems, summary.Requests, summary.Movements)

	// 2. Opcional: senhas para bcrypt
	if !hashPasswords {
		return
	}
	userSvc := userservice.NewService(
		userrepo.NewUserRepository(cfg.UsersFile, appLog),
		token.NewService(cfg.JWTSecretKey, cfg.SessionExpiry),
		appLog,
	)
	converted, err := userSvc.HashPasswords(ctx)
	if err != nil {
		log.Fatalf("migrate: falha ao converter senhas: %v", err)
	}
	fmt.Printf("migrate: %d senha(s) convertida(s) para bcrypt\n", converted)
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"estoque/config"
	apperror "estoque/internal/errors"
	"estoque/internal/pkg/logger"
	"estoque/internal/pkg/token"

	// Camadas para Injeção de Dependências
	"estoque/internal/cli/purchase"
	"estoque/internal/cli/report"
	"estoque/internal/cli/request"
	"estoque/internal/cli/router"
	"estoque/internal/cli/stock"
	"estoque/internal/cli/transfer"
	"estoque/internal/cli/user"
	"estoque/internal/repository/stockrepo"
	"estoque/internal/repository/userrepo"
	"estoque/internal/service/purchaseservice"
	"estoque/internal/service/reportservice"
	"estoque/internal/service/requestservice"
	"estoque/internal/service/stockservice"
	"estoque/internal/service/transferservice"
	"estoque/internal/service/userservice"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	// Sem .env seguimos apenas com o ambiente do sistema.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Println("⚠️ Aviso: Falha ao ler o arquivo .env. Carregando configs apenas do ambiente do sistema.")
	}

	// 1. Configuração e Inicialização
	cfg := config.LoadConfig()
	var appLog logger.Logger
	if cfg.IsProduction() {
		appLog = logger.NewLogger(cfg.LogLevel)
	} else {
		appLog = logger.NewDevelopmentLogger(cfg.LogLevel)
	}
	if z, ok := appLog.(*logger.ZapLogger); ok {
		defer z.Sync()
	}
	appLog.Debug("Configurações carregadas.", map[string]interface{}{"data_dir": cfg.DataDir, "env": cfg.Environment})

	// 2. INJEÇÃO DE DEPENDÊNCIAS
	// Ordem: Repository -> Service -> Handler

	// A. Repositórios (arquivos JSON)
	stockRepo := stockrepo.NewStockRepository(stockrepo.Paths{
		Requests:  cfg.RequestsFile,
		Warehouse: cfg.WarehouseFile,
		Sector:    cfg.SectorFile,
		Movements: cfg.MovementsFile,
	}, cfg.IOTimeout, appLog)
	userRepo := userrepo.NewUserRepository(cfg.UsersFile, appLog)

	// B. Serviços
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.SessionExpiry)
	userSvc := userservice.NewService(userRepo, tokenSvc, appLog)
	requestSvc := requestservice.NewService(stockRepo, appLog)
	purchaseSvc := purchaseservice.NewService(stockRepo, appLog)
	transferSvc := transferservice.NewService(stockRepo, appLog)
	stockSvc := stockservice.NewService(stockRepo, appLog)
	reportSvc := reportservice.NewService(stockRepo, appLog)

	// C. Handlers (saída dos comandos em stdout, logs em stderr)
	out := os.Stdout
	session := user.NewSessionStore(cfg.SessionFile)
	handlers := router.Handlers{
		User:     user.NewHandler(userSvc, session, appLog, out),
		Request:  request.NewHandler(requestSvc, appLog, out),
		Stock:    stock.NewHandler(stockSvc, appLog, out),
		Purchase: purchase.NewHandler(purchaseSvc, appLog, out),
		Transfer: transfer.NewHandler(transferSvc, appLog, out),
		Report:   report.NewHandler(reportSvc, appLog, out),
	}
	r := router.NewRouter(handlers, tokenSvc, session.Token, appLog, out)

	// 3. Execução (Ctrl+C cancela antes da gravação)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := r.Run(ctx, os.Args[1:])
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return apperror.ExitOK
	}

	code, category, message := apperror.MapToExitCode(err)
	if code == apperror.ExitInternal {
		appLog.Error(fmt.Sprintf("Erro interno: %s", category), err)
	}
	fmt.Fprintln(os.Stderr, message)
	return code
}

package router_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estoque/internal/cli/purchase"
	"estoque/internal/cli/report"
	"estoque/internal/cli/request"
	"estoque/internal/cli/router"
	"estoque/internal/cli/stock"
	"estoque/internal/cli/transfer"
	"estoque/internal/cli/user"
	apperror "estoque/internal/errors"
	"estoque/internal/pkg/logger"
	"estoque/internal/pkg/token"
	"estoque/internal/repository/stockrepo"
	"estoque/internal/repository/userrepo"
	"estoque/internal/service/purchaseservice"
	"estoque/internal/service/reportservice"
	"estoque/internal/service/requestservice"
	"estoque/internal/service/stockservice"
	"estoque/internal/service/transferservice"
	"estoque/internal/service/userservice"
)

const users = `[
    {"username": "admin", "password": "admin", "role": 0, "name": "Administrador"},
    {"username": "func", "password": "1234", "role": 1, "name": "Funcionário"},
    {"username": "gerente", "password": "1234", "role": 2},
    {"username": "comprador", "password": "1234", "role": 3}
]`

type app struct {
	router *router.Router
	out    *bytes.Buffer
	dir    string
}

// newApp monta a mesma árvore de dependências do main sobre um diretório temporário.
func newApp(t *testing.T) *app {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte(users), 0o644))

	log := logger.NewNopLogger()
	out := &bytes.Buffer{}

	stockRepo := stockrepo.NewStockRepository(stockrepo.Paths{
		Requests:  filepath.Join(dir, "requisicoes.json"),
		Warehouse: filepath.Join(dir, "almoxarifado.json"),
		Sector:    filepath.Join(dir, "setor.json"),
		Movements: filepath.Join(dir, "movimentacoes.json"),
	}, 5*time.Second, log)
	userRepo := userrepo.NewUserRepository(filepath.Join(dir, "users.json"), log)
	tokenSvc := token.NewService("segredo-de-teste", time.Hour)
	session := user.NewSessionStore(filepath.Join(dir, ".sessao"))

	handlers := router.Handlers{
		User:     user.NewHandler(userservice.NewService(userRepo, tokenSvc, log), session, log, out),
		Request:  request.NewHandler(requestservice.NewService(stockRepo, log), log, out),
		Stock:    stock.NewHandler(stockservice.NewService(stockRepo, log), log, out),
		Purchase: purchase.NewHandler(purchaseservice.NewService(stockRepo, log), log, out),
		Transfer: transfer.NewHandler(transferservice.NewService(stockRepo, log), log, out),
		Report:   report.NewHandler(reportservice.NewService(stockRepo, log), log, out),
	}
	return &app{router: router.NewRouter(handlers, tokenSvc, session.Token, log, out), out: out, dir: dir}
}

func (a *app) run(t *testing.T, line string) error {
	t.Helper()
	a.out.Reset()
	return a.router.Run(context.Background(), strings.Fields(line))
}

func (a *app) login(t *testing.T, username, password string) {
	t.Helper()
	require.NoError(t, a.run(t, "login -usuario "+username+" -senha "+password))
	require.Contains(t, a.out.String(), "Bem-vindo")
}

func exitCode(err error) int {
	code, _, _ := apperror.MapToExitCode(err)
	return code
}

func TestRequestLifecycle(t *testing.T) {
	a := newApp(t)

	assert.Equal(t, apperror.ExitUnauthorized, exitCode(a.run(t, "quemsou")), "sem sessão")

	a.login(t, "func", "1234")
	require.NoError(t, a.run(t, "requisicao criar -item Parafuso=10 -item Porca=4"))
	assert.Contains(t, a.out.String(), "Requisição 1 salva com sucesso!")

	assert.Equal(t, apperror.ExitPermissionDenied, exitCode(a.run(t, "requisicao aprovar -id 1")))

	a.login(t, "gerente", "1234")
	require.NoError(t, a.run(t, "requisicao aprovar -id 1"))

	a.login(t, "comprador", "1234")
	require.NoError(t, a.run(t, "compra faltas -id 1"))
	assert.Contains(t, a.out.String(), "A COMPRAR")
	assert.Equal(t, apperror.ExitValidation, exitCode(a.run(t, "compra registrar -id 1 -preco abc")))
	require.NoError(t, a.run(t, "compra registrar -id 1 -preco 2,50"))
	assert.Contains(t, a.out.String(), "Total: R$ 35.00")
	require.NoError(t, a.run(t, "movimentar enviar -id 1"))
	assert.Equal(t, apperror.ExitPermissionDenied, exitCode(a.run(t, "movimentar receber -id 1")))

	a.login(t, "func", "1234")
	require.NoError(t, a.run(t, "movimentar receber -id 1"))
	require.NoError(t, a.run(t, "requisicao ver -id 1"))
	assert.Contains(t, a.out.String(), "[Finalizada]")

	require.NoError(t, a.run(t, "baixa -item Parafuso -quantidade 3 -motivo uso"))
	assert.Contains(t, a.out.String(), "Saldo: 7.")
	assert.Equal(t, apperror.ExitInsufficientStock, exitCode(a.run(t, "baixa -item Parafuso -quantidade 30")))
	assert.Equal(t, apperror.ExitNotFound, exitCode(a.run(t, "baixa -item Martelo -quantidade 1")))

	require.NoError(t, a.run(t, "estoque -local setor"))
	assert.Contains(t, a.out.String(), "Parafuso")

	require.NoError(t, a.run(t, "movimentos -requisicao 1"))
	assert.Contains(t, a.out.String(), "envio")

	require.NoError(t, a.run(t, "relatorio requisicoes -status Finalizada"))
	assert.Contains(t, a.out.String(), "Parafuso (10), Porca (4)")
}

func TestRejectedRequestIsFinal(t *testing.T) {
	a := newApp(t)
	a.login(t, "admin", "admin")

	require.NoError(t, a.run(t, "requisicao criar -item Luva=2"))
	require.NoError(t, a.run(t, "requisicao reprovar -id 1"))

	assert.Equal(t, apperror.ExitConflict, exitCode(a.run(t, "requisicao aprovar -id 1")))
	assert.Equal(t, apperror.ExitConflict, exitCode(a.run(t, "requisicao editar -id 1 -item Luva=3")))
	assert.Equal(t, apperror.ExitNotFound, exitCode(a.run(t, "requisicao ver -id 9")))
}

func TestLoginFailures(t *testing.T) {
	a := newApp(t)

	assert.Equal(t, apperror.ExitUnauthorized, exitCode(a.run(t, "login -usuario func -senha errada")))
	assert.Equal(t, apperror.ExitUnauthorized, exitCode(a.run(t, "login -usuario ninguem -senha x")))
	assert.NoFileExists(t, filepath.Join(a.dir, ".sessao"))
}

func TestLogoutEndsSession(t *testing.T) {
	a := newApp(t)
	a.login(t, "func", "1234")

	require.NoError(t, a.run(t, "quemsou"))
	assert.Contains(t, a.out.String(), "func (Funcionário)")

	require.NoError(t, a.run(t, "logout"))
	assert.Equal(t, apperror.ExitUnauthorized, exitCode(a.run(t, "quemsou")))
	require.NoError(t, a.run(t, "logout"), "logout sem sessão não é erro")
}

func TestUsageAndValidation(t *testing.T) {
	a := newApp(t)

	assert.Equal(t, apperror.ExitValidation, exitCode(a.run(t, "")))
	assert.Contains(t, a.out.String(), "Uso: estoque")
	assert.NoError(t, a.run(t, "ajuda"))
	assert.Equal(t, apperror.ExitValidation, exitCode(a.run(t, "voar longe")))

	a.login(t, "func", "1234")
	assert.Equal(t, apperror.ExitValidation, exitCode(a.run(t, "requisicao criar -item Parafuso=abc")))
	assert.Equal(t, apperror.ExitValidation, exitCode(a.run(t, "requisicao ver")), "sem -id")
	assert.Equal(t, apperror.ExitValidation, exitCode(a.run(t, "estoque -local garagem")))
	assert.Equal(t, apperror.ExitValidation, exitCode(a.run(t, "estoque extra")))
}

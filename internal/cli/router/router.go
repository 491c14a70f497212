package router

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"estoque/internal/cli/purchase"
	"estoque/internal/cli/report"
	"estoque/internal/cli/request"
	"estoque/internal/cli/stock"
	"estoque/internal/cli/transfer"
	"estoque/internal/cli/user"
	"estoque/internal/domain"
	apperror "estoque/internal/errors"
	"estoque/internal/pkg/logger"
	"estoque/internal/pkg/middleware"
)

// Handlers reúne os handlers já inicializados por injeção de dependências.
type Handlers struct {
	User     *user.Handler
	Request  *request.Handler
	Stock    *stock.Handler
	Purchase *purchase.Handler
	Transfer *transfer.Handler
	Report   *report.Handler
}

type route struct {
	cmd   middleware.Command
	usage string
}

// Router resolve "comando [sub]" para o handler correspondente.
type Router struct {
	routes map[string]route
	auth   func(next middleware.Command) middleware.Command
	logger logger.Logger
	out    io.Writer
}

// NewRouter configura e retorna o roteador de comandos.
func NewRouter(h Handlers, tokenSvc middleware.TokenService, session middleware.TokenSource, log logger.Logger, out io.Writer) *Router {
	r := &Router{
		routes: make(map[string]route),
		auth:   middleware.NewAuthMiddleware(tokenSvc, session),
		logger: log,
		out:    out,
	}

	// --- 1. Sessão (públicos) ---
	r.public("login", "login -usuario U -senha S", h.User.LoginHandler)
	r.public("logout", "logout", h.User.LogoutHandler)
	r.protected("quemsou", domain.ActionViewStock, "quemsou", h.User.WhoAmIHandler)

	// --- 2. Requisições ---
	r.protected("requisicao criar", domain.ActionRequest, "requisicao criar -item Nome=qtd [-item ...]", h.Request.CreateHandler)
	r.protected("requisicao editar", domain.ActionRequest, "requisicao editar -id N -item Nome=qtd [-item ...]", h.Request.UpdateHandler)
	r.protected("requisicao ver", domain.ActionReport, "requisicao ver -id N", h.Request.GetHandler)
	r.protected("requisicao listar", domain.ActionReport, "requisicao listar [-status Pendente,Aprovada]", h.Request.ListHandler)
	r.protected("requisicao aprovar", domain.ActionApprove, "requisicao aprovar -id N", h.Request.ApproveHandler)
	r.protected("requisicao reprovar", domain.ActionApprove, "requisicao reprovar -id N", h.Request.RejectHandler)

	// --- 3. Compras ---
	r.protected("compra faltas", domain.ActionPurchase, "compra faltas -id N", h.Purchase.ShortfallHandler)
	r.protected("compra registrar", domain.ActionPurchase, "compra registrar -id N [-item Nome=qtd@preco ...] [-preco P]", h.Purchase.RegisterHandler)

	// --- 4. Movimentação almoxarifado -> setor ---
	r.protected("movimentar enviar", domain.ActionSend, "movimentar enviar -id N", h.Transfer.SendHandler)
	r.protected("movimentar receber", domain.ActionReceive, "movimentar receber -id N", h.Transfer.ReceiveHandler)

	// --- 5. Estoques ---
	r.protected("estoque", domain.ActionViewStock, "estoque [-local almoxarifado|setor]", h.Stock.ListHandler)
	r.protected("baixa", domain.ActionWriteOff, "baixa -item Nome -quantidade N [-local setor] [-motivo texto]", h.Stock.WriteOffHandler)
	r.protected("movimentos", domain.ActionViewStock, "movimentos [-requisicao N]", h.Stock.MovementsHandler)

	// --- 6. Relatórios ---
	r.protected("relatorio requisicoes", domain.ActionReport, "relatorio requisicoes [-status Todas] [-solicitante login]", h.Report.RequestsHandler)
	r.protected("relatorio estoque", domain.ActionReport, "relatorio estoque [-local almoxarifado|setor]", h.Report.StockHandler)

	return r
}

func (r *Router) public(name, usage string, cmd middleware.Command) {
	r.routes[name] = route{cmd: middleware.LoggingMiddleware(r.logger, name)(cmd), usage: usage}
}

// protected encadeia sessão -> permissão -> log -> handler.
func (r *Router) protected(name string, action domain.Action, usage string, cmd middleware.Command) {
	wrapped := middleware.LoggingMiddleware(r.logger, name)(cmd)
	wrapped = middleware.PermissionMiddleware(action)(wrapped)
	r.routes[name] = route{cmd: r.auth(wrapped), usage: usage}
}

// Run despacha os argumentos da linha de comando (sem o nome do programa).
func (r *Router) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "ajuda" || args[0] == "-h" || args[0] == "--help" {
		r.Usage()
		if len(args) == 0 {
			return apperror.NewValidationError("Nenhum comando informado.")
		}
		return nil
	}

	if rt, ok := r.routes[args[0]]; ok {
		return rt.cmd(ctx, args[1:])
	}
	if len(args) > 1 {
		if rt, ok := r.routes[args[0]+" "+args[1]]; ok {
			return rt.cmd(ctx, args[2:])
		}
	}

	r.Usage()
	return apperror.NewValidationError(fmt.Sprintf("Comando desconhecido: %s", strings.Join(args[:min(len(args), 2)], " ")))
}

// Usage lista os comandos disponíveis.
func (r *Router) Usage() {
	names := make([]string, 0, len(r.routes))
	for name := range r.routes {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(r.out, "Uso: estoque <comando> [flags]")
	fmt.Fprintln(r.out)
	for _, name := range names {
		fmt.Fprintf(r.out, "  %s\n", r.routes[name].usage)
	}
}

// Package cliutil reúne o que os handlers da linha de comando compartilham:
// leitura de flags, linhas de itens e impressão em tabela.
package cliutil

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"estoque/internal/domain"
	apperror "estoque/internal/errors"
)

// NewFlagSet cria um FlagSet que devolve erro em vez de encerrar o processo.
func NewFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// Parse lê as flags e converte erros de uso em ValidationError.
// -h devolve ErrHelp para quem chama encerrar sem erro.
func Parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return apperror.NewValidationError(fmt.Sprintf("%s: %s", fs.Name(), err.Error()))
	}
	if fs.NArg() > 0 {
		return apperror.NewValidationError(fmt.Sprintf("%s: argumento inesperado '%s'.", fs.Name(), fs.Arg(0)))
	}
	return nil
}

// RequireID valida a flag -id.
func RequireID(id int) error {
	if id <= 0 {
		return apperror.NewValidationError("Informe o id da requisição com -id.")
	}
	return nil
}

// LineFlags acumula ocorrências repetidas de -item Nome=qtd.
// A validação fica com domain.ParseLines, que aponta a linha com problema.
type LineFlags []domain.LineInput

func (f *LineFlags) String() string {
	if f == nil {
		return ""
	}
	parts := make([]string, 0, len(*f))
	for _, l := range *f {
		parts = append(parts, l.Item+"="+l.Quantity)
	}
	return strings.Join(parts, ",")
}

// Set implementa flag.Value.
func (f *LineFlags) Set(value string) error {
	name, qty, ok := strings.Cut(value, "=")
	if !ok {
		// sem '=' a linha chega sem quantidade e ParseLines reporta a linha
		*f = append(*f, domain.LineInput{Item: value})
		return nil
	}
	*f = append(*f, domain.LineInput{Item: name, Quantity: qty})
	return nil
}

// Money formata um valor monetário com duas casas.
func Money(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}

// NewTable devolve um tabwriter com o espaçamento usado em todas as listagens.
func NewTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// Row escreve uma linha de tabela com as colunas separadas por tab.
func Row(w io.Writer, cols ...interface{}) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(w, strings.Join(parts, "\t"))
}

// PrintRequest imprime uma requisição com suas linhas.
func PrintRequest(w io.Writer, r domain.Request) {
	fmt.Fprintf(w, "Requisição %d  [%s]", r.ID, r.Status)
	if r.Requester != "" {
		fmt.Fprintf(w, "  solicitante: %s", r.Requester)
	}
	fmt.Fprintln(w)

	tw := NewTable(w)
	Row(tw, "ITEM", "QUANTIDADE")
	for _, it := range r.Items {
		Row(tw, it.Item, it.Quantity)
	}
	tw.Flush()
	fmt.Fprintf(w, "Quantidade total: %d\n", r.TotalQuantity())
}

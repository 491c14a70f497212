package cliutil_test

import (
	"bytes"
	"errors"
	"flag"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estoque/internal/cli/cliutil"
	"estoque/internal/domain"
	apperror "estoque/internal/errors"
)

func TestLineFlags(t *testing.T) {
	var lines cliutil.LineFlags
	fs := cliutil.NewFlagSet("teste", &bytes.Buffer{})
	fs.Var(&lines, "item", "")

	require.NoError(t, cliutil.Parse(fs, []string{"-item", "Parafuso=10", "-item", "Porca"}))

	assert.Equal(t, cliutil.LineFlags{
		{Item: "Parafuso", Quantity: "10"},
		{Item: "Porca"},
	}, lines)
	assert.Equal(t, "Parafuso=10,Porca=", lines.String())
}

func TestParse_Errors(t *testing.T) {
	fs := cliutil.NewFlagSet("teste", &bytes.Buffer{})
	fs.Int("id", 0, "")

	err := cliutil.Parse(fs, []string{"-id", "x"})
	assert.IsType(t, &apperror.ValidationError{}, err)

	fs = cliutil.NewFlagSet("teste", &bytes.Buffer{})
	err = cliutil.Parse(fs, []string{"sobra"})
	assert.IsType(t, &apperror.ValidationError{}, err)

	fs = cliutil.NewFlagSet("teste", &bytes.Buffer{})
	err = cliutil.Parse(fs, []string{"-h"})
	assert.True(t, errors.Is(err, flag.ErrHelp))
}

func TestRequireIDAndMoney(t *testing.T) {
	assert.Error(t, cliutil.RequireID(0))
	assert.NoError(t, cliutil.RequireID(3))
	assert.Equal(t, "R$ 2.80", cliutil.Money(decimal.RequireFromString("2.8")))
}

func TestPrintRequest(t *testing.T) {
	var buf bytes.Buffer
	cliutil.PrintRequest(&buf, domain.Request{
		ID:        7,
		Status:    domain.StatusPending,
		Requester: "ana",
		Items:     []domain.LineItem{{Item: "Parafuso", Quantity: 10}, {Item: "Porca", Quantity: 2}},
	})

	out := buf.String()
	assert.Contains(t, out, "Requisição 7  [Pendente]  solicitante: ana")
	assert.Contains(t, out, "Quantidade total: 12")
}

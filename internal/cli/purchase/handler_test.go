package purchase_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estoque/internal/cli/purchase"
)

func TestParsePurchaseLine(t *testing.T) {
	line, err := purchase.ParsePurchaseLine("Parafuso = 4@2,50")
	require.NoError(t, err)
	assert.Equal(t, "Parafuso", line.Item)
	assert.Equal(t, 4, line.Quantity)
	assert.True(t, line.UnitPrice.Equal(decimal.RequireFromString("2.5")))

	line, err = purchase.ParsePurchaseLine("Porca=3")
	require.NoError(t, err)
	assert.True(t, line.UnitPrice.IsZero(), "sem @preço o preço é zero")

	for _, bad := range []string{"Parafuso", "=4@1", "Parafuso=x@1", "Parafuso=1@abc"} {
		_, err := purchase.ParsePurchaseLine(bad)
		assert.Error(t, err, bad)
	}
}

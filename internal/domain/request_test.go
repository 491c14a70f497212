package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estoque/internal/domain"
	apperror "estoque/internal/errors"
)

func bookWithIDs(ids ...int) *domain.RequestBook {
	reqs := make([]domain.Request, 0, len(ids))
	for _, id := range ids {
		reqs = append(reqs, domain.Request{ID: id, Items: []domain.LineItem{{Item: "Parafuso", Quantity: 1}}, Status: domain.StatusPending})
	}
	return domain.NewRequestBook(reqs)
}

func TestNextID(t *testing.T) {
	assert.Equal(t, 1, domain.NewRequestBook(nil).NextID())
	assert.Equal(t, 5, bookWithIDs(1, 3, 4).NextID())
	assert.Equal(t, 8, bookWithIDs(7, 2).NextID())
}

func TestCreate_AssignsNextIDAndPending(t *testing.T) {
	b := bookWithIDs(1, 3, 4)

	req, err := b.Create([]domain.LineItem{{Item: "Porca", Quantity: 2}}, "maria")

	require.NoError(t, err)
	assert.Equal(t, 5, req.ID)
	assert.Equal(t, domain.StatusPending, req.Status)
	assert.Equal(t, "maria", req.Requester)
	assert.True(t, b.Dirty())

	found, err := b.Find(5)
	require.NoError(t, err)
	assert.Equal(t, req, found)
}

func TestFind_NotFound(t *testing.T) {
	_, err := bookWithIDs(1).Find(9)

	assert.IsType(t, &apperror.NotFoundError{}, err)
	assert.Contains(t, err.Error(), "9")
}

func TestSetStatus_LegalChain(t *testing.T) {
	b := bookWithIDs(1)
	for _, st := range []domain.Status{domain.StatusApproved, domain.StatusPurchased, domain.StatusSent, domain.StatusFinished} {
		req, err := b.SetStatus(1, st)
		require.NoError(t, err, "transição para %s", st)
		assert.Equal(t, st, req.Status)
	}
}

func TestSetStatus_IllegalTransitions(t *testing.T) {
	cases := []struct {
		from, to domain.Status
	}{
		{domain.StatusPending, domain.StatusPurchased},
		{domain.StatusPending, domain.StatusSent},
		{domain.StatusApproved, domain.StatusSent},
		{domain.StatusApproved, domain.StatusRejected},
		{domain.StatusPurchased, domain.StatusFinished},
		{domain.StatusSent, domain.StatusPending},
	}
	for _, c := range cases {
		b := domain.NewRequestBook([]domain.Request{{ID: 1, Items: []domain.LineItem{{Item: "A", Quantity: 1}}, Status: c.from}})
		_, err := b.SetStatus(1, c.to)
		assert.IsType(t, &apperror.ConflictError{}, err, "%s -> %s", c.from, c.to)
		assert.False(t, b.Dirty())
	}
}

func TestSetStatus_TerminalStatesAreImmutable(t *testing.T) {
	for _, terminal := range []domain.Status{domain.StatusRejected, domain.StatusFinished} {
		b := domain.NewRequestBook([]domain.Request{{ID: 1, Items: []domain.LineItem{{Item: "A", Quantity: 1}}, Status: terminal}})
		for _, to := range domain.AllStatuses {
			_, err := b.SetStatus(1, to)
			assert.IsType(t, &apperror.ConflictError{}, err, "%s -> %s", terminal, to)
		}
		_, err := b.UpdateItems(1, []domain.LineItem{{Item: "B", Quantity: 2}})
		assert.IsType(t, &apperror.ConflictError{}, err)

		req, _ := b.Find(1)
		assert.Equal(t, terminal, req.Status)
	}
}

func TestUpdateItems_OnlyWhilePending(t *testing.T) {
	b := bookWithIDs(1)

	req, err := b.UpdateItems(1, []domain.LineItem{{Item: "Porca", Quantity: 3}, {Item: "Prego", Quantity: 1}})
	require.NoError(t, err)
	assert.Len(t, req.Items, 2)
	assert.Equal(t, 4, req.TotalQuantity())

	_, err = b.SetStatus(1, domain.StatusApproved)
	require.NoError(t, err)
	_, err = b.UpdateItems(1, []domain.LineItem{{Item: "Porca", Quantity: 1}})
	assert.IsType(t, &apperror.ConflictError{}, err)
}

func TestRequestBook_ReturnsCopies(t *testing.T) {
	b := bookWithIDs(1)

	req, _ := b.Find(1)
	req.Items[0].Quantity = 99

	again, _ := b.Find(1)
	assert.Equal(t, 1, again.Items[0].Quantity)
}

func TestFilter(t *testing.T) {
	b := domain.NewRequestBook([]domain.Request{
		{ID: 1, Status: domain.StatusPending},
		{ID: 2, Status: domain.StatusApproved},
		{ID: 3, Status: domain.StatusPurchased},
	})

	assert.Len(t, b.Filter(), 3)
	got := b.Filter(domain.StatusApproved, domain.StatusPurchased)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].ID)
	assert.Equal(t, 3, got[1].ID)
}

func TestParseLines(t *testing.T) {
	items, err := domain.ParseLines([]domain.LineInput{
		{Item: " Parafuso ", Quantity: "10"},
		{Item: "", Quantity: ""},
		{Item: "Porca", Quantity: " 4"},
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.LineItem{{Item: "Parafuso", Quantity: 10}, {Item: "Porca", Quantity: 4}}, items)

	_, err = domain.ParseLines([]domain.LineInput{{Item: "Parafuso", Quantity: "1"}, {Item: "", Quantity: "2"}})
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "linha 2")

	_, err = domain.ParseLines([]domain.LineInput{{Item: "Parafuso", Quantity: "abc"}})
	assert.Contains(t, err.Error(), "linha 1")

	_, err = domain.ParseLines([]domain.LineInput{{Item: "Parafuso", Quantity: "0"}})
	assert.Contains(t, err.Error(), "linha 1")

	_, err = domain.ParseLines(nil)
	assert.IsType(t, &apperror.ValidationError{}, err)
}

func TestDemand_AggregatesRepeatedItems(t *testing.T) {
	req := domain.Request{Items: []domain.LineItem{
		{Item: "Parafuso", Quantity: 3},
		{Item: "Porca", Quantity: 1},
		{Item: "Parafuso", Quantity: 2},
	}}

	names, totals := req.Demand()

	assert.Equal(t, []string{"Parafuso", "Porca"}, names)
	assert.Equal(t, 5, totals["Parafuso"])
	assert.Equal(t, 1, totals["Porca"])
}

func TestParseStatus(t *testing.T) {
	st, err := domain.ParseStatus("aprovada")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, st)

	_, err = domain.ParseStatus("Cancelada")
	assert.Error(t, err)
}

func TestCan(t *testing.T) {
	assert.True(t, domain.Can(domain.RoleAdmin, domain.ActionApprove))
	assert.True(t, domain.Can(domain.RoleManager, domain.ActionApprove))
	assert.False(t, domain.Can(domain.RoleEmployee, domain.ActionApprove))
	assert.False(t, domain.Can(domain.RoleBuyer, domain.ActionRequest))
	assert.True(t, domain.Can(domain.RoleBuyer, domain.ActionSend))
	assert.False(t, domain.Can(domain.RoleEmployee, domain.ActionPurchase))
	assert.False(t, domain.Can(domain.Role(9), domain.ActionViewStock))
	for _, r := range []domain.Role{domain.RoleAdmin, domain.RoleEmployee, domain.RoleManager, domain.RoleBuyer} {
		assert.True(t, domain.Can(r, domain.ActionReport))
	}
}

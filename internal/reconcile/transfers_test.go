package reconcile

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/model"
)

func acctTx(id, account, date, amount, typeID string) model.Transaction {
	return model.Transaction{
		ID:        id,
		AccountID: account,
		Date:      date,
		Amount:    decimal.RequireFromString(amount),
		TypeID:    typeID,
	}
}

func isTransfer(typeID string) bool { return typeID == "transfer" }

func TestMatchSides_PaymentAgainstPurchases(t *testing.T) {
	a := []model.Transaction{acctTx("a", "checking", "2024-01-10", "-500.00", "")}
	b := []model.Transaction{
		acctTx("b1", "card", "2024-01-03", "-300.00", ""),
		acctTx("b2", "card", "2024-01-04", "-200.00", ""),
	}
	totalA, totalB, ok := MatchSides(a, b, DefaultTolerance)
	assert.True(t, ok)
	assert.Equal(t, "500.00", totalA.StringFixed(2))
	assert.Equal(t, "500.00", totalB.StringFixed(2))
}

func TestMatchSides_Tolerance(t *testing.T) {
	a := []model.Transaction{acctTx("a", "x", "2024-01-01", "100.00", "")}
	near := []model.Transaction{acctTx("b", "y", "2024-01-01", "100.05", "")}
	far := []model.Transaction{acctTx("b", "y", "2024-01-01", "100.06", "")}

	_, _, ok := MatchSides(a, near, DefaultTolerance)
	assert.True(t, ok)
	_, _, ok = MatchSides(a, far, DefaultTolerance)
	assert.False(t, ok)
	_, _, ok = MatchSides(a, nil, DefaultTolerance)
	assert.False(t, ok)
}

func TestProposeTransfers(t *testing.T) {
	txns := []model.Transaction{
		acctTx("pay", "checking", "2024-01-10", "500.00", "transfer"),
		acctTx("p1", "card", "2024-01-08", "300.00", "expense"),
		acctTx("p2", "card", "2024-01-09", "200.00", "expense"),
		acctTx("p3", "card", "2024-01-09", "75.00", "expense"),
		acctTx("same", "checking", "2024-01-10", "500.00", "expense"),
		acctTx("late", "card", "2024-02-20", "500.00", "expense"),
	}

	props, err := ProposeTransfers(context.Background(), txns, isTransfer, TransferOptions{})
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, "pay", props[0].Source.ID)
	assert.ElementsMatch(t, []string{"p1", "p2"}, []string{props[0].Matches[0].ID, props[0].Matches[1].ID})
	assert.True(t, props[0].Difference.IsZero())
	assert.Equal(t, "pay", props[0].IDs()[0])
}

func TestProposeTransfers_PrefersSingleMatch(t *testing.T) {
	txns := []model.Transaction{
		acctTx("pay", "checking", "2024-01-10", "500.00", "transfer"),
		acctTx("p1", "card", "2024-01-08", "300.00", "expense"),
		acctTx("p2", "card", "2024-01-09", "200.00", "expense"),
		acctTx("recv", "savings", "2024-01-11", "500.02", "transfer"),
	}

	props, err := ProposeTransfers(context.Background(), txns, isTransfer, TransferOptions{})
	require.NoError(t, err)
	require.Len(t, props, 1)
	require.Len(t, props[0].Matches, 1)
	assert.Equal(t, "recv", props[0].Matches[0].ID)
	assert.Equal(t, "0.02", props[0].Difference.StringFixed(2))
}

func TestProposeTransfers_ExactTolerance(t *testing.T) {
	txns := []model.Transaction{
		acctTx("pay", "checking", "2024-01-10", "500.00", "transfer"),
		acctTx("recv", "savings", "2024-01-11", "500.02", "transfer"),
	}

	props, err := ProposeTransfers(context.Background(), txns, isTransfer, TransferOptions{Tolerance: decimal.NewNullDecimal(decimal.Zero)})
	require.NoError(t, err)
	assert.Empty(t, props)

	props, err = ProposeTransfers(context.Background(), txns, isTransfer, TransferOptions{})
	require.NoError(t, err)
	assert.Len(t, props, 1)
}

func TestProposeTransfers_SkipsLinkedAndRespectsGroupSize(t *testing.T) {
	linked := acctTx("l", "card", "2024-01-09", "500.00", "expense")
	linked.LinkGroupID = "g1"
	txns := []model.Transaction{
		acctTx("pay", "checking", "2024-01-10", "500.00", "transfer"),
		linked,
		acctTx("p1", "card", "2024-01-08", "250.00", "expense"),
		acctTx("p2", "card", "2024-01-09", "150.00", "expense"),
		acctTx("p3", "card", "2024-01-09", "100.00", "expense"),
	}

	props, err := ProposeTransfers(context.Background(), txns, isTransfer, TransferOptions{MaxGroupSize: 2})
	require.NoError(t, err)
	assert.Empty(t, props)

	props, err = ProposeTransfers(context.Background(), txns, isTransfer, TransferOptions{MaxGroupSize: 3})
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Len(t, props[0].Matches, 3)
}

func TestProposeTransfers_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	txns := []model.Transaction{acctTx("pay", "checking", "2024-01-10", "500.00", "transfer")}
	_, err := ProposeTransfers(ctx, txns, isTransfer, TransferOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPartitionLinkGroup(t *testing.T) {
	parent := acctTx("p", "card", "2024-01-01", "100", "")
	parent.IsParent = true
	c1 := acctTx("c1", "card", "2024-01-01", "60", "")
	c2 := acctTx("c2", "card", "2024-01-01", "40", "")

	a, b := PartitionLinkGroup([]model.Transaction{c1, parent, c2})
	require.Len(t, a, 1)
	assert.Equal(t, "p", a[0].ID)
	assert.Len(t, b, 2)

	x := acctTx("x", "checking", "2024-01-01", "100", "")
	y := acctTx("y", "card", "2024-01-01", "100", "")
	a, b = PartitionLinkGroup([]model.Transaction{x, y})
	assert.Equal(t, "x", a[0].ID)
	assert.Equal(t, "y", b[0].ID)
}

func TestAuditLinkGroups(t *testing.T) {
	x := acctTx("x", "checking", "2024-01-01", "100", "")
	y := acctTx("y", "card", "2024-01-01", "100", "")
	x.LinkGroupID, y.LinkGroupID = "g-ok", "g-ok"

	u := acctTx("u", "checking", "2024-01-02", "80", "")
	v := acctTx("v", "card", "2024-01-02", "70", "")
	u.LinkGroupID, v.LinkGroupID = "g-bad", "g-bad"

	audits := AuditLinkGroups([]model.Transaction{x, y, u, v, acctTx("free", "card", "2024-01-03", "5", "")}, decimal.Zero)
	require.Len(t, audits, 2)
	assert.Equal(t, "g-bad", audits[0].GroupID)
	assert.False(t, audits[0].Balanced)
	assert.Equal(t, "10.00", audits[0].Difference.StringFixed(2))
	assert.Equal(t, "g-ok", audits[1].GroupID)
	assert.True(t, audits[1].Balanced)
}

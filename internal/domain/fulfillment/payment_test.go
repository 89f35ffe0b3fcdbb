package fulfillment

import (
	"testing"

	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingPayment(t *testing.T) *PaymentCollection {
	t.Helper()
	p, err := NewPaymentCollection("PAY-2026-00010", uuid.New(), decimal.NewFromInt(150), PaymentMethodCash)
	require.NoError(t, err)
	return p
}

func TestNewPaymentCollection_Validation(t *testing.T) {
	_, err := NewPaymentCollection("", uuid.New(), decimal.NewFromInt(10), PaymentMethodCash)
	require.Error(t, err)

	_, err = NewPaymentCollection("PAY-2026-00011", uuid.Nil, decimal.NewFromInt(10), PaymentMethodCash)
	require.Error(t, err)

	_, err = NewPaymentCollection("PAY-2026-00012", uuid.New(), decimal.Zero, PaymentMethodCash)
	require.Error(t, err)

	_, err = NewPaymentCollection("PAY-2026-00013", uuid.New(), decimal.NewFromInt(-5), PaymentMethodCash)
	require.Error(t, err)

	_, err = NewPaymentCollection("PAY-2026-00014", uuid.New(), decimal.NewFromInt(10), PaymentMethod("BARTER"))
	require.Error(t, err)
}

func TestPaymentCollection_Lifecycle(t *testing.T) {
	p := newPendingPayment(t)
	assert.Equal(t, PaymentStatusPending, p.Status)
	assert.False(t, p.IsOutstanding(), "pending money is not outstanding")

	require.NoError(t, p.Confirm())
	assert.Equal(t, PaymentStatusCompleted, p.Status)
	assert.NotNil(t, p.ConfirmedAt)
	assert.True(t, p.IsOutstanding(), "completed but undeposited money is outstanding")

	err := p.Confirm()
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)

	require.NoError(t, p.Refund())
	assert.Equal(t, PaymentStatusRefunded, p.Status)
	assert.False(t, p.IsOutstanding())
}

func TestPaymentCollection_FailOnlyFromPending(t *testing.T) {
	p := newPendingPayment(t)
	require.NoError(t, p.Fail())
	assert.Equal(t, PaymentStatusFailed, p.Status)

	confirmed := newPendingPayment(t)
	require.NoError(t, confirmed.Confirm())
	err := confirmed.Fail()
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestPaymentCollection_MarkDeposited(t *testing.T) {
	p := newPendingPayment(t)
	branchID := uuid.New()

	err := p.MarkDeposited(branchID)
	require.Error(t, err, "pending money cannot be deposited")

	require.NoError(t, p.Confirm())
	require.NoError(t, p.MarkDeposited(branchID))
	assert.True(t, p.IsDeposited)
	require.NotNil(t, p.DepositedToBranchID)
	assert.Equal(t, branchID, *p.DepositedToBranchID)
	assert.False(t, p.IsOutstanding(), "deposited money is no longer outstanding")

	err = p.MarkDeposited(branchID)
	assert.ErrorIs(t, err, shared.ErrDuplicateApplication)

	fresh := newPendingPayment(t)
	require.NoError(t, fresh.Confirm())
	err = fresh.MarkDeposited(uuid.Nil)
	require.Error(t, err)
}

func TestPaymentCollection_Builders(t *testing.T) {
	p := newPendingPayment(t)
	shipmentID := uuid.New()
	employeeID := uuid.New()

	p.WithShipment(shipmentID).
		WithReference("MPESA-QX12345").
		WithReceipt("RCT-00042").
		WithCollectedBy(employeeID)

	require.NotNil(t, p.ShipmentID)
	assert.Equal(t, shipmentID, *p.ShipmentID)
	assert.Equal(t, "MPESA-QX12345", p.Reference)
	assert.Equal(t, "RCT-00042", p.ReceiptNumber)
	require.NotNil(t, p.CollectedByID)
	assert.Equal(t, employeeID, *p.CollectedByID)
}

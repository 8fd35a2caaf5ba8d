package payment

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func TestSimulatedProvider(t *testing.T) {
	p := NewSimulatedProvider()
	ctx := context.Background()

	resp, err := p.ProcessPayment(ctx, &PaymentRequest{Amount: 10, Currency: "INR", CustomerID: "donor-1"})
	require.NoError(t, err)
	assert.True(t, resp.Succeeded())

	verified, err := p.VerifyPayment(ctx, resp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, "donor-1", verified.CustomerID)
	assert.Equal(t, 10.0, verified.Amount)

	_, err = p.ProcessPayment(ctx, &PaymentRequest{Amount: 10, PaymentMethodID: DeclinedPaymentMethod})
	assert.ErrorIs(t, err, ErrCardDeclined)

	_, err = p.VerifyPayment(ctx, "sim_unknown")
	assert.Error(t, err)
}

func TestRazorpayFieldHelpers(t *testing.T) {
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"id":"pay_1","amount":1000,"status":"captured"}`), &decoded))

	assert.Equal(t, "pay_1", stringField(decoded, "id"))
	assert.Equal(t, int64(1000), intField(decoded, "amount"))
	assert.Equal(t, int64(0), intField(decoded, "missing"))
	assert.Equal(t, "", stringField(decoded, "amount"))
	assert.Equal(t, StatusSucceeded, razorpayStatus(stringField(decoded, "status")))
	assert.Equal(t, StatusPending, razorpayStatus("authorized"))
}

func TestStripeStatusAndUnits(t *testing.T) {
	assert.Equal(t, StatusSucceeded, stripeStatus(stripe.PaymentIntentStatusSucceeded))
	assert.Equal(t, StatusFailed, stripeStatus(stripe.PaymentIntentStatusCanceled))
	assert.Equal(t, StatusPending, stripeStatus(stripe.PaymentIntentStatusProcessing))

	assert.Equal(t, int64(1999), toMinorUnits(19.99))
}

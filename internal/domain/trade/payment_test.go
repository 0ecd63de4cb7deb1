package trade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatePayment(t *testing.T) {
	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)
	card := func(number, expiry, cvv string) Card {
		return Card{Number: number, Expiry: expiry, CVV: cvv, Name: "Ana Pérez"}
	}

	t.Run("cash methods stay pending", func(t *testing.T) {
		for _, m := range []PaymentMethod{PaymentOXXO, PaymentTransfer} {
			res, err := SimulatePayment(m, Card{}, now)
			require.NoError(t, err)
			assert.True(t, res.Approved)
			assert.Equal(t, OrderStatusPending, res.Status)
		}
	})

	t.Run("success card is paid", func(t *testing.T) {
		res, err := SimulatePayment(PaymentCard, card("4242 4242 4242 4242", "12/30", "999"), now)
		require.NoError(t, err)
		assert.True(t, res.Approved)
		assert.Equal(t, OrderStatusPaid, res.Status)
		assert.Equal(t, "Pago aprobado", res.Message)
	})

	t.Run("failing test cards", func(t *testing.T) {
		tests := []struct {
			number  string
			cvv     string
			outcome CardOutcome
			message string
		}{
			{"4000000000000002", "111", CardDeclined, "Tarjeta declinada"},
			{"4000000000009995", "111", CardInsufficient, "Fondos insuficientes"},
			{"4000000000000069", "111", CardExpired, "Tarjeta expirada"},
			{"4000000000000127", "999", CardInvalidCVC, "CVC inválido"},
		}
		for _, tt := range tests {
			res, err := SimulatePayment(PaymentCard, card(tt.number, "12/30", tt.cvv), now)
			require.NoError(t, err, tt.number)
			assert.False(t, res.Approved, tt.number)
			assert.Equal(t, tt.outcome, res.Outcome, tt.number)
			assert.Equal(t, tt.message, res.Message, tt.number)
		}
	})

	t.Run("incomplete card", func(t *testing.T) {
		_, err := SimulatePayment(PaymentCard, Card{Number: "4242424242424242"}, now)
		assert.ErrorIs(t, err, ErrCardIncomplete)
	})

	t.Run("unknown card", func(t *testing.T) {
		_, err := SimulatePayment(PaymentCard, card("5555555555554444", "12/30", "1"), now)
		assert.ErrorIs(t, err, ErrCardUnknown)
	})

	t.Run("past expiry is rejected", func(t *testing.T) {
		res, err := SimulatePayment(PaymentCard, card("4242424242424242", "05/26", "1"), now)
		require.NoError(t, err)
		assert.False(t, res.Approved)
		assert.Equal(t, CardExpired, res.Outcome)

		res, err = SimulatePayment(PaymentCard, card("4242424242424242", "06/26", "1"), now)
		require.NoError(t, err)
		assert.True(t, res.Approved, "current month is still valid")
	})
}

func TestExpired(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, expired("garbage", now))
	assert.True(t, expired("13/30", now))
	assert.True(t, expired("12/25", now))
	assert.False(t, expired("01/26", now))
	assert.False(t, expired("1/27", now))
}

func TestPaymentMethod_IsValid(t *testing.T) {
	assert.True(t, PaymentCard.IsValid())
	assert.False(t, PaymentMethod("bitcoin").IsValid())
}

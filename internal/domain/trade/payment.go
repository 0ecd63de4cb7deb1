package trade

import (
	"strconv"
	"strings"
	"time"
)

// PaymentMethod chosen at checkout
type PaymentMethod string

const (
	PaymentCard     PaymentMethod = "card"
	PaymentOXXO     PaymentMethod = "oxxo"
	PaymentTransfer PaymentMethod = "transfer"
)

// IsValid checks if the method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCard, PaymentOXXO, PaymentTransfer:
		return true
	}
	return false
}

// CardOutcome is what a test card produces
type CardOutcome string

const (
	CardSuccess      CardOutcome = "success"
	CardDeclined     CardOutcome = "declined"
	CardInsufficient CardOutcome = "insufficient"
	CardExpired      CardOutcome = "expired"
	CardInvalidCVC   CardOutcome = "invalid_cvc"
)

// testCards is the sandbox card table. Any other number is rejected.
var testCards = map[string]struct {
	outcome CardOutcome
	message string
}{
	"4242424242424242": {CardSuccess, "Pago aprobado"},
	"4000000000000002": {CardDeclined, "Tarjeta declinada"},
	"4000000000009995": {CardInsufficient, "Fondos insuficientes"},
	"4000000000000069": {CardExpired, "Tarjeta expirada"},
	"4000000000000127": {CardInvalidCVC, "CVC inválido"},
}

// Card data entered at checkout
type Card struct {
	Number string // spaces allowed
	Expiry string // MM/YY
	CVV    string
	Name   string
}

// Complete reports whether every field is filled
func (c Card) Complete() bool {
	return c.Number != "" && c.Expiry != "" && c.CVV != "" && c.Name != ""
}

// PaymentResult of a simulated payment
type PaymentResult struct {
	Approved bool
	Status   OrderStatus // status the order should end in
	Outcome  CardOutcome
	Message  string
}

// Errors from the payment simulator
var (
	ErrCardIncomplete = &PaymentError{Code: "CARD_INCOMPLETE"}
	ErrCardUnknown    = &PaymentError{Code: "CARD_UNKNOWN"}
)

// PaymentError is a rejection before any order is created
type PaymentError struct {
	Code    string
	Message string
}

func (e *PaymentError) Error() string {
	if e.Message != "" {
		return "payment rejected: " + e.Message
	}
	return "payment rejected: " + strings.ToLower(e.Code)
}

// Is matches on Code so wrapped errors compare equal to the sentinels
func (e *PaymentError) Is(target error) bool {
	t, ok := target.(*PaymentError)
	return ok && t.Code == e.Code
}

// SimulatePayment runs the sandbox payment for method. Cash and transfer
// always succeed and leave the order pending; cards follow the test table.
func SimulatePayment(method PaymentMethod, card Card, now time.Time) (PaymentResult, error) {
	if method != PaymentCard {
		return PaymentResult{Approved: true, Status: OrderStatusPending}, nil
	}

	if !card.Complete() {
		return PaymentResult{}, ErrCardIncomplete
	}

	number := strings.ReplaceAll(card.Number, " ", "")
	tc, ok := testCards[number]
	if !ok {
		return PaymentResult{}, ErrCardUnknown
	}

	if expired(card.Expiry, now) {
		return PaymentResult{Outcome: CardExpired, Message: testCards["4000000000000069"].message}, nil
	}

	if tc.outcome == CardSuccess {
		return PaymentResult{Approved: true, Status: OrderStatusPaid, Outcome: tc.outcome, Message: tc.message}, nil
	}
	return PaymentResult{Outcome: tc.outcome, Message: tc.message}, nil
}

// expired parses MM/YY and reports whether the card is past its month.
// Unparseable dates count as expired.
func expired(expiry string, now time.Time) bool {
	month, year, ok := strings.Cut(expiry, "/")
	if !ok {
		return true
	}
	m, errM := strconv.Atoi(strings.TrimSpace(month))
	y, errY := strconv.Atoi(strings.TrimSpace(year))
	if errM != nil || errY != nil || m < 1 || m > 12 {
		return true
	}
	curYear := now.Year() % 100
	curMonth := int(now.Month())
	return y < curYear || (y == curYear && m < curMonth)
}

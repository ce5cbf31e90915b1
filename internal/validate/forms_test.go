package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validPaymentForm() PaymentForm {
	return PaymentForm{
		AssignmentID:  "5b7f1c0a-4e7b-4d4e-9a1f-2f6c8d9e0a1b",
		PaymentStatus: "paid",
		AmountPaid:    "300.50",
		Notes:         "pagó completo",
	}
}

func TestClient(t *testing.T) {
	res := Client(ClientForm{Name: "Juan Pérez", Phone: "3001234567", Address: "Calle 45 #12-30"})
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)

	res = Client(ClientForm{Phone: "3001234567"})
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "name")
	assert.Contains(t, res.Errors, "address")
	assert.NotContains(t, res.Errors, "phone")
}

func TestDebt(t *testing.T) {
	form := DebtForm{
		ClientID:          "5b7f1c0a-4e7b-4d4e-9a1f-2f6c8d9e0a1b",
		TotalAmount:       "1000",
		InstallmentAmount: "300",
		Frequency:         "daily",
		StartDate:         "2024-01-01",
	}
	assert.True(t, Debt(form).Valid)

	// Oversized installment is legal: a one-installment plan.
	form.InstallmentAmount = "5000"
	assert.True(t, Debt(form).Valid)

	bad := form
	bad.ClientID = "not-a-uuid"
	res := Debt(bad)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "client_id")

	bad = form
	bad.TotalAmount = "-100"
	res = Debt(bad)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "total_amount")

	bad = form
	bad.TotalAmount = "10.123"
	assert.False(t, Debt(bad).Valid)

	bad = form
	bad.Frequency = "monthly"
	res = Debt(bad)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "frequency")

	bad = form
	bad.StartDate = "01/01/2024"
	res = Debt(bad)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "start_date")
}

func TestPayment(t *testing.T) {
	assert.True(t, Payment(validPaymentForm()).Valid)

	form := validPaymentForm()
	form.AmountPaid = "-1"
	res := Payment(form)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "amount_paid")

	form = validPaymentForm()
	form.AmountPaid = ""
	res = Payment(form)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "amount_paid")

	form = validPaymentForm()
	form.PaymentStatus = "refused"
	res = Payment(form)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "payment_status")

	form = validPaymentForm()
	form.PaymentStatus = "client_absent"
	form.AmountPaid = ""
	assert.True(t, Payment(form).Valid)

	// An amount on a not-paid outcome is contradictory input.
	form = validPaymentForm()
	form.PaymentStatus = "not_paid"
	form.AmountPaid = "100"
	res = Payment(form)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "amount_paid")
}

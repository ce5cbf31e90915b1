package validate

// ClientForm is the shape an admin submits to create or update a client.
type ClientForm struct {
	Name       string `json:"name" validate:"required,max=100"`
	DocumentID string `json:"document_id" validate:"max=20"`
	Phone      string `json:"phone" validate:"required,max=20"`
	Address    string `json:"address" validate:"required,max=200"`
}

// DebtForm is the shape an admin submits to create a debt. Amounts travel
// as strings so precision survives the JSON round trip.
type DebtForm struct {
	ClientID          string `json:"client_id" validate:"required,uuid"`
	TotalAmount       string `json:"total_amount" validate:"required,posamount"`
	InstallmentAmount string `json:"installment_amount" validate:"required,posamount"`
	Frequency         string `json:"frequency" validate:"required,oneof=daily weekly"`
	StartDate         string `json:"start_date" validate:"required,dateymd"`
}

// PaymentForm is the shape a collector submits when recording a visit
// outcome. AmountPaid is only meaningful (and then mandatory and
// positive) when the outcome is paid.
type PaymentForm struct {
	AssignmentID  string `json:"assignment_id" validate:"required,uuid"`
	PaymentStatus string `json:"payment_status" validate:"required,oneof=paid not_paid client_absent"`
	AmountPaid    string `json:"amount_paid" validate:"required_if=PaymentStatus paid,omitempty,posamount"`
	Notes         string `json:"notes" validate:"max=500"`
}

// Client validates a client form.
func Client(form ClientForm) Result {
	return check(form)
}

// Debt validates a debt form. An installment amount above the total is
// deliberately allowed; it collapses the plan to a single installment.
func Debt(form DebtForm) Result {
	return check(form)
}

// Payment validates a payment form.
func Payment(form PaymentForm) Result {
	res := check(form)
	if form.PaymentStatus != "paid" && form.AmountPaid != "" {
		res.addError("amount_paid", "is only allowed when the outcome is paid")
	}
	return res
}

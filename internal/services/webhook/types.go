package webhook

// Event type for a confirmed transfer into a reserved account. Anything
// else is acknowledged and ignored.
const EventSuccessfulTransaction = "SUCCESSFUL_TRANSACTION"

// Event is the payment processor's notification envelope.
type Event struct {
	EventType string    `json:"eventType"`
	EventData EventData `json:"eventData"`
}

// EventData carries the funding details. AmountPaid arrives as decimal
// naira and is converted to kobo before it reaches the ledger.
type EventData struct {
	TransactionReference     string  `json:"transactionReference"`
	PaymentReference         string  `json:"paymentReference"`
	DestinationAccountNumber string  `json:"destinationAccountNumber"`
	AmountPaid               float64 `json:"amountPaid"`
	PaymentDescription       string  `json:"paymentDescription"`
	PaidOn                   string  `json:"paidOn"`
}

// Ack outcomes. Every outcome short of an internal fault is acknowledged
// with 200 at the transport, because the processor treats anything else
// as "redeliver".
const (
	OutcomeCredited          = "credited"
	OutcomeAlreadyProcessed  = "already_processed"
	OutcomeIgnoredEvent      = "ignored_event"
	OutcomeInvalidSignature  = "invalid_signature"
	OutcomeInvalidPayload    = "invalid_payload"
	OutcomeUnknownAccount    = "unknown_account"
	OutcomeReferenceConflict = "reference_conflict"
)

// AckResult reports what the ingestor did with an event.
type AckResult struct {
	Outcome   string `json:"outcome"`
	Reference string `json:"reference,omitempty"`
}

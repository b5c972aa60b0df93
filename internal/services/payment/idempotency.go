package payment

import (
	"math"

	"github.com/kevin07696/monext-gateway/internal/domain"
	"github.com/kevin07696/monext-gateway/internal/domain/ports"
)

// amountEpsilon absorbs floating-point noise in the amounts Monext reports on
// associated transactions.
const amountEpsilon = 1e-4

// cancelAssociatedType is the associated-transaction type tag a cancellation
// shows up under on the Monext ledger. The API reference vocabulary lists both
// CANCEL and RESET across versions; keep the value pinned here and verify it
// against the environment's actual responses before changing it.
const cancelAssociatedType = ports.OperationCancel

// associatedTypeFor maps a requested operation to the ledger type tag its
// applied effect is recorded under.
func associatedTypeFor(operation string) string {
	if operation == ports.OperationCancel {
		return cancelAssociatedType
	}
	return operation
}

// AlreadyProcessed decides whether the requested operation's effect is already
// fully applied on the Monext ledger. It is the sole idempotency mechanism:
// there is no local de-duplication ledger, so correctness depends on querying
// the authoritative transaction detail immediately before every mutating call.
//
// A detail payload missing the payment type, capture mode or requested amount
// is a contract break: idempotency cannot be decided safely, so it is a hard
// error rather than "not processed".
func AlreadyProcessed(detail *ports.TransactionDetail, operation string) (bool, error) {
	if detail == nil || detail.Transaction == nil ||
		detail.Transaction.PaymentType == "" ||
		detail.Transaction.Capture == "" ||
		detail.Transaction.RequestedAmount == nil {
		return false, domain.NewDomainError(domain.ErrorCodeMalformedResponse,
			"missing transaction details in gateway response")
	}

	if detail.AssociatedTransactions == nil {
		return false, nil
	}

	wantType := associatedTypeFor(operation)

	var applied float64
	for _, tx := range detail.AssociatedTransactions {
		if tx.Type == wantType && tx.Status == "OK" {
			applied += tx.Amount
		}
	}

	return math.Abs(applied-*detail.Transaction.RequestedAmount) < amountEpsilon, nil
}

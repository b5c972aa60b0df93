package ports

import "context"

// Monext outcome vocabulary. The set is closed on the PSP side; anything else
// maps to the unknown state.
const (
	OutcomeAccepted      = "ACCEPTED"
	OutcomeError         = "ERROR"
	OutcomeRefused       = "REFUSED"
	OutcomeInProgress    = "INPROGRESS"
	OutcomeOnHoldPartner = "ONHOLD_PARTNER"
	OutcomePendingRisk   = "PENDING_RISK"
	OutcomeCancelled     = "CANCELLED"
)

// Capture modes reported per transaction.
const (
	CaptureAutomatic = "AUTOMATIC"
	CaptureManual    = "MANUAL"
)

// Associated-transaction operation types on the Monext ledger.
const (
	OperationCapture = "CAPTURE"
	OperationCancel  = "CANCEL"
	OperationRefund  = "REFUND"
)

// ResultBlock is the business-level outcome Monext embeds in both success and
// error envelopes.
type ResultBlock struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// APIResult is the normalized shape every gateway call resolves to. Transport
// errors, configuration errors and HTTP error statuses are all folded into it;
// the gateway never surfaces those as Go errors. Status carries the HTTP status
// when one exists and 500 otherwise.
type APIResult struct {
	Status int          `json:"status"`
	Result *ResultBlock `json:"result,omitempty"`
	Error  *ResultBlock `json:"error,omitempty"`
}

// HTTPStatus returns the status the call resolved with.
func (r *APIResult) HTTPStatus() int {
	return r.Status
}

// SetStatus records the HTTP status the call resolved with.
func (r *APIResult) SetStatus(status int) {
	r.Status = status
}

// SetFailure folds a transport, configuration or HTTP-level failure into the
// result shape.
func (r *APIResult) SetFailure(status int, title, detail string) {
	r.Status = status
	r.Error = &ResultBlock{Title: title, Detail: detail}
}

// BusinessError reports whether a 2xx envelope still carries a business-level
// rejection. Monext returns payment errors inside 201 bodies, so transport
// status alone never proves success.
func (r *APIResult) BusinessError() bool {
	return r.Result != nil && r.Result.Title == OutcomeError
}

// SessionTransaction is one transaction entry of a session-detail response.
type SessionTransaction struct {
	ID      string `json:"id"`
	Capture string `json:"capture"`
}

// SessionResult is the response to a get-session call. The first transaction
// in the list is authoritative.
type SessionResult struct {
	APIResult
	Transactions []SessionTransaction `json:"transactions"`
}

// TransactionInfo is the inner transaction block of a transaction-detail
// response. Pointer fields distinguish absent from zero: all three are
// required, and a missing one means the response is malformed.
type TransactionInfo struct {
	PaymentType     string   `json:"paymentType"`
	Capture         string   `json:"capture"`
	RequestedAmount *float64 `json:"requestedAmount"`
}

// AssociatedTransaction is one sub-operation (capture, cancel or refund)
// already applied to a transaction on the Monext ledger.
type AssociatedTransaction struct {
	Type   string  `json:"type"`
	Status string  `json:"status"`
	Amount float64 `json:"amount"`
}

// TransactionDetail is the response to a get-transaction call.
type TransactionDetail struct {
	APIResult
	Transaction            *TransactionInfo        `json:"transaction"`
	AssociatedTransactions []AssociatedTransaction `json:"associatedTransactions,omitempty"`
}

// SessionCreated is the response to a create-session call.
type SessionCreated struct {
	APIResult
	SessionID   string `json:"sessionId"`
	RedirectURL string `json:"redirectURL"`
}

// CheckoutOrder carries the order data needed to open a Monext checkout
// session. The hosting system maps its own order model onto this.
type CheckoutOrder struct {
	Reference        string         `json:"reference"`
	CurrencyCode     string         `json:"currency_code"`
	CountryCode      string         `json:"country_code"`
	LocaleCode       string         `json:"locale_code"`
	AmountCents      int64          `json:"amount_cents"`
	TaxCents         int64          `json:"tax_cents"`
	DiscountCents    int64          `json:"discount_cents"`
	ShippingCents    int64          `json:"shipping_cents"`
	ShippingProvider string         `json:"shipping_provider"`
	Items            []CheckoutItem `json:"items"`
	Buyer            Buyer          `json:"buyer"`
	Billing          Address        `json:"billing"`
	Delivery         Address        `json:"delivery"`
}

// CheckoutItem is one order line in the create-session payload.
type CheckoutItem struct {
	Reference    string `json:"reference"`
	TaxRateBps   int64  `json:"tax_rate_bps"`
	SubCategory1 string `json:"sub_category_1"`
	SubCategory2 string `json:"sub_category_2"`
	PriceCents   int64  `json:"price_cents"`
	Quantity     int    `json:"quantity"`
}

// Buyer identifies the customer opening the checkout session.
type Buyer struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	BirthDate string `json:"birth_date"`
}

// Address is a billing or delivery address block.
type Address struct {
	Country   string `json:"country"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	Street    string `json:"street"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
	CreatedAt string `json:"created_at"`
}

// MonextGateway is the client contract for the Monext retail API. Every call
// resolves to a structured result; downstream components branch purely on
// Status plus payload shape, never on thrown transport errors.
type MonextGateway interface {
	CreateSession(ctx context.Context, order *CheckoutOrder) *SessionCreated
	GetSession(ctx context.Context, token string) *SessionResult
	GetTransaction(ctx context.Context, transactionID string) *TransactionDetail
	CaptureTransaction(ctx context.Context, transactionID string, amountCents int64) *APIResult
	CancelTransaction(ctx context.Context, transactionID string, amountCents int64) *APIResult
	RefundTransaction(ctx context.Context, transactionID string, amountCents int64) *APIResult
}

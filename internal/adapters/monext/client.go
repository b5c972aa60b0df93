package monext

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kevin07696/monext-gateway/internal/domain"
	"github.com/kevin07696/monext-gateway/internal/domain/ports"
	"github.com/kevin07696/monext-gateway/pkg/observability"
	"github.com/kevin07696/monext-gateway/pkg/resilience"
	"go.uber.org/zap"
)

const (
	sessionsEndpoint     = "/checkout/sessions"
	transactionsEndpoint = "/checkout/transactions"

	// Reads are retried; mutating calls go out exactly once per decision.
	maxReadAttempts = 3
)

// Config holds the Monext gateway settings for one merchant integration.
type Config struct {
	BaseURL         string   // environment URL, e.g. https://api-sandbox.retail.monext.com/v1
	APIKey          string   // basic-auth token
	PointOfSale     string
	ContractNumbers []string
	CaptureMode     string // AUTOMATIC or MANUAL, sent on session creation
	ReturnURL       string // browser-return endpoint exposed by this service
	NotificationURL string // webhook endpoint exposed by this service
}

// Validate checks that all fields the API requires are present. A hole here is
// a configuration error, reported as an internal failure with no call made.
func (c Config) Validate() error {
	switch {
	case c.APIKey == "":
		return domain.NewDomainError(domain.ErrorCodeConfigMissing, "monext api key is not configured")
	case c.BaseURL == "":
		return domain.NewDomainError(domain.ErrorCodeConfigMissing, "monext environment url is not configured")
	case c.PointOfSale == "":
		return domain.NewDomainError(domain.ErrorCodeConfigMissing, "monext point of sale is not configured")
	case len(c.ContractNumbers) == 0:
		return domain.NewDomainError(domain.ErrorCodeConfigMissing, "monext contract numbers are not configured")
	case c.CaptureMode == "":
		return domain.NewDomainError(domain.ErrorCodeConfigMissing, "monext capture mode is not configured")
	}
	return nil
}

// Client implements ports.MonextGateway over the Monext retail HTTP API.
// It is stateless: every call folds transport, configuration and HTTP-level
// failures into the normalized result shape instead of returning Go errors.
type Client struct {
	config     Config
	httpClient ports.HTTPClient
	backoff    resilience.BackoffStrategy
	logger     *zap.Logger
}

// NewClient creates a new Monext API client with dependency injection
func NewClient(config Config, httpClient ports.HTTPClient, logger *zap.Logger) *Client {
	return &Client{
		config:     config,
		httpClient: httpClient,
		backoff:    resilience.DefaultExponentialBackoff(),
		logger:     logger,
	}
}

// NewClientWithDefaults creates a new Monext API client with a default HTTP client
func NewClientWithDefaults(config Config, logger *zap.Logger) *Client {
	return NewClient(config, &http.Client{Timeout: 30 * time.Second}, logger)
}

// response is the envelope contract every typed API response satisfies by
// embedding ports.APIResult.
type response interface {
	SetStatus(status int)
	SetFailure(status int, title, detail string)
	HTTPStatus() int
}

// CreateSession opens a checkout session for the order.
func (c *Client) CreateSession(ctx context.Context, order *ports.CheckoutOrder) *ports.SessionCreated {
	out := &ports.SessionCreated{}
	c.call(ctx, "create_session", http.MethodPost, sessionsEndpoint, c.sessionPayload(order), out)
	return out
}

// GetSession fetches session details by token.
func (c *Client) GetSession(ctx context.Context, token string) *ports.SessionResult {
	out := &ports.SessionResult{}
	c.call(ctx, "get_session", http.MethodGet, sessionsEndpoint+"/"+token, nil, out)
	return out
}

// GetTransaction fetches transaction details, including the associated
// sub-transactions the idempotency check sums over.
func (c *Client) GetTransaction(ctx context.Context, transactionID string) *ports.TransactionDetail {
	out := &ports.TransactionDetail{}
	c.call(ctx, "get_transaction", http.MethodGet, transactionsEndpoint+"/"+transactionID, nil, out)
	return out
}

// CaptureTransaction captures the given amount on a transaction.
func (c *Client) CaptureTransaction(ctx context.Context, transactionID string, amountCents int64) *ports.APIResult {
	out := &ports.APIResult{}
	c.call(ctx, "capture", http.MethodPost, transactionsEndpoint+"/"+transactionID+"/captures",
		map[string]int64{"amount": amountCents}, out)
	return out
}

// CancelTransaction cancels (resets) a not-yet-captured transaction.
func (c *Client) CancelTransaction(ctx context.Context, transactionID string, amountCents int64) *ports.APIResult {
	out := &ports.APIResult{}
	c.call(ctx, "cancel", http.MethodPost, transactionsEndpoint+"/"+transactionID+"/cancels",
		map[string]int64{"amount": amountCents}, out)
	return out
}

// RefundTransaction refunds the given amount on a captured transaction.
func (c *Client) RefundTransaction(ctx context.Context, transactionID string, amountCents int64) *ports.APIResult {
	out := &ports.APIResult{}
	c.call(ctx, "refund", http.MethodPost, transactionsEndpoint+"/"+transactionID+"/refunds",
		map[string]int64{"amount": amountCents}, out)
	return out
}

// call performs one API operation and fills out with the normalized result.
func (c *Client) call(ctx context.Context, operation, method, path string, body interface{}, out response) {
	start := time.Now()
	defer func() {
		observability.RecordGatewayRequest(operation, out.HTTPStatus(), time.Since(start))
	}()

	if err := c.config.Validate(); err != nil {
		out.SetFailure(http.StatusInternalServerError, ports.OutcomeError, err.Error())
		return
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			out.SetFailure(http.StatusInternalServerError, ports.OutcomeError, "marshal request: "+err.Error())
			return
		}
	}

	url := strings.TrimRight(c.config.BaseURL, "/ ") + path

	var status int
	var respBody []byte
	do := func() error {
		var err error
		status, respBody, err = c.roundTrip(ctx, method, url, payload)
		return err
	}

	var err error
	if method == http.MethodGet {
		err = resilience.Retry(ctx, maxReadAttempts, c.backoff, do)
	} else {
		err = do()
	}
	if err != nil {
		c.logger.Error("monext call failed",
			zap.String("operation", operation),
			zap.String("url", url),
			zap.Error(err),
		)
		out.SetFailure(http.StatusInternalServerError, ports.OutcomeError, err.Error())
		return
	}

	if status >= http.StatusBadRequest {
		var block ports.ResultBlock
		if jsonErr := json.Unmarshal(respBody, &block); jsonErr != nil || block.Title == "" {
			block = ports.ResultBlock{Title: ports.OutcomeError, Detail: string(respBody)}
		}
		out.SetFailure(status, block.Title, block.Detail)
		return
	}

	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			out.SetFailure(http.StatusInternalServerError, ports.OutcomeError, "decode response: "+err.Error())
			return
		}
	}
	out.SetStatus(status)
}

// roundTrip performs a single HTTP exchange and drains the body.
func (c *Client) roundTrip(ctx context.Context, method, url string, payload []byte) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Basic "+c.config.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	return resp.StatusCode, respBody, nil
}

// sessionPayload builds the create-session request body from the order and
// gateway configuration. All amounts are minor units.
func (c *Client) sessionPayload(order *ports.CheckoutOrder) map[string]interface{} {
	items := make([]map[string]interface{}, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, map[string]interface{}{
			"reference":    item.Reference,
			"taxRate":      item.TaxRateBps,
			"subCategory1": item.SubCategory1,
			"subCategory2": item.SubCategory2,
			"price":        item.PriceCents,
			"quantity":     item.Quantity,
		})
	}

	language := order.LocaleCode
	if i := strings.IndexByte(language, '_'); i >= 0 {
		language = language[:i]
	}

	return map[string]interface{}{
		"pointOfSaleReference": c.config.PointOfSale,
		"paymentMethod": map[string]interface{}{
			"paymentMethodIDs": c.config.ContractNumbers,
		},
		"payment": map[string]interface{}{
			"paymentType": "ONE_OFF",
			"capture":     c.config.CaptureMode,
		},
		"order": map[string]interface{}{
			"currency":  order.CurrencyCode,
			"origin":    "E_COM",
			"country":   order.CountryCode,
			"reference": order.Reference,
			"amount":    order.AmountCents,
			"taxes":     order.TaxCents,
			"discount":  order.DiscountCents,
			"items":     items,
		},
		"buyer": map[string]interface{}{
			"legalStatus":    "PRIVATE",
			"id":             order.Buyer.ID,
			"firstName":      order.Buyer.FirstName,
			"lastName":       order.Buyer.LastName,
			"email":          order.Buyer.Email,
			"mobile":         order.Buyer.Mobile,
			"birthDate":      order.Buyer.BirthDate,
			"billingAddress": addressPayload(order.Billing),
		},
		"delivery": map[string]interface{}{
			"charge":   order.ShippingCents,
			"provider": order.ShippingProvider,
			"address":  addressPayload(order.Delivery),
		},
		"threeDS":         map[string]string{"challengeInd": "NO_PREFERENCE"},
		"returnURL":       c.config.ReturnURL,
		"notificationURL": c.config.NotificationURL,
		"languageCode":    strings.ToUpper(language),
	}
}

func addressPayload(a ports.Address) map[string]interface{} {
	return map[string]interface{}{
		"country":           a.Country,
		"firstName":         a.FirstName,
		"lastName":          a.LastName,
		"email":             a.Email,
		"mobile":            a.Mobile,
		"street":            a.Street,
		"city":              a.City,
		"zip":               a.Zip,
		"addressCreateDate": a.CreatedAt,
	}
}

package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const (
	sandboxEndpoint    = "https://payments.sandbox.braintree-api.com/graphql"
	productionEndpoint = "https://payments.braintree-api.com/graphql"
	apiVersion         = "2019-01-01"
)

const createClientTokenMutation = `mutation CreateClientToken($input: CreateClientTokenInput) {
  createClientToken(input: $input) { clientToken }
}`

const chargeMutation = `mutation Charge($input: ChargePaymentMethodInput!) {
  chargePaymentMethod(input: $input) {
    transaction { id status amount { value currencyCode } }
  }
}`

const authorizeMutation = `mutation Authorize($input: AuthorizePaymentMethodInput!) {
  authorizePaymentMethod(input: $input) {
    transaction { id status amount { value currencyCode } }
  }
}`

const reverseMutation = `mutation Reverse($input: ReverseTransactionInput!) {
  reverseTransaction(input: $input) { reversal { ... on Transaction { id status } } }
}`

// BraintreeConfig holds merchant credentials.
type BraintreeConfig struct {
	Environment string
	MerchantID  string
	PublicKey   string
	PrivateKey  string
	// Endpoint overrides the environment's GraphQL URL.
	Endpoint string
}

// BraintreeGateway implements Gateway against the Braintree GraphQL API.
type BraintreeGateway struct {
	endpoint   string
	authHeader string
	httpClient *http.Client
}

var _ Gateway = (*BraintreeGateway)(nil)

// NewBraintreeGateway creates a gateway client.
func NewBraintreeGateway(cfg BraintreeConfig, httpClient *http.Client) *BraintreeGateway {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = sandboxEndpoint
		if cfg.Environment == "production" {
			endpoint = productionEndpoint
		}
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	credentials := base64.StdEncoding.EncodeToString([]byte(cfg.PublicKey + ":" + cfg.PrivateKey))
	return &BraintreeGateway{
		endpoint:   endpoint,
		authHeader: "Basic " + credentials,
		httpClient: httpClient,
	}
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		ErrorClass string `json:"errorClass"`
	} `json:"extensions"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type transactionPayload struct {
	Transaction struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Amount struct {
			Value        string `json:"value"`
			CurrencyCode string `json:"currencyCode"`
		} `json:"amount"`
	} `json:"transaction"`
}

// ClientToken issues a client token.
func (g *BraintreeGateway) ClientToken(ctx context.Context) (string, error) {
	var data struct {
		CreateClientToken struct {
			ClientToken string `json:"clientToken"`
		} `json:"createClientToken"`
	}
	vars := map[string]interface{}{"input": map[string]interface{}{}}
	if err := g.do(ctx, createClientTokenMutation, vars, &data); err != nil {
		return "", err
	}
	return data.CreateClientToken.ClientToken, nil
}

// Sale charges the payment method. SubmitForSettlement selects a charge
// (authorize and capture) instead of an authorization only.
func (g *BraintreeGateway) Sale(ctx context.Context, req SaleRequest) (*Transaction, error) {
	vars := map[string]interface{}{
		"input": map[string]interface{}{
			"paymentMethodId": req.PaymentMethodNonce,
			"transaction": map[string]interface{}{
				"amount": req.Amount.StringFixed(2),
			},
		},
	}

	var data map[string]transactionPayload
	query, field := authorizeMutation, "authorizePaymentMethod"
	if req.Options.SubmitForSettlement {
		query, field = chargeMutation, "chargePaymentMethod"
	}
	if err := g.do(ctx, query, vars, &data); err != nil {
		return nil, err
	}

	payload, ok := data[field]
	if !ok || payload.Transaction.ID == "" {
		return nil, &Error{Message: "gateway returned no transaction"}
	}
	amount, err := decimal.NewFromString(payload.Transaction.Amount.Value)
	if err != nil {
		amount = req.Amount
	}
	return &Transaction{
		ID:           payload.Transaction.ID,
		Status:       payload.Transaction.Status,
		Amount:       amount,
		CurrencyCode: payload.Transaction.Amount.CurrencyCode,
	}, nil
}

// Void reverses an unsettled transaction.
func (g *BraintreeGateway) Void(ctx context.Context, transactionID string) error {
	vars := map[string]interface{}{
		"input": map[string]interface{}{"transactionId": transactionID},
	}
	var data json.RawMessage
	return g.do(ctx, reverseMutation, vars, &data)
}

func (g *BraintreeGateway) do(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("encode gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Authorization", g.authHeader)
	req.Header.Set("Braintree-Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call gateway: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read gateway response: %w", err)
	}

	var gql graphQLResponse
	if err := json.Unmarshal(raw, &gql); err != nil {
		if resp.StatusCode != http.StatusOK {
			return &Error{Message: fmt.Sprintf("gateway returned status %d", resp.StatusCode)}
		}
		return fmt.Errorf("decode gateway response: %w", err)
	}
	if len(gql.Errors) > 0 {
		gwErr := &Error{Message: gql.Errors[0].Message}
		for _, e := range gql.Errors[1:] {
			gwErr.Details = append(gwErr.Details, e.Message)
		}
		return gwErr
	}
	if resp.StatusCode != http.StatusOK {
		return &Error{Message: fmt.Sprintf("gateway returned status %d", resp.StatusCode)}
	}
	if len(gql.Data) == 0 {
		return &Error{Message: "gateway returned no data"}
	}
	if err := json.Unmarshal(gql.Data, out); err != nil {
		return fmt.Errorf("decode gateway data: %w", err)
	}
	return nil
}

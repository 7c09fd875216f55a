package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/tiffinworks/commerce-backend/pkg/errors"
	"github.com/tiffinworks/commerce-backend/pkg/logger"
)

const responseBodyReadLimit int64 = 4096

var (
	errEndpointRequired = errors.New("shopify endpoint is required")
	errTokenRequired    = errors.New("shopify access token is required")
)

// UserError mirrors the userErrors/customerUserErrors entries every Shopify
// mutation can return alongside a well-formed response.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// JoinUserErrors aggregates user-facing messages into a single string.
func JoinUserErrors(errs []UserError) string {
	messages := make([]string, 0, len(errs))
	for _, ue := range errs {
		if strings.TrimSpace(ue.Message) == "" {
			continue
		}
		messages = append(messages, ue.Message)
	}
	return strings.Join(messages, "; ")
}

// graphQLClient is the shared JSON-over-HTTP transport for both API classes.
type graphQLClient struct {
	httpClient  *http.Client
	endpoint    string
	tokenHeader string
	token       string
	logger      *logger.Logger
}

// Option configures optional client behavior.
type Option func(*graphQLClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *graphQLClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithEndpoint overrides the GraphQL endpoint URL.
func WithEndpoint(endpoint string) Option {
	return func(c *graphQLClient) {
		trimmed := strings.TrimSpace(endpoint)
		if trimmed != "" {
			c.endpoint = trimmed
		}
	}
}

func newGraphQLClient(endpoint, tokenHeader, token string, logg *logger.Logger, opts ...Option) (*graphQLClient, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errEndpointRequired
	}
	if strings.TrimSpace(token) == "" {
		return nil, errTokenRequired
	}

	client := &graphQLClient{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		endpoint:    strings.TrimSpace(endpoint),
		tokenHeader: tokenHeader,
		token:       strings.TrimSpace(token),
		logger:      logg,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// execute posts one GraphQL operation and decodes its data payload into out.
func (c *graphQLClient) execute(ctx context.Context, op, query string, variables map[string]any, out any) error {
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("marshal %s request", op))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("build %s request", op))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(c.tokenHeader, c.token)

	c.log(ctx, "request", op, map[string]any{"variables": redactedKeys(variables)})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log(ctx, "error", op, map[string]any{"error": err.Error()})
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("execute %s request", op))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		err := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		c.log(ctx, "error", op, map[string]any{"error": err.Error()})
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s request failed", op))
	}

	var envelope graphQLEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s response", op))
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, ge := range envelope.Errors {
			messages = append(messages, ge.Message)
		}
		err := fmt.Errorf("graphql errors: %s", strings.Join(messages, "; "))
		c.log(ctx, "error", op, map[string]any{"error": err.Error()})
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s reported errors", op))
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("unmarshal %s data", op))
		}
	}

	c.log(ctx, "response", op, nil)
	return nil
}

func (c *graphQLClient) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = v
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("shopify %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("shopify %s", phase))
	}
}

// redactedKeys logs the variable names being sent, never their values; tokens,
// emails, and multipass payloads ride in these maps.
func redactedKeys(variables map[string]any) []string {
	keys := make([]string, 0, len(variables))
	for k := range variables {
		keys = append(keys, k)
	}
	return keys
}

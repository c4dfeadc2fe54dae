package soap

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/s0up4200/jnetcce/cce"
)

const contentType = "application/soap+xml; charset=utf-8"

// Signer signs a serialized envelope before it is sent
type Signer interface {
	Sign(envelope []byte) ([]byte, error)
}

// SignerFunc adapts a function to Signer
type SignerFunc func(envelope []byte) ([]byte, error)

// Sign calls f
func (f SignerFunc) Sign(envelope []byte) ([]byte, error) {
	return f(envelope)
}

// Client is a cce.Transport speaking SOAP to the JNET CCE endpoint
type Client struct {
	endpoint   string
	userID     string
	httpClient *http.Client
	limiter    *rate.Limiter
	signer     Signer
	logger     zerolog.Logger
}

var _ cce.Transport = (*Client)(nil)

// NewClient creates a new JNET SOAP client
func NewClient(endpoint, userID string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if userID == "" {
		return nil, errors.New("jnet user id is required")
	}
	if err := ValidateEndpoint(endpoint); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		var err error
		httpClient, err = newHTTPClient(o)
		if err != nil {
			return nil, err
		}
	}

	limit := rate.Inf
	if o.requestsPerSecond > 0 {
		limit = rate.Limit(o.requestsPerSecond)
	}

	return &Client{
		endpoint:   endpoint,
		userID:     userID,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, o.burst),
		signer:     o.signer,
		logger:     logger,
	}, nil
}

func newHTTPClient(o clientOptions) (*http.Client, error) {
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: o.insecureSkipVerify,
	}

	if o.certFile != "" || o.keyFile != "" {
		cert, err := tls.LoadX509KeyPair(o.certFile, o.keyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if o.caFile != "" {
		pem, err := os.ReadFile(o.caFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read server certificate: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", o.caFile)
		}
		tlsConfig.RootCAs = pool
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig

	return &http.Client{
		Timeout:   o.timeout,
		Transport: transport,
	}, nil
}

// Submit sends RequestCourtCaseEvent
func (c *Client) Submit(ctx context.Context, req cce.SubmittedRequest) (cce.Node, error) {
	body, err := newSubmitBody(c.userID, req)
	if err != nil {
		return nil, err
	}
	return c.call(ctx, "RequestCourtCaseEvent", body)
}

// QueryQueue sends RequestCourtCaseEventInfo
func (c *Client) QueryQueue(ctx context.Context, q cce.QueueQuery) (cce.Node, error) {
	return c.call(ctx, "RequestCourtCaseEventInfo", newInfoBody(c.userID, q))
}

// FetchByFileID sends ReceiveCourtCaseEventReply
func (c *Client) FetchByFileID(ctx context.Context, id cce.FileID) (cce.Node, error) {
	return c.call(ctx, "ReceiveCourtCaseEventReply", newReceiveBody(c.userID, id))
}

// call posts one envelope and returns the decoded Body of the reply
func (c *Client) call(ctx context.Context, operation string, body envelopeBody) (cce.Node, error) {
	payload, err := marshalEnvelope(body)
	if err != nil {
		return nil, err
	}
	if c.signer != nil {
		if payload, err = c.signer.Sign(payload); err != nil {
			return nil, fmt.Errorf("failed to sign %s: %w", operation, err)
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	c.logger.Debug().
		Str("operation", operation).
		Str("endpoint", c.endpoint).
		Msg("Sending JNET request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &cce.Error{Kind: cce.KindTransport, Message: operation + " request failed", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &cce.Error{Kind: cce.KindTransport, Message: "failed to read " + operation + " reply", Response: resp, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newHTTPError(resp, data)
	}

	reply, err := DecodeEnvelope(bytes.NewReader(data))
	if err != nil {
		return nil, &cce.Error{Kind: cce.KindProtocol, Message: "failed to parse " + operation + " reply", RawData: string(data), Response: resp, Err: err}
	}

	c.logger.Debug().
		Str("operation", operation).
		Int("status", resp.StatusCode).
		Int("bytes", len(data)).
		Msg("Received JNET reply")
	return reply, nil
}

package soap

import (
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	timeout            time.Duration
	httpClient         *http.Client
	certFile           string
	keyFile            string
	caFile             string
	insecureSkipVerify bool
	requestsPerSecond  float64
	burst              int
	signer             Signer
}

func defaultOptions() clientOptions {
	return clientOptions{
		timeout: 60 * time.Second,
		burst:   1,
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the HTTP client. TLS options are ignored when set.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithClientCertificate sets the PEM certificate and key JNET authenticates.
func WithClientCertificate(certFile, keyFile string) Option {
	return func(o *clientOptions) {
		o.certFile = certFile
		o.keyFile = keyFile
	}
}

// WithServerCertificate trusts the CA bundle in caFile in addition to the system pool.
func WithServerCertificate(caFile string) Option {
	return func(o *clientOptions) {
		o.caFile = caFile
	}
}

// WithInsecureSkipVerify disables certificate verification.
// Use with caution and only for development/testing.
func WithInsecureSkipVerify() Option {
	return func(o *clientOptions) {
		o.insecureSkipVerify = true
	}
}

// WithRateLimit caps outgoing requests. Zero or less disables the limit.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(o *clientOptions) {
		o.requestsPerSecond = requestsPerSecond
		if burst > 0 {
			o.burst = burst
		}
	}
}

// WithSigner sets the hook that signs each envelope before it is sent.
func WithSigner(signer Signer) Option {
	return func(o *clientOptions) {
		o.signer = signer
	}
}

package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/astasoft/shgrate/internal/constants"
	"github.com/astasoft/shgrate/internal/httpc"
)

// parseTLSVersion converts a TLS version string to the corresponding crypto/tls constant.
// Supports various formats: "1.2", "12", "tls1.2", "tls12", etc.
// Returns 0 if the version string is not recognized.
func parseTLSVersion(version string) uint16 {
	switch strings.TrimSpace(strings.ToLower(version)) {
	case "1.0", "10", "tls1.0", "tls10":
		return tls.VersionTLS10
	case "1.1", "11", "tls1.1", "tls11":
		return tls.VersionTLS11
	case "1.2", "12", "tls1.2", "tls12":
		return tls.VersionTLS12
	case "1.3", "13", "tls1.3", "tls13":
		return tls.VersionTLS13
	default:
		return 0
	}
}

// waitParams holds the parsed and normalized parameters for waiting
type waitParams struct {
	url      string
	method   string
	expected int
	timeout  time.Duration
	interval time.Duration
}

// parseWaitConfig parses and normalizes wait configuration with defaults
func parseWaitConfig(wc WaitConfig) waitParams {
	method := strings.ToUpper(strings.TrimSpace(wc.Method))
	if method == "" {
		method = constants.DefaultWaitMethod
	}

	expected := wc.Status
	if expected == 0 {
		expected = constants.DefaultWaitStatus
	}

	timeout := constants.DefaultWaitTimeout
	if s := strings.TrimSpace(wc.Timeout); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			timeout = d
		}
	}

	interval := constants.DefaultWaitInterval
	if s := strings.TrimSpace(wc.Interval); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			interval = d
		}
	}

	return waitParams{
		url:      strings.TrimSpace(wc.URL),
		method:   method,
		expected: expected,
		timeout:  timeout,
		interval: interval,
	}
}

func setupTLSConfig(wc WaitConfig) *tls.Config {
	minV := parseTLSVersion(wc.MinTLSVersion)
	maxV := parseTLSVersion(wc.MaxTLSVersion)

	// #nosec G402 -- versions come from explicit operator configuration
	cfg := &tls.Config{MinVersion: minV, MaxVersion: maxV}
	if wc.Insecure {
		// #nosec G402 -- intentionally allow self-signed certificates for the readiness probe when explicitly configured
		cfg.InsecureSkipVerify = true
	}
	return cfg
}

func probeOnce(ctx context.Context, hcfg *httpc.Httpc, method, url string) (int, error) {
	client := hcfg.New()
	req := client.R().SetContext(ctx)

	var status int
	var err error

	switch method {
	case "HEAD":
		resp, e := req.Head(url)
		err = e
		if resp != nil {
			status = resp.StatusCode()
		}
	default:
		resp, e := req.Get(url)
		err = e
		if resp != nil {
			status = resp.StatusCode()
		}
	}

	return status, err
}

func poll(ctx context.Context, hcfg *httpc.Httpc, params waitParams) error {
	deadline := time.Now().Add(params.timeout)
	var lastStatus int

	for {
		status, err := probeOnce(ctx, hcfg, params.method, params.url)
		if err == nil && status == params.expected {
			return nil
		}

		lastStatus = status
		if time.Now().After(deadline) {
			return fmt.Errorf("wait: timeout waiting for %s to return %d (last=%d)",
				params.url, params.expected, lastStatus)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(params.interval):
		}
	}
}

// doWait polls an HTTP endpoint (a database proxy or sidecar health check)
// until it returns the expected status or the timeout elapses.
//
// Behavior:
// - method defaults to GET; supports GET and HEAD (others fall back to GET)
// - expected status defaults to 200
// - timeout defaults to 60s; interval defaults to 2s
func doWait(ctx context.Context, wc WaitConfig) error {
	// Early exit if no URL is provided
	if strings.TrimSpace(wc.URL) == "" {
		return nil
	}

	params := parseWaitConfig(wc)
	// Bound each probe request too, so a hanging endpoint cannot stall the
	// loop past the overall deadline.
	hcfg := &httpc.Httpc{TLSConfig: setupTLSConfig(wc), Timeout: params.timeout}
	return poll(ctx, hcfg, params)
}

// Package main probes the operations server health endpoint. It exits 0 when
// the reported status is acceptable, 1 when it is not and 2 when the endpoint
// cannot be reached. Suitable as a container HEALTHCHECK.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1
	exitCodeError   = 2
)

type options struct {
	URL          string
	Timeout      time.Duration
	Retries      int
	RetryDelay   time.Duration
	AllowDegrade bool
	JSON         bool
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Checks  []struct {
		Name    string `json:"name"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"checks"`
}

func main() {
	opts := options{}

	defaultURL := os.Getenv("RECIPEBOOK_HEALTH_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:9090/health"
	}

	flag.StringVar(&opts.URL, "url", defaultURL, "health endpoint URL")
	flag.DurationVar(&opts.Timeout, "timeout", 5*time.Second, "request timeout")
	flag.IntVar(&opts.Retries, "retry", 0, "number of retries when the endpoint is unreachable")
	flag.DurationVar(&opts.RetryDelay, "retry-delay", time.Second, "delay between retries")
	flag.BoolVar(&opts.AllowDegrade, "allow-degraded", true, "treat degraded as success")
	flag.BoolVar(&opts.JSON, "json", false, "print the raw response")
	flag.Parse()

	os.Exit(probe(context.Background(), http.DefaultClient, opts, os.Stdout))
}

func probe(ctx context.Context, client *http.Client, opts options, out io.Writer) int {
	var lastErr error
	for attempt := 0; attempt <= opts.Retries; attempt++ {
		if attempt > 0 {
			time.Sleep(opts.RetryDelay)
		}

		body, err := fetch(ctx, client, opts)
		if err != nil {
			lastErr = err
			continue
		}

		if opts.JSON {
			_, _ = out.Write(body)
			_, _ = fmt.Fprintln(out)
		}

		var resp healthResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			_, _ = fmt.Fprintf(out, "invalid health response: %v\n", err)
			return exitCodeError
		}

		if !opts.JSON {
			_, _ = fmt.Fprintf(out, "status: %s (version %s)\n", resp.Status, resp.Version)
			for _, c := range resp.Checks {
				_, _ = fmt.Fprintf(out, "  %-12s %s %s\n", c.Name, c.Status, c.Message)
			}
		}

		switch resp.Status {
		case "healthy":
			return exitCodeSuccess
		case "degraded":
			if opts.AllowDegrade {
				return exitCodeSuccess
			}
		}
		return exitCodeFailure
	}

	_, _ = fmt.Fprintf(out, "health check failed after %d attempts: %v\n", opts.Retries+1, lastErr)
	return exitCodeError
}

// fetch returns the response body. A 503 still carries a health document.
func fetch(ctx context.Context, client *http.Client, opts options) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

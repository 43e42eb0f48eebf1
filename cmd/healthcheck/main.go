// Package main provides a lightweight health check utility for containers
// where standard tools (wget, curl) are unavailable.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

const (
	defaultPort    = "5000"
	requestTimeout = 5 * time.Second
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	healthURL := fmt.Sprintf("http://localhost:%s/health", port)

	client := &http.Client{
		Timeout: requestTimeout,
	}

	resp, err := client.Get(healthURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	// os.Exit bypasses deferred calls, close explicitly
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Health check returned non-OK status: %d\n", resp.StatusCode)
		os.Exit(1)
	}

	os.Exit(0)
}

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// healthcheckCmd probes the local server; distroless images have no curl.
func healthcheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck",
		Short: "Check the health endpoint of a locally running server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := runHealthcheck(healthURL()); err != nil {
				return fmt.Errorf("healthcheck failed: %w", err)
			}
			return nil
		},
	}
}

func healthURL() string {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return fmt.Sprintf("http://127.0.0.1:%s/health", port)
}

// runHealthcheck performs a health check against the local server.
func runHealthcheck(url string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status: %d", resp.StatusCode)
	}
	return nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gocmis/gocmis/internal/binding"
	"github.com/gocmis/gocmis/internal/config"
	cmistls "github.com/gocmis/gocmis/internal/tls"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// ServerStatus holds what the status command found out about a server.
type ServerStatus struct {
	URL            string `json:"url"`
	Reachable      bool   `json:"reachable"`
	Ready          string `json:"ready,omitempty"`
	RepositoryID   string `json:"repository_id,omitempty"`
	RepositoryName string `json:"repository_name,omitempty"`
	ProductVersion string `json:"product_version,omitempty"`
	CMISVersion    string `json:"cmis_version,omitempty"`
	RootFolderID   string `json:"root_folder_id,omitempty"`
	ChangeLogToken string `json:"latest_change_log_token,omitempty"`
	Error          string `json:"error,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show status of a running gocmis server",
		Long: `Show the health of a running gocmis server: its readiness probe and the
repository info it reports. Exits non-zero when the server is unreachable.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runStatus(cmd, cfg, c)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")
	cmd.Flags().String("metrics-addr", config.Default().Server.MetricsAddr, "metrics/health address of the server (empty = skip readiness)")
	cmd.Flags().String("repository-id", config.Default().Repository.ID, "repository to query")
	config.BindClientFlags(cmd.Flags())

	return cmd
}

func runStatus(cmd *cobra.Command, cfg *statusConfig, c *config.Config) error {
	ctx := cmdContext(cmd)
	if c.Client.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Client.Timeout)
		defer cancel()
	}

	status := queryServerStatus(ctx, c)

	if cfg.jsonOutput {
		output, err := formatStatusJSON(status)
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		cmd.Println(output)
	} else {
		cmd.Println(formatStatusTable(status))
	}

	if !status.Reachable {
		return fmt.Errorf("server at %s is not reachable", status.URL)
	}
	return nil
}

// queryServerStatus probes readiness, then asks the endpoint for its
// repository info.
func queryServerStatus(ctx context.Context, c *config.Config) ServerStatus {
	status := ServerStatus{URL: c.Client.BaseURL}
	client := &http.Client{Timeout: c.Client.Timeout}
	if c.Client.CAFile != "" {
		tlsConfig, err := cmistls.ClientConfig(c.Client.CAFile)
		if err != nil {
			status.Error = err.Error()
			return status
		}
		client.Transport = &http.Transport{TLSClientConfig: tlsConfig}
	}

	if c.Server.MetricsAddr != "" {
		status.Ready = probeReadiness(ctx, client, c.Server.MetricsAddr)
	}

	port, err := binding.NewHTTPPort(c.Client.BaseURL,
		binding.WithHTTPClient(client),
		binding.WithVersion(c.Version()),
		binding.WithRetries(c.Client.Retries, c.Client.Backoff),
	)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	info, err := binding.NewClient(port).GetRepositoryInfo(ctx, c.Repository.ID)
	if err != nil {
		status.Error = err.Error()
		// A service error still proves the endpoint answered.
		_, status.Reachable = cmis.AsServiceError(err)
		return status
	}

	status.Reachable = true
	status.RepositoryID = info.ID
	status.RepositoryName = info.Name
	status.ProductVersion = info.ProductVersion
	status.CMISVersion = info.CmisVersionSupported
	status.RootFolderID = info.RootFolderID
	status.ChangeLogToken = info.LatestChangeLogToken
	return status
}

// probeReadiness returns "ready", "not ready" or "unreachable".
func probeReadiness(ctx context.Context, client *http.Client, addr string) string {
	url := addr
	if !strings.Contains(url, "://") {
		url = "http://" + url
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(url, "/")+"/healthz/readiness", nil)
	if err != nil {
		return "unreachable"
	}
	resp, err := client.Do(req)
	if err != nil {
		return "unreachable"
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode == http.StatusOK {
		return "ready"
	}
	return "not ready"
}

// formatStatusTable formats the status as a human-readable table.
func formatStatusTable(status ServerStatus) string {
	var buf strings.Builder
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	row := func(k, v string) {
		if v == "" {
			v = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", k, v)
	}
	row("URL", status.URL)
	if status.Reachable {
		row("STATUS", "running")
	} else {
		row("STATUS", "unreachable")
	}
	row("READY", status.Ready)
	row("REPOSITORY", status.RepositoryID)
	row("NAME", status.RepositoryName)
	row("VERSION", status.ProductVersion)
	row("CMIS", status.CMISVersion)
	row("ROOT FOLDER", status.RootFolderID)
	row("CHANGE TOKEN", status.ChangeLogToken)
	if status.Error != "" {
		row("ERROR", status.Error)
	}

	_ = w.Flush()
	return buf.String()
}

// formatStatusJSON formats the status as JSON.
func formatStatusJSON(status ServerStatus) (string, error) {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal status: %w", err)
	}
	return string(data), nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package main

import (
	"github.com/spf13/cobra"
)

// serviceName identifies gocmis in logs.
const serviceName = "gocmis"

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the gocmis CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gocmis",
		Short: "gocmis - CMIS protocol toolkit",
		Long: `gocmis converts CMIS documents between the Browser (JSON),
AtomPub (XML) and Web Services (SOAP) bindings, and serves an in-memory
CMIS repository over HTTP.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/gocmis/config.yaml)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewConvertCmd())
	cmd.AddCommand(NewTypesCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"

	"github.com/gocmis/gocmis/internal/binding"
	"github.com/gocmis/gocmis/internal/codec"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// convertConfig holds configuration for the convert command.
type convertConfig struct {
	from        string
	to          string
	kind        string
	cmisVersion string
	output      string
	envelope    bool
}

// NewConvertCmd creates the convert subcommand.
func NewConvertCmd() *cobra.Command {
	cfg := &convertConfig{}

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a CMIS document between wire formats",
		Long: `Convert a CMIS document between the JSON, XML and Web Services formats.
The input is read from the file argument, or from stdin when it is absent
or "-". JSON input may contain comments and trailing commas.`,
		Example: `  gocmis convert --from json --to xml --kind object doc.json
  cat acl.json | gocmis convert --from json --to ws --kind acl --envelope`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, cfg, args)
		},
	}

	cmd.Flags().StringVar(&cfg.from, "from", "json", "input format (json, xml or ws)")
	cmd.Flags().StringVar(&cfg.to, "to", "xml", "output format (json, xml or ws)")
	cmd.Flags().StringVar(&cfg.kind, "kind", string(codec.KindObject), "data-object kind of the document")
	cmd.Flags().StringVar(&cfg.cmisVersion, "cmis-version", string(cmis.Version11), "CMIS version of both documents")
	cmd.Flags().StringVarP(&cfg.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&cfg.envelope, "envelope", false, "Web Services documents are wrapped in SOAP envelopes")

	return cmd
}

func runConvert(cmd *cobra.Command, cfg *convertConfig, args []string) error {
	kind, err := codec.ParseKind(cfg.kind)
	if err != nil {
		return fmt.Errorf("invalid --kind: %w", err)
	}
	v, err := cmis.ParseVersion(cfg.cmisVersion)
	if err != nil {
		return fmt.Errorf("invalid --cmis-version: %w", err)
	}
	registry := codecsFor(cfg.from)
	in, err := registry.Lookup(cfg.from)
	if err != nil {
		return fmt.Errorf("invalid --from: %w", err)
	}
	out, err := registry.Lookup(cfg.to)
	if err != nil {
		return fmt.Errorf("invalid --to: %w", err)
	}
	if cfg.envelope {
		in, out = binding.Transport(in), binding.Transport(out)
	}

	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	if cfg.from == "json" {
		data = jsonc.ToJSON(data)
	}

	value, err := in.Decode(bytes.NewReader(data), v, kind)
	if err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", cfg.from, kind, err)
	}

	var buf bytes.Buffer
	if err := out.Encode(&buf, v, value); err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", cfg.to, kind, err)
	}
	return writeOutput(cmd, cfg.output, buf.Bytes())
}

// readInput reads the file named by args, or stdin.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

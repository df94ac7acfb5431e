// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"

	"github.com/gocmis/gocmis/internal/codec"
	"github.com/gocmis/gocmis/internal/jsonconv"
)

// NewValidateCmd creates the validate subcommand.
func NewValidateCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate Browser binding JSON documents against their schema",
		Long: `Validate JSON documents against the JSON Schema of a data-object kind,
reporting every structural problem at once. Comments are allowed in the
input. Exits non-zero if any file is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := codec.ParseKind(kind)
			if err != nil {
				return fmt.Errorf("invalid --kind: %w", err)
			}

			var failed int
			for _, path := range args {
				if err := validateFile(k, path); err != nil {
					failed++
					cmd.PrintErrf("%s: %v\n", path, err)
					continue
				}
				cmd.Printf("%s: ok\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) invalid", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(codec.KindObject), "data-object kind of the documents")

	return cmd
}

func validateFile(k codec.Kind, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is a command argument
	if err != nil {
		return err
	}
	return jsonconv.Validate(k, jsonc.ToJSON(data))
}

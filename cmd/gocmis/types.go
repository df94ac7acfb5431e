// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gocmis/gocmis/internal/typesys"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// typesConfig holds configuration for the types command.
type typesConfig struct {
	typesFile   string
	typeID      string
	depth       int
	cmisVersion string
	format      string
	properties  bool
}

// NewTypesCmd creates the types subcommand.
func NewTypesCmd() *cobra.Command {
	cfg := &typesConfig{}

	cmd := &cobra.Command{
		Use:   "types",
		Short: "Print a type system as a tree",
		Long: `Print the type hierarchy of a YAML type-system file, or of the standard
CMIS base types when no file is given. With --format the tree is written as
a typeTree document in that wire format instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTypes(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.typesFile, "types-file", "", "YAML type-system file (default: base types only)")
	cmd.Flags().StringVar(&cfg.typeID, "type-id", "", "print only the subtree below this type")
	cmd.Flags().IntVar(&cfg.depth, "depth", -1, "levels to print (-1 = unlimited)")
	cmd.Flags().StringVar(&cfg.cmisVersion, "cmis-version", string(cmis.Version11), "CMIS version of the type system")
	cmd.Flags().StringVar(&cfg.format, "format", "", "write a typeTree document (json, xml or ws) instead of a tree")
	cmd.Flags().BoolVar(&cfg.properties, "properties", false, "include property definitions")

	return cmd
}

func runTypes(cmd *cobra.Command, cfg *typesConfig) error {
	v, err := cmis.ParseVersion(cfg.cmisVersion)
	if err != nil {
		return fmt.Errorf("invalid --cmis-version: %w", err)
	}
	if cfg.depth == 0 || cfg.depth < -1 {
		return fmt.Errorf("--depth must be -1 or positive, got %d", cfg.depth)
	}

	reg, err := typesys.NewStandardRegistry(v)
	if cfg.typesFile != "" {
		reg, err = loadTypes(cfg.typesFile, v)
	}
	if err != nil {
		return fmt.Errorf("failed to load type system: %w", err)
	}

	if cfg.format != "" {
		c, lookupErr := codecsFor(cfg.format).Lookup(cfg.format)
		if lookupErr != nil {
			return fmt.Errorf("invalid --format: %w", lookupErr)
		}
		tree, descErr := reg.Descendants(cfg.typeID, max(cfg.depth, 0), cfg.properties)
		if descErr != nil {
			return descErr
		}
		if encErr := c.Encode(cmd.OutOrStdout(), v, tree); encErr != nil {
			return fmt.Errorf("failed to encode type tree: %w", encErr)
		}
		return nil
	}

	roots := []string{cfg.typeID}
	if cfg.typeID == "" {
		roots = roots[:0]
		for _, td := range reg.BaseTypes() {
			roots = append(roots, td.ID())
		}
	}
	for _, id := range roots {
		if walkErr := printTypeTree(cmd.OutOrStdout(), reg, id, cfg.depth, cfg.properties); walkErr != nil {
			return walkErr
		}
	}
	return nil
}

// printTypeTree writes one line per type below root, indented by depth.
func printTypeTree(w io.Writer, reg *typesys.Registry, root string, maxDepth int, properties bool) error {
	return reg.Walk(root, func(td *cmis.TypeDefinition, depth int) bool {
		indent := strings.Repeat("  ", depth)
		_, _ = fmt.Fprintf(w, "%s%s", indent, td.ID())
		if name := td.DisplayName(); name != "" && name != td.ID() {
			_, _ = fmt.Fprintf(w, " (%s)", name)
		}
		_, _ = fmt.Fprintln(w)
		if properties {
			for _, pd := range td.PropertyDefinitions() {
				if pd.Inherited != nil && *pd.Inherited {
					continue
				}
				_, _ = fmt.Fprintf(w, "%s    - %s %s %s\n", indent, pd.ID, pd.PropertyType, pd.Cardinality)
			}
		}
		return maxDepth < 0 || depth+1 < maxDepth
	})
}

// loadTypes reads a YAML type-system file.
func loadTypes(path string, v cmis.Version) (*typesys.Registry, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return typesys.LoadYAML(f, v)
}

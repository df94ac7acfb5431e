// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

// Command gen-schema generates the Browser binding JSON Schema files, one
// per data-object kind.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocmis/gocmis/internal/codec"
	"github.com/gocmis/gocmis/internal/jsonconv"
)

func main() {
	outDir := "schemas"
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}

	for _, k := range codec.Kinds {
		schema, err := jsonconv.GenerateSchema(k)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating %s schema: %v\n", k, err)
			os.Exit(1)
		}

		outPath := filepath.Join(outDir, string(k)+".schema.json")
		if err := os.WriteFile(outPath, schema, 0o600); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated %s\n", outPath)
	}
}

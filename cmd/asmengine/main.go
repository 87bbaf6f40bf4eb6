package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xyproto/asmengine"
)

func main() {
	var verbose bool
	var bigEndian bool
	var out string

	rootCmd := &cobra.Command{
		Use:   "asmengine",
		Short: "asmengine — a relocatable-expression and bytecode-layout engine",
	}

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Assemble a small built-in demonstration program and print its bytes",
		RunE: func(cmd *cobra.Command, args []string) error {
			format := &demoFormat{Verbose: verbose}
			obj := buildDemoProgram(format)

			diags := &asmengine.MemoryDiagnostics{}
			sections, ok := asmengine.Assemble(obj, diags, bigEndian)

			for _, entry := range diags.Entries {
				fmt.Fprintln(os.Stderr, entry.String())
			}
			if !ok {
				return fmt.Errorf("assembly failed")
			}

			data := sections[".text"]
			if out != "" {
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", out, err)
				}
				fmt.Printf("wrote %d bytes to %s\n", len(data), out)
				return nil
			}
			fmt.Println(hex.EncodeToString(data))
			return nil
		},
	}
	demoCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "trace object-format calls to stderr")
	demoCmd.Flags().BoolVar(&bigEndian, "big-endian", false, "render multi-byte fields big-endian")
	demoCmd.Flags().StringVar(&out, "out", "", "write raw bytes to this file instead of printing hex")

	rootCmd.AddCommand(demoCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

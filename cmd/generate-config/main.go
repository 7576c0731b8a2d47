package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/debemdeboas/the-blog/internal/config"
)

const header = "# The Blog Configuration Example\n# Copy this file to config.yaml and customize as needed\n\n"

var rootCmd = &cobra.Command{
	Use:          "generate-config [output]",
	Short:        "Write the default configuration as YAML (use - for stdout)",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile := "config.example.yaml"
		if len(args) > 0 {
			outputFile = args[0]
		}
		return generate(cmd, outputFile)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func render() ([]byte, error) {
	yamlData, err := yaml.Marshal(config.Default())
	if err != nil {
		return nil, fmt.Errorf("error generating YAML: %w", err)
	}
	return append([]byte(header), yamlData...), nil
}

func generate(cmd *cobra.Command, outputFile string) error {
	output, err := render()
	if err != nil {
		return err
	}

	if outputFile == "-" {
		_, err := cmd.OutOrStdout().Write(output)
		return err
	}

	if err := os.WriteFile(outputFile, output, 0o644); err != nil {
		return fmt.Errorf("error writing file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Generated example config: %s\n", outputFile)
	return nil
}

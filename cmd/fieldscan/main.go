// fieldscan is an operator tool for preparing anonymization jobs: it lists
// the distinct values a field holds in an index, and shows example synthetic
// values per provider.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayushsubedi/anonymize-it/internal/catalog"
	"github.com/ayushsubedi/anonymize-it/internal/config"
	"github.com/ayushsubedi/anonymize-it/internal/logger"
	"github.com/ayushsubedi/anonymize-it/internal/store"
)

var (
	flagAddr    string
	flagIndex   string
	flagTimeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fieldscan",
		Short: "Inspect field values before configuring an anonymization job",
	}

	rootCmd.PersistentFlags().StringVar(&flagAddr, "addr", "http://localhost:9200", "Elasticsearch address")
	rootCmd.PersistentFlags().StringVar(&flagIndex, "index", "", "Index to scan")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 30*time.Second, "Request timeout")

	rootCmd.AddCommand(valuesCmd())
	rootCmd.AddCommand(examplesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func valuesCmd() *cobra.Command {
	var (
		field    string
		pageSize int
		pages    int
		query    string
	)

	cmd := &cobra.Command{
		Use:   "values",
		Short: "List the distinct values of a field",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagIndex == "" {
				return fmt.Errorf("--index is required")
			}
			if field == "" {
				return fmt.Errorf("--field is required")
			}

			pcfg := config.PipelineConfig{RequestTimeout: flagTimeout}
			client := store.NewElasticClient(flagAddr, pcfg, logger.NopLogger())
			scanner := catalog.NewScanner(client, flagIndex, query, pageSize, logger.NopLogger())

			limit := 0
			if pages > 0 {
				limit = pages * pageSize
			}

			values, err := scanner.CollectValues(cmd.Context(), field, limit)
			if err != nil {
				return err
			}

			for _, value := range values {
				fmt.Fprintln(cmd.OutOrStdout(), value)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&field, "field", "", "Field to scan (required)")
	cmd.Flags().IntVar(&pageSize, "size", 100, "Values per aggregation page")
	cmd.Flags().IntVar(&pages, "pages", 0, "Maximum pages to fetch (0 = all)")
	cmd.Flags().StringVar(&query, "query", "", "Raw query clause to narrow the scan")

	return cmd
}

func examplesCmd() *cobra.Command {
	var (
		count int
		seed  uint64
	)

	cmd := &cobra.Command{
		Use:   "examples [provider]",
		Short: "Show example synthetic values per provider",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			faker := catalog.NewFaker(seed)

			providers := catalog.Providers()
			if len(args) == 1 {
				providers = []string{args[0]}
			}

			for _, provider := range providers {
				values, err := faker.Examples(provider, count)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", provider)
				for _, value := range values {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", value)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 3, "Examples per provider")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for reproducible output (0 = random)")

	return cmd
}

// Command ftsq encodes search documents into engine request bodies and runs
// them against an engine endpoint.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	logpkg "github.com/kailas-cloud/fts/internal/logger"
	"github.com/kailas-cloud/fts/internal/version"
)

type globalFlags struct {
	file     string
	index    string
	logLevel string
}

type queryFlags struct {
	endpoint         string
	token            string
	streamingTimeout time.Duration
	requestTimeout   time.Duration
	embeddingURL     string
	embeddingModel   string
	embeddingDims    int
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "ftsq",
		Short:         "Build and run full-text search requests",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&g.file, "file", "f", "-", "search document (JSON or YAML), - for stdin")
	rootCmd.PersistentFlags().StringVarP(&g.index, "index", "i", "", "index name, overrides the document's index")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	encodeCmd := &cobra.Command{
		Use:   "encode",
		Short: "Print the engine request body for a search document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(g.file)
			if err != nil {
				return err
			}
			logger, err := logpkg.NewLogger("local", g.logLevel)
			if err != nil {
				return err //nolint:wrapcheck // already descriptive
			}
			return runEncode(cmd.Context(), cmd.OutOrStdout(), data, g.index, logger)
		},
	}

	q := &queryFlags{}
	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Execute a search document and print rows, facets and metadata as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(g.file)
			if err != nil {
				return err
			}
			logger, err := logpkg.NewLogger("local", g.logLevel)
			if err != nil {
				return err //nolint:wrapcheck // already descriptive
			}
			return runQuery(cmd.Context(), cmd.OutOrStdout(), data, g.index, q, logger)
		},
	}
	queryCmd.Flags().StringVar(&q.endpoint, "endpoint", os.Getenv("FTS_ENGINE_ENDPOINT"), "engine search URL")
	queryCmd.Flags().StringVar(&q.token, "token", os.Getenv("FTS_ENGINE_TOKEN"), "engine bearer token")
	queryCmd.Flags().DurationVar(&q.streamingTimeout, "streaming-timeout", 0, "per-row read deadline, 0 = none")
	queryCmd.Flags().DurationVar(&q.requestTimeout, "timeout", 30*time.Second, "whole request timeout")
	queryCmd.Flags().StringVar(&q.embeddingURL, "embedding-url", "", "OpenAI-compatible API base URL for text vector queries")
	queryCmd.Flags().StringVar(&q.embeddingModel, "embedding-model", "", "embedding model for text vector queries")
	queryCmd.Flags().IntVar(&q.embeddingDims, "embedding-dimensions", 0, "expected embedding dimensions")

	rootCmd.AddCommand(encodeCmd, queryCmd)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

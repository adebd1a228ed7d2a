package main

import (
	"context"
	"fmt"
	"os"

	"summarysnap/internal/ai"
	"summarysnap/internal/config"
	"summarysnap/internal/logger"
	"summarysnap/internal/prompts"
	"summarysnap/internal/telemetry"
	"summarysnap/services"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var v *viper.Viper

var rootCmd = &cobra.Command{
	Use:   "summarysnap",
	Short: "Summarize PDFs and chat with them",
	Long: `summarysnap extracts the text of a PDF, indexes it with embeddings and
produces long or short summaries. Questions about the document are answered
from its most relevant passages, with the conversation kept per session.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd)
	},
}

func init() {
	var err error
	if v, err = config.New(); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load environment:", err)
		os.Exit(1)
	}

	flags := rootCmd.PersistentFlags()
	flags.String("provider", "", "model provider: google or openai")
	flags.String("prompts-file", "", "YAML prompt catalog overriding the built-in prompts")
	flags.Int("chunk-size", 0, "chunk size in characters")
	flags.Int("chunk-overlap", -1, "overlap between consecutive chunks in characters")
	flags.Int("retrieval-k", 0, "number of chunks retrieved per question")
	flags.Bool("condense-question", false, "rewrite follow-up questions into standalone ones before retrieval")

	rootCmd.AddCommand(serveCmd, summarizeCmd, askCmd)
}

// bindFlags lets explicitly set flags override environment values.
func bindFlags(cmd *cobra.Command) error {
	keys := map[string]string{
		"provider":          "provider",
		"prompts-file":      "prompts_file",
		"chunk-size":        "chunk_size",
		"chunk-overlap":     "chunk_overlap",
		"retrieval-k":       "retrieval_k",
		"condense-question": "condense_question",
		"port":              "port",
	}
	for flag, key := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// engine is everything a command needs to run the pipeline in-process.
type engine struct {
	cfg      *config.Config
	provider ai.Provider
	catalog  *prompts.Catalog
	pipeline *services.Pipeline
}

func newEngine(ctx context.Context, cfg *config.Config, metrics *telemetry.Metrics) (*engine, error) {
	catalog, err := prompts.Load(cfg.PromptsFile)
	if err != nil {
		return nil, err
	}

	provider, err := ai.NewProvider(ctx, cfg, metrics)
	if err != nil {
		return nil, err
	}

	pipeline, err := services.NewPipeline(cfg, provider, provider, catalog, metrics)
	if err != nil {
		provider.Close()
		return nil, err
	}

	logger.Info("pipeline ready",
		"provider", cfg.Provider,
		"chunk_size", cfg.ChunkSize,
		"chunk_overlap", cfg.ChunkOverlap,
		"retrieval_k", cfg.RetrievalK,
		"styles", catalog.StyleNames(),
	)
	return &engine{cfg: cfg, provider: provider, catalog: catalog, pipeline: pipeline}, nil
}

func (e *engine) Close() {
	if err := e.provider.Close(); err != nil {
		logger.Warn("failed to close provider", "error", err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

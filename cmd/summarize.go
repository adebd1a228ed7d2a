package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"summarysnap/internal/config"
	"summarysnap/internal/logger"
	"summarysnap/models"
	"summarysnap/services"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file.pdf>",
	Short: "Summarize a PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		style, _ := cmd.Flags().GetString("style")
		output, _ := cmd.Flags().GetString("output")

		run, err := openDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer run.Close()

		resp, err := run.pipeline.Summarize(cmd.Context(), run.session, models.NormalizeStyle(style))
		if err != nil {
			return err
		}

		if output == "" {
			fmt.Fprintln(cmd.OutOrStdout(), resp.Summary)
			return nil
		}
		if err := os.WriteFile(output, []byte(resp.Summary+"\n"), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Summary written to %s\n", output)
		return nil
	},
}

func init() {
	summarizeCmd.Flags().StringP("style", "s", string(models.StyleLong), "summary style")
	summarizeCmd.Flags().StringP("output", "o", "", "write the summary to a file instead of stdout")
}

// cliRun is a single in-process session holding one processed document.
type cliRun struct {
	*engine
	session *services.Session
}

func openDocument(ctx context.Context, path string) (*cliRun, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig(v)
	if err != nil {
		return nil, err
	}
	logger.InitLoggerTo(os.Stderr, cfg.GinMode)

	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, fmt.Errorf("%s: only PDF files are accepted", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	eng, err := newEngine(ctx, cfg, nil)
	if err != nil {
		return nil, err
	}

	session := services.NewSessionStore(0).Create()
	doc := &models.Document{
		ID:       uuid.NewString(),
		Filename: filepath.Base(path),
		Content:  content,
		Status:   models.StatusUnprocessed,
	}
	info, err := eng.pipeline.ProcessDocument(ctx, session, doc)
	if err != nil {
		eng.Close()
		return nil, err
	}
	logger.Info("document processed", "filename", info.Filename, "pages", info.Pages, "chunks", info.Chunks)

	return &cliRun{engine: eng, session: session}, nil
}

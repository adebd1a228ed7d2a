package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"summarysnap/models"
	"summarysnap/services"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <file.pdf> [question...]",
	Short: "Ask questions about a PDF",
	Long: `Ask answers each question in order, keeping earlier questions and answers
as conversation history. Without questions it reads one question per line
from stdin until EOF.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		showSources, _ := cmd.Flags().GetBool("sources")
		export, _ := cmd.Flags().GetString("export")

		run, err := openDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer run.Close()

		out := cmd.OutOrStdout()
		ask := func(q string) error {
			answer, _, err := run.pipeline.Ask(cmd.Context(), run.session, q)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Q: %s\nA: %s\n", q, answer.Text)
			if showSources {
				for _, src := range answer.Sources {
					fmt.Fprintf(out, "   [page %d, score %.3f]\n", src.Chunk.Page, src.Score)
				}
			}
			fmt.Fprintln(out)
			return nil
		}

		if questions := args[1:]; len(questions) > 0 {
			for _, q := range questions {
				if err := ask(q); err != nil {
					return err
				}
			}
		} else if err := askLines(cmd.InOrStdin(), ask); err != nil {
			return err
		}

		if export != "" {
			return exportTranscript(export, run.session.Transcript())
		}
		return nil
	},
}

func init() {
	askCmd.Flags().Bool("sources", false, "print the pages each answer was drawn from")
	askCmd.Flags().String("export", "", "write the transcript to a .txt or .xlsx file")
}

func askLines(r io.Reader, ask func(string) error) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}
		if err := ask(q); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func exportTranscript(path string, turns []models.ConversationTurn) error {
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case "." + services.ExportFormatExcel:
		var err error
		if data, err = services.TranscriptExcel(turns); err != nil {
			return err
		}
	default:
		data = services.TranscriptText(turns)
	}
	return os.WriteFile(path, data, 0o644)
}

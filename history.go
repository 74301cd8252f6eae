package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/adls-go/internal/config"
	"github.com/tonimelisma/adls-go/internal/journal"
)

const defaultHistoryLimit = 20

var flagHistoryLimit int

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent upload attempts",
		Long: `List recent uploads recorded in the local journal, newest first.
With --account, only that account's uploads are shown.`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", defaultHistoryLimit, "maximum number of entries")

	return cmd
}

type historyJSONEntry struct {
	ID         string    `json:"id"`
	Account    string    `json:"account"`
	Endpoint   string    `json:"endpoint,omitempty"`
	LocalPath  string    `json:"local_path"`
	RemotePath string    `json:"remote_path"`
	Overwrite  bool      `json:"overwrite"`
	Size       int64     `json:"size"`
	Outcome    string    `json:"outcome"`
	StatusCode int       `json:"status_code,omitempty"`
	Message    string    `json:"message,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadOrDefault(configPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if !cfg.Journal.Enabled {
		return errors.New("the upload journal is disabled ([journal] enabled = false)")
	}

	logger := buildLogger(cfg)

	j, err := openJournal(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.Recent(ctx, flagAccount, flagHistoryLimit)
	if err != nil {
		return err
	}

	if flagJSON {
		return printHistoryJSON(cmd.OutOrStdout(), entries)
	}

	if len(entries) == 0 {
		statusf(flagQuiet, "No uploads recorded.\n")
		return nil
	}

	printHistoryTable(cmd.OutOrStdout(), entries)

	return nil
}

func printHistoryJSON(w io.Writer, entries []journal.Entry) error {
	out := make([]historyJSONEntry, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		out = append(out, historyJSONEntry{
			ID:         e.ID,
			Account:    e.Account,
			Endpoint:   e.Endpoint,
			LocalPath:  e.LocalPath,
			RemotePath: e.RemotePath,
			Overwrite:  e.Overwrite,
			Size:       e.Size,
			Outcome:    e.Outcome,
			StatusCode: e.StatusCode,
			Message:    e.Message,
			StartedAt:  e.StartedAt.UTC(),
			FinishedAt: e.FinishedAt.UTC(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	return nil
}

func printHistoryTable(w io.Writer, entries []journal.Entry) {
	headers := []string{"FINISHED", "ACCOUNT", "REMOTE PATH", "SIZE", "OUTCOME"}
	rows := make([][]string, 0, len(entries))

	for i := range entries {
		e := &entries[i]

		result := e.Outcome
		if e.StatusCode != 0 {
			result += " (HTTP " + strconv.Itoa(e.StatusCode) + ")"
		}

		size := "-"
		if e.Succeeded() {
			size = formatSize(e.Size)
		}

		rows = append(rows, []string{formatTime(e.FinishedAt), e.Account, e.RemotePath, size, result})
	}

	printTable(w, headers, rows)
}

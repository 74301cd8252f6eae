package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/adls-go/internal/journal"
	"github.com/tonimelisma/adls-go/internal/transfer"
)

var flagOverwrite bool

func newPutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <local-file> [remote-path]",
		Short: "Upload a file to the selected account",
		Long: `Upload a local file to the selected Data Lake Store account.

The remote path defaults to the local file name at the store root. Without
--overwrite the upload fails if the remote file already exists.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runPut,
	}

	cmd.Flags().BoolVar(&flagOverwrite, "overwrite", false, "replace the remote file if it exists")

	return cmd
}

// putJSONOutput is the --json result of a completed upload.
type putJSONOutput struct {
	Account    string `json:"account"`
	Endpoint   string `json:"endpoint"`
	LocalPath  string `json:"local_path"`
	RemotePath string `json:"remote_path"`
	Size       int64  `json:"size"`
	Overwrite  bool   `json:"overwrite"`
}

func runPut(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	localPath := args[0]

	fi, err := os.Stat(localPath)
	if err != nil {
		return fmt.Errorf("stating local file: %w", err)
	}

	if fi.IsDir() {
		return fmt.Errorf("%q is a directory, not a file", localPath)
	}

	remotePath := "/" + filepath.Base(localPath)
	if len(args) > 1 {
		remotePath = args[1]
	}

	s, err := newSession(resolvedCfg)
	if err != nil {
		return err
	}

	desc, err := resolvedCfg.Descriptor()
	if err != nil {
		return err
	}

	up, err := s.uploader()
	if err != nil {
		return err
	}

	req := transfer.Request{
		LocalPath:  localPath,
		RemotePath: remotePath,
		Overwrite:  flagOverwrite,
	}

	var progress *progressPrinter
	if !flagQuiet && !flagJSON && isTerminal(os.Stderr) {
		progress = newProgressPrinter(os.Stderr, fi.Size())
		req.Progress = progress.update
	}

	started := time.Now()
	res, uploadErr := up.UploadFile(ctx, desc, req)

	progress.done()

	entry := journal.Entry{
		Account:    desc.Name(),
		LocalPath:  localPath,
		RemotePath: remotePath,
		Overwrite:  flagOverwrite,
		StartedAt:  started,
	}
	if res != nil {
		entry.Endpoint = res.Endpoint
		entry.Size = res.Size
	}

	entry.SetOutcome(uploadErr)
	recordUpload(cmd, s.logger, entry)

	if uploadErr != nil {
		return uploadErr
	}

	if flagJSON {
		return printPutJSON(cmd.OutOrStdout(), putJSONOutput{
			Account:    desc.Name(),
			Endpoint:   res.Endpoint,
			LocalPath:  localPath,
			RemotePath: res.RemotePath,
			Size:       res.Size,
			Overwrite:  flagOverwrite,
		})
	}

	statusf(flagQuiet, "Uploaded %s to %s%s (%s)\n", localPath, res.Endpoint, res.RemotePath, formatSize(res.Size))

	return nil
}

// recordUpload writes the attempt to the journal. Journal problems never
// change the outcome of the upload itself. An interrupted upload is still
// recorded, so the journal ignores cancellation of the command context.
func recordUpload(cmd *cobra.Command, logger *slog.Logger, entry journal.Entry) {
	ctx := context.WithoutCancel(cmd.Context())

	j, err := openJournal(ctx, resolvedCfg.Config, logger)
	if err != nil {
		logger.Warn("upload journal unavailable", slog.String("error", err.Error()))
		return
	}

	if j == nil {
		return
	}
	defer j.Close()

	if _, err := j.Record(ctx, entry); err != nil {
		logger.Warn("recording upload failed", slog.String("error", err.Error()))
	}
}

func printPutJSON(w io.Writer, out putJSONOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	return nil
}

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/hannes/sentimento/src/backend/config"
	"github.com/hannes/sentimento/src/backend/sentiment"
)

var (
	errNoSession       = errors.New("session has no history")
	errVolatileHistory = errors.New("history command needs the sqlite or postgres backend; in-memory history lives only inside the server process")
)

var (
	historySession string
	historyLimit   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the stored history of a session",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	if err := checkPersistentBackend(cfg.Database); err != nil {
		return err
	}

	ctx, stop := withSignals(cmd.Context())
	defer stop()

	store, err := sentiment.NewHistoryStore(ctx, cfg.Database, cfg.History)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(ctx, historySession, historyLimit, 0)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: %s", errNoSession, historySession)
	}

	writeHistory(cmd.OutOrStdout(), entries)
	return nil
}

func writeHistory(w io.Writer, entries []sentiment.Entry) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Texto", "Sentimento", "Confiança", "Data"})
	table.SetAutoWrapText(true)
	for _, e := range entries {
		table.Append([]string{
			e.Text,
			e.Label,
			fmt.Sprintf("%.4f", e.Confidence),
			e.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	table.Render()
}

func checkPersistentBackend(db config.DatabaseConfig) error {
	switch db.Backend {
	case config.BackendMemory, "":
		return errVolatileHistory
	}
	return nil
}

package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"fastats/internal/record"
)

func (a *app) historyCommand() *cobra.Command {
	var (
		file  string
		users []string
	)

	cmd := &cobra.Command{
		Use:   "history -f <log.csv> [-p <profile>]...",
		Short: "Prints the rows of a statistics log.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := record.ReadCSV(file)
			if errors.Is(err, os.ErrNotExist) {
				return configErrorf("log file not found: %s", file)
			}
			if err != nil {
				return err
			}

			records = record.FilterUsers(records, users)
			record.RenderTable(a.stdout, records)
			a.log().Debug("history printed", "file", file, "rows", len(records))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV log to read")
	cmd.Flags().StringArrayVarP(&users, "profile", "p", nil, "Only show rows of this profile (repeatable)")
	cmd.MarkFlagRequired("file")

	return cmd
}

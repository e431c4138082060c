package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"fastats/internal/scraper"
)

func (a *app) debugCommand() *cobra.Command {
	var cookiePath string

	cmd := &cobra.Command{
		Use:   "debug <profile> [--cookies <path>]",
		Short: "Prints the indexed stat cell markup of a profile page.",
		Long: `debug lists every node below each stat cell of the profile page with the
index the extractor uses, marking the nodes each counter is read from.
Use it to re-tune the offsets after the site changes its markup.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDebug(cmd.Context(), args[0], cookiePath)
		},
	}
	cmd.Flags().StringVar(&cookiePath, "cookies", "", "Netscape cookie file exported from a logged in browser")

	return cmd
}

func (a *app) runDebug(ctx context.Context, username, cookiePath string) error {
	jar, err := a.loadJar(cookiePath)
	if err != nil {
		return err
	}

	layout, err := a.newScraper(jar).InspectLayout(ctx, username)
	if err != nil {
		return err
	}

	a.renderLayout(layout)
	return nil
}

func (a *app) renderLayout(layout *scraper.PageLayout) {
	fields := map[[2]int]string{}
	for _, f := range scraper.FieldPositions() {
		fields[[2]int{f.Cell, f.Offset}] = f.Name
	}

	t := table.NewWriter()
	t.SetOutputMirror(a.stdout)
	t.SetTitle("Stat cells of %s", layout.Username)
	t.AppendHeader(table.Row{"Cell", "Index", "Kind", "Text", "Field"})

	for cell, nodes := range layout.Cells {
		for _, n := range nodes {
			t.AppendRow(table.Row{cell, n.Index, n.Kind, strings.ReplaceAll(n.Text, "\n", " "), fields[[2]int{cell, n.Index}]})
		}
		t.AppendSeparator()
	}
	t.AppendRow(table.Row{"", "", "link", layout.WatcherText, "watchers"})

	t.SetStyle(table.StyleRounded)
	t.Render()

	if len(layout.Cells) == 0 {
		fmt.Fprintln(a.stdout, "no stat cells found on the page")
	}
}

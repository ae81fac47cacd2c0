package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mithrel/marketmind/internal/markdown"
	"github.com/mithrel/marketmind/internal/output"
	"github.com/mithrel/marketmind/internal/present"
	"github.com/mithrel/marketmind/internal/util"
	"github.com/mithrel/marketmind/pkg/api"
)

func newHistoryCmd() *cobra.Command {
	var (
		outputMode string
		show       int
		exportOut  bool
		since      string
		until      string
		noHeaders  bool
	)
	cmd := &cobra.Command{
		Use:               "history <module>",
		Short:             "List the recent generations of a module (newest first)",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeModules,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := util.ResolveModule(args[0])
			if err != nil {
				return err
			}
			mode, ok := present.ParseMode(outputMode)
			if !ok || mode == present.ModeHTML {
				return fmt.Errorf("invalid --output %q (plain|json|ndjson|pretty|tui)", outputMode)
			}
			if exportOut && show == 0 {
				show = 1
			}
			app := getApp(cmd)
			ctx := cmd.Context()

			tr, err := util.ParseTimeRange(since, until, time.Now())
			if err != nil {
				return err
			}
			all, err := app.History.List(ctx, m.ContainerID)
			if err != nil {
				return err
			}
			entries := filterEntries(all, tr)

			opts := present.Options{
				Mode:       mode,
				JSONIndent: true,
				Headers:    !noHeaders,
				Style:      app.Cfg.GetString("tui.style"),
				Exporter:   app.Renderer.ExportMarkdown,
			}

			if show == 0 {
				if mode == present.ModeTUI {
					return present.RenderHistory(ctx, cmd.OutOrStdout(), m, entries, opts)
				}
				pager := resolvePager(app.Cfg.GetString("output.pager"))
				return withPager(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), pager, func(w io.Writer) error {
					return present.RenderHistory(ctx, w, m, entries, opts)
				})
			}

			if show < 1 || show > len(entries) {
				return fmt.Errorf("no history entry #%d for %s (%d stored)", show, m.ID, len(entries))
			}
			e := entries[show-1]
			html := markdown.Render(e.Content)
			g := present.Generation{
				Module:  m,
				Content: e.Content,
				HTML:    html,
				Text:    output.VisibleText(html),
			}
			if exportOut {
				path, err := app.Renderer.ExportText(ctx, m.ExportTitle, g.Text)
				if err != nil {
					return fmt.Errorf("export: %w", err)
				}
				g.ExportPath = path
				fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", path)
			}
			switch mode {
			case present.ModeTUI:
				return present.RenderHistory(ctx, cmd.OutOrStdout(), m, []api.HistoryEntry{e}, opts)
			case present.ModeNDJSON:
				opts.Mode = present.ModeJSON
				opts.JSONIndent = false
			}
			return present.RenderGeneration(cmd.OutOrStdout(), g, opts)
		},
	}
	cmd.Flags().StringVar(&outputMode, "output", "plain", "output format: plain|json|ndjson|pretty|tui")
	cmd.Flags().IntVar(&show, "show", 0, "show entry N (1 is the newest)")
	cmd.Flags().BoolVar(&exportOut, "export", false, "save entry N (default newest) into the downloads directory")
	cmd.Flags().StringVar(&since, "since", "", "only entries newer than this (e.g. 2h, 3d, 2026-01-02)")
	cmd.Flags().StringVar(&until, "until", "", "only entries older than this")
	cmd.Flags().BoolVar(&noHeaders, "noheaders", false, "omit the header row in plain output")
	_ = cmd.RegisterFlagCompletionFunc("output", completeValues("plain", "json", "ndjson", "pretty", "tui"))
	return cmd
}

func filterEntries(entries []api.HistoryEntry, tr util.TimeRange) []api.HistoryEntry {
	if tr.IsZero() {
		return entries
	}
	out := make([]api.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if tr.Contains(e.Time()) {
			out = append(out, e)
		}
	}
	return out
}

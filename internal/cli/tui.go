package cli

import (
	"github.com/spf13/cobra"

	"github.com/mithrel/marketmind/internal/present/tui"
	"github.com/mithrel/marketmind/internal/util"
	"github.com/mithrel/marketmind/pkg/api"
)

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:               "tui [module]",
		Short:             "Open the interactive client",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeModules,
		RunE: func(cmd *cobra.Command, args []string) error {
			initial := api.ModuleMarketing
			if len(args) == 1 {
				m, err := util.ResolveModule(args[0])
				if err != nil {
					return err
				}
				initial = m.ID
			}
			app := getApp(cmd)
			return tui.Run(cmd.Context(), tui.Deps{
				Pipeline: app.Pipeline,
				Renderer: app.Renderer,
				History:  app.History,
				Session:  app.Session,
				Style:    app.Cfg.GetString("tui.style"),
				Initial:  initial,
			})
		},
	}
}

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/mithrel/marketmind/internal/editor"
	"github.com/mithrel/marketmind/internal/forms"
	"github.com/mithrel/marketmind/internal/output"
	"github.com/mithrel/marketmind/internal/pipeline"
	"github.com/mithrel/marketmind/internal/present"
	"github.com/mithrel/marketmind/internal/session"
	"github.com/mithrel/marketmind/pkg/api"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Submit a module form to the backend and show the result",
	}
	for _, m := range api.Modules() {
		cmd.AddCommand(newGenerateModuleCmd(m))
	}
	return cmd
}

func newGenerateModuleCmd(m api.Module) *cobra.Command {
	var (
		outputMode string
		copyOut    bool
		exportOut  bool
		quiet      bool
		edit       bool
	)
	values := make(map[string]*string, len(m.Fields))

	cmd := &cobra.Command{
		Use:   string(m.ID),
		Short: m.Name,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			if outputMode == "" {
				outputMode = app.Cfg.GetString("output.mode")
			}
			mode, ok := present.ParseMode(outputMode)
			if !ok || mode == present.ModeTUI || mode == present.ModeNDJSON {
				return fmt.Errorf("invalid --output %q (html|text|pretty|json)", outputMode)
			}
			ctx := cmd.Context()
			errOut := cmd.ErrOrStderr()

			if _, err := app.Session.Current(ctx); err != nil {
				if errors.Is(err, session.ErrNotLoggedIn) {
					return fmt.Errorf("%w: run `marketmind-cli login <name>` first", err)
				}
				return err
			}

			fields := make(map[string]string, len(values))
			for name, v := range values {
				val, err := readFieldValue(cmd.InOrStdin(), *v)
				if err != nil {
					return fmt.Errorf("read --%s: %w", flagName(name), err)
				}
				fields[name] = val
			}
			if edit {
				edited, err := editor.EditForm(ctx, m, fields, editor.Stdio{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), Err: errOut})
				if err != nil {
					return err
				}
				fields = edited
			}
			for _, w := range forms.Warnings(m, fields) {
				fmt.Fprintf(errOut, "warning: %s\n", w)
			}

			req := forms.Build(m, fields)
			app.Log.Printf("cli: generate module=%s req=%s", m.ID, req.ShortHash())

			if !quiet && mode != present.ModeJSON {
				app.Pipeline.Observe(func(ev pipeline.Event) {
					if ev.ContainerID != m.ContainerID {
						return
					}
					switch ev.Kind {
					case pipeline.EventLoading, pipeline.EventProgress:
						fmt.Fprintln(errOut, ev.Text)
					}
				})
			}

			button := &pipeline.Button{}
			out := app.Pipeline.Run(ctx, m.ID, m.Endpoint, req.Payload, m.ContainerID, button)

			c := app.Registry.Get(m.ContainerID)
			view := c.Snapshot()
			text := output.VisibleText(view.HTML)

			if copyOut {
				if err := c.Actions().Copy.Activate(ctx); err != nil {
					fmt.Fprintf(errOut, "copy failed: %v\n", err)
				} else if !quiet {
					fmt.Fprintln(errOut, "Copied to clipboard")
				}
			}
			var exportPath string
			if exportOut {
				path, err := app.Renderer.ExportText(ctx, m.ExportTitle, text)
				if err != nil {
					fmt.Fprintf(errOut, "export failed: %v\n", err)
				} else {
					exportPath = path
					if !quiet {
						fmt.Fprintf(errOut, "Saved %s\n", path)
					}
				}
			}

			return present.RenderGeneration(cmd.OutOrStdout(), present.Generation{
				Module:     m,
				Content:    out.Content,
				HTML:       view.HTML,
				Text:       text,
				Err:        out.Err,
				Base:       out.Base,
				Result:     out.Result,
				ExportPath: exportPath,
			}, present.Options{
				Mode:       mode,
				JSONIndent: true,
				Style:      app.Cfg.GetString("tui.style"),
			})
		},
	}

	for _, f := range m.Fields {
		usage := f.Label
		if f.Multiline {
			usage += " (use - to read stdin)"
		}
		values[f.Name] = cmd.Flags().String(flagName(f.Name), "", usage)
	}
	cmd.Flags().StringVar(&outputMode, "output", "", "output format: html|text|pretty|json (default output.mode)")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "copy the visible result to the clipboard")
	cmd.Flags().BoolVar(&exportOut, "export", false, "save the result into the downloads directory")
	cmd.Flags().BoolVar(&edit, "edit", false, "compose the fields in $EDITOR before submitting")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress and status lines")
	_ = cmd.RegisterFlagCompletionFunc("output", completeValues("html", "text", "pretty", "json"))
	return cmd
}

// flagName turns a payload field such as valueProp into value-prop.
func flagName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// readFieldValue returns v as given, or stdin when v is "-". Only the
// single newline terminating the input is dropped.
func readFieldValue(in io.Reader, v string) (string, error) {
	if v != "-" {
		return v, nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", err
	}
	s := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(s, "\r"), nil
}

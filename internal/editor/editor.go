package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mithrel/marketmind/pkg/api"
)

const (
	headingOpen  = "== "
	headingClose = " =="
)

// ComposeForm creates the text presented to the editor: one heading per
// module field followed by its current value.
func ComposeForm(m api.Module, values map[string]string) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# MarketMind - %s\n", m.Name)
	b.WriteString("# Lines starting with '#' are ignored. Write each field below its heading.\n")
	for _, f := range m.Fields {
		b.WriteString("# " + f.Label)
		if f.MinChars > 0 {
			fmt.Fprintf(&b, " (%d+ characters recommended)", f.MinChars)
		}
		b.WriteString("\n")
		b.WriteString(headingOpen + f.Name + headingClose + "\n")
		if v := values[f.Name]; v != "" {
			b.WriteString(strings.TrimRight(v, "\n"))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// ParseForm extracts field values from editor output. Text before the
// first heading is ignored; an unknown heading is an error.
func ParseForm(m api.Module, s string) (map[string]string, error) {
	values := make(map[string]string, len(m.Fields))
	current := ""
	var buf []string
	flush := func() {
		if current != "" {
			values[current] = strings.TrimSpace(strings.Join(buf, "\n"))
		}
		buf = buf[:0]
	}
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		if name, ok := heading(line); ok {
			if _, known := m.Field(name); !known {
				return nil, fmt.Errorf("unknown field %q for %s", name, m.ID)
			}
			flush()
			current = name
			continue
		}
		if current != "" {
			buf = append(buf, line)
		}
	}
	flush()
	return values, nil
}

func heading(line string) (string, bool) {
	t := strings.TrimSpace(line)
	if !strings.HasPrefix(t, headingOpen) || !strings.HasSuffix(t, headingClose) || len(t) <= len(headingOpen)+len(headingClose) {
		return "", false
	}
	return strings.TrimSpace(t[len(headingOpen) : len(t)-len(headingClose)]), true
}

// PreferredEditor finds a suitable editor from env or common defaults.
func PreferredEditor() (string, error) {
	if v := os.Getenv("VISUAL"); v != "" {
		return v, nil
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e, nil
	}
	for _, cand := range []string{"nvim", "vim", "vi", "nano"} {
		if p, err := exec.LookPath(cand); err == nil {
			return p, nil
		}
	}
	return "", errors.New("no editor found; set $EDITOR or $VISUAL")
}

// PathFor returns the scratch file used to edit a module's form.
func PathFor(moduleID api.ModuleID) (string, error) {
	name := string(moduleID) + ".form.txt"
	if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
		return filepath.Join(xdg, "marketmind", name), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "marketmind", "edit", name), nil
}

func writeFile0600(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, fs.FileMode(0o600))
}

// Stdio is the terminal handed to the editor process.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// OpenAt opens the editor at path with initial content and returns final bytes and whether it changed.
func OpenAt(ctx context.Context, path string, initial []byte, stdio Stdio) (final []byte, changed bool, err error) {
	if err := writeFile0600(path, initial); err != nil {
		return nil, false, err
	}
	defer os.Remove(path)

	// Honor VISUAL/EDITOR including flags by running via a shell wrapper.
	ed := os.Getenv("VISUAL")
	if ed == "" {
		ed = os.Getenv("EDITOR")
	}
	var cmd *exec.Cmd
	if strings.TrimSpace(ed) != "" {
		cmd = exec.CommandContext(ctx, "sh", "-c", "$EDITORCMD \"$FILEPATH\"")
		cmd.Env = append(os.Environ(), "EDITORCMD="+ed, "FILEPATH="+path)
	} else {
		prog, err := PreferredEditor()
		if err != nil {
			return nil, false, err
		}
		cmd = exec.CommandContext(ctx, prog, path)
	}
	cmd.Stdin, cmd.Stdout, cmd.Stderr = stdio.In, stdio.Out, stdio.Err
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Run(); err != nil {
		return nil, false, fmt.Errorf("run editor: %w", err)
	}
	out, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return out, !bytes.Equal(out, initial), nil
}

// EditForm runs the editor over m's form prefilled with values.
func EditForm(ctx context.Context, m api.Module, values map[string]string, stdio Stdio) (map[string]string, error) {
	path, err := PathFor(m.ID)
	if err != nil {
		return nil, err
	}
	final, _, err := OpenAt(ctx, path, []byte(ComposeForm(m, values)), stdio)
	if err != nil {
		return nil, err
	}
	return ParseForm(m, string(final))
}

package cli

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"
)

const defaultPager = "less -FRSX"

// resolvePager picks the pager command: output.pager, then $PAGER, then
// less. "off", "none" and "cat" mean no pager.
func resolvePager(configured string) string {
	p := strings.TrimSpace(configured)
	if p == "" {
		p = strings.TrimSpace(os.Getenv("PAGER"))
	}
	if p == "" {
		p = defaultPager
	}
	switch strings.ToLower(p) {
	case "off", "none", "cat":
		return ""
	}
	return p
}

// withPager pipes write's output through pager when out is a terminal.
func withPager(ctx context.Context, out, errOut io.Writer, pager string, write func(io.Writer) error) error {
	outFile, ok := out.(*os.File)
	if pager == "" || !ok || !term.IsTerminal(int(outFile.Fd())) {
		return write(out)
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", pager)
	cmd.Stdout = outFile
	if errFile, ok := errOut.(*os.File); ok {
		cmd.Stderr = errFile
	} else {
		cmd.Stderr = os.Stderr
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return write(out)
	}
	if err := cmd.Start(); err != nil {
		return write(out)
	}
	writeErr := write(stdin)
	_ = stdin.Close()
	waitErr := cmd.Wait()
	if writeErr != nil {
		return writeErr
	}
	return waitErr
}

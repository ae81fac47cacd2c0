package output

import (
	"errors"

	"github.com/atotto/clipboard"
)

// Clipboard receives copied text.
type Clipboard interface {
	WriteText(text string) error
}

// ErrClipboardUnavailable is returned when no system clipboard tool exists.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// SystemClipboard writes through the platform clipboard (pbcopy, xclip,
// xsel, wl-copy or the Windows API).
type SystemClipboard struct{}

func (SystemClipboard) WriteText(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnavailable
	}
	return clipboard.WriteAll(text)
}

package cli

import "github.com/atotto/clipboard"

// Clipboard is the system clipboard. Tests substitute their own.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error) { return clipboard.ReadAll() }
func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// clearIfUnchanged empties the clipboard unless something else has been
// copied since secret was put there.
func clearIfUnchanged(cb Clipboard, secret string) error {
	if cur, err := cb.ReadAll(); err == nil && cur != secret {
		return nil
	}
	return cb.WriteAll("")
}

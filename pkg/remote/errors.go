// Package remote restores typed errors after they crossed a request-reply hop.
package remote

import (
	"errors"
	"fmt"
	"strings"

	monoerrors "github.com/go-monolith/mono/pkg/errors"
)

// Error maps a mono RemoteError back onto the known sentinel its handler
// message starts with, keeping the detail that followed the sentinel text.
// Only the handler message is inspected; errors that did not come from a
// remote handler, or match no sentinel, are returned unchanged.
func Error(err error, known ...error) error {
	var remoteErr *monoerrors.RemoteError
	if !errors.As(err, &remoteErr) {
		return err
	}

	msg := remoteErr.Message
	for _, target := range known {
		text := target.Error()
		if !strings.HasPrefix(msg, text) {
			continue
		}
		rest := msg[len(text):]
		if strings.TrimSpace(rest) == "" {
			return target
		}
		if !strings.HasPrefix(rest, ": ") {
			continue
		}
		return fmt.Errorf("%w: %s", target, rest[len(": "):])
	}
	return err
}

// Package notify delivers transient toast-style notifications.
package notify

import (
	"fmt"
	"io"

	"github.com/gen2brain/beeep"
)

// Toast reports outcomes as desktop notifications, mirrored to an
// optional writer so terminal users see them too.
type Toast struct {
	AppName string
	Out     io.Writer
	Quiet   bool // suppress desktop notifications, keep the writer
}

// New creates a toast notifier mirrored to out.
func New(out io.Writer) *Toast {
	return &Toast{AppName: "starmark", Out: out}
}

func (t *Toast) emit(level, msg string, alert bool) {
	if t.Out != nil {
		fmt.Fprintf(t.Out, "%s: %s\n", level, msg)
	}
	if t.Quiet {
		return
	}
	if alert {
		_ = beeep.Alert(t.AppName, msg, "")
		return
	}
	_ = beeep.Notify(t.AppName, msg, "")
}

// Info reports a neutral outcome.
func (t *Toast) Info(msg string) { t.emit("info", msg, false) }

// Success reports a completed operation.
func (t *Toast) Success(msg string) { t.emit("ok", msg, false) }

// Warn reports a degraded but non-fatal outcome.
func (t *Toast) Warn(msg string) { t.emit("warn", msg, false) }

// Error reports a failed operation.
func (t *Toast) Error(msg string) { t.emit("error", msg, true) }

package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/Cyclone1070/kernelenv/internal/notify"
	"github.com/Cyclone1070/kernelenv/internal/ui/views"
)

// TerminalNotifier prints each notification as a styled line.
type TerminalNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func NewTerminalNotifier(out io.Writer) *TerminalNotifier {
	if out == nil {
		panic("out is required")
	}
	return &TerminalNotifier{out: out}
}

func (n *TerminalNotifier) Emit(message string) string {
	n.write(notify.TypeInfo, message)
	return notify.NewID()
}

func (n *TerminalNotifier) Update(u notify.Update) {
	n.write(u.Type, u.Message)
}

func (n *TerminalNotifier) write(t notify.Type, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, views.RenderNotice(t, message))
}

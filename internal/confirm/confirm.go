package confirm

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

type Prompt struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Confirmer asks the user to acknowledge a destructive action. Exactly one
// of onConfirm or onCancel is eventually called, at most once. Either may run
// before Confirm returns or later.
type Confirmer interface {
	Confirm(p Prompt, onConfirm, onCancel func())
}

// Func adapts an ordinary function to a Confirmer.
type Func func(p Prompt, onConfirm, onCancel func())

func (f Func) Confirm(p Prompt, onConfirm, onCancel func()) {
	f(p, onConfirm, onCancel)
}

// Accept confirms every prompt immediately.
var Accept Confirmer = Func(func(_ Prompt, onConfirm, _ func()) { call(onConfirm) })

// Decline cancels every prompt immediately.
var Decline Confirmer = Func(func(_ Prompt, _, onCancel func()) { call(onCancel) })

// Terminal asks on Out and reads a y/N answer from In. Anything other than
// "y" or "yes" cancels, including EOF.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

func (t Terminal) Confirm(p Prompt, onConfirm, onCancel func()) {
	if t.Out != nil {
		fmt.Fprintf(t.Out, "%s\n%s [y/N]: ", p.Title, p.Message)
	}

	answer := ""
	if t.In != nil {
		sc := bufio.NewScanner(t.In)
		if sc.Scan() {
			answer = strings.ToLower(strings.TrimSpace(sc.Text()))
		}
	}

	if answer == "y" || answer == "yes" {
		call(onConfirm)
		return
	}
	call(onCancel)
}

func call(f func()) {
	if f != nil {
		f()
	}
}

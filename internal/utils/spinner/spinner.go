package spinner

import (
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

var (
	loader *spinner.Spinner
	mu     sync.Mutex
)

// Enabled reports whether stderr is a terminal the spinner can draw on.
func Enabled() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// StartSpinner shows message next to a spinner on stderr. It does nothing when
// stderr is not a terminal.
func StartSpinner(message string) {
	if !Enabled() {
		return
	}

	mu.Lock()
	defer mu.Unlock()
	if loader != nil {
		loader.Stop()
	}
	loader = spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	loader.Color("yellow") //nolint:errcheck
	loader.Suffix = " " + message
	loader.Start()
}

// StopSpinner stops the spinner started by StartSpinner.
func StopSpinner() {
	mu.Lock()
	defer mu.Unlock()
	if loader != nil {
		loader.Stop()
		loader = nil
	}
}

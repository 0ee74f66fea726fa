package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/innobuild/innobuild/internal/utils/logger"
	"golang.org/x/term"
)

// Confirmer answers yes/no questions.
type Confirmer interface {
	Confirm(title, message string) bool
}

// Static gives the same answer to every question.
type Static bool

func (s Static) Confirm(string, string) bool {
	return bool(s)
}

// Prompt asks on a terminal. When input is not interactive the question is
// not shown and Default is the answer.
type Prompt struct {
	In          io.Reader
	Out         io.Writer
	Interactive bool
	Default     bool

	reader *bufio.Reader
}

// NewPrompt prompts on stderr and reads stdin.
func NewPrompt() *Prompt {
	return &Prompt{
		In:          os.Stdin,
		Out:         os.Stderr,
		Interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
}

func (p *Prompt) Confirm(title, message string) bool {
	if !p.Interactive {
		logger.Logger().Infof("%s: no terminal to ask %q; answering %s", title, message, yesNo(p.Default))
		return p.Default
	}
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}

	hint := "[y/N]"
	if p.Default {
		hint = "[Y/n]"
	}
	for {
		fmt.Fprintf(p.Out, "%s\n%s %s: ", title, message, hint)
		line, err := p.reader.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		case "":
			return p.Default
		}
		if err != nil {
			return p.Default
		}
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

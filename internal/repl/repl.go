// Package repl implements Yoku's interactive read-eval-print loop: a
// liner-backed prompt with a persisted history file and colored result
// rendering.
package repl

import (
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/ejrbuss/yoku-sub000/internal/diag"
	"github.com/ejrbuss/yoku-sub000/internal/session"
)

var (
	blue = color.New(color.FgBlue).SprintFunc()
	red  = color.New(color.FgRed).SprintFunc()
)

var historyFile = filepath.Join(os.TempDir(), ".yoku_history")

// Start runs the REPL loop against sess until the user sends EOF (spec
// §4.6 "REPL mode" / §6.2 "REPL protocol"). Prompts and line editing go
// through liner on the terminal; out receives the printed
// results/diagnostics; the
// program's own `print` builtin output goes to whatever writer sess was
// constructed with.
func Start(sess *session.Session, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	prompt := sess.Config.Prompt
	for {
		input, err := line.Prompt(prompt)
		if err == io.EOF {
			break
		}
		if err != nil {
			io.WriteString(out, red(err.Error())+"\n")
			continue
		}
		line.AppendHistory(input)

		result := sess.Step(input)
		if result.NeedsMoreInput {
			prompt = sess.Config.ContinuationPrompt
			continue
		}
		prompt = sess.Config.Prompt
		if result.Err != nil {
			printDiag(out, sess, result.Err)
			continue
		}
		if result.Value != "" {
			printValue(out, sess, result.Value)
		}
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

func printValue(out io.Writer, sess *session.Session, v string) {
	if sess.Config.Color {
		io.WriteString(out, blue(v)+"\n")
		return
	}
	io.WriteString(out, v+"\n")
}

func printDiag(out io.Writer, sess *session.Session, err *diag.Report) {
	rendered := sess.Render(err)
	if sess.Config.Color {
		io.WriteString(out, red(rendered)+"\n")
		return
	}
	io.WriteString(out, rendered+"\n")
}

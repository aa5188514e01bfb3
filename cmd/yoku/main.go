// Command yoku is Yoku's command-line entry point: a bare invocation
// starts the REPL, a single path argument runs that file as a module.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/ejrbuss/yoku-sub000/internal/repl"
	"github.com/ejrbuss/yoku-sub000/internal/session"
)

// Version info, set by ldflags during build; this project does not wire a
// release pipeline, so these remain at their defaults outside of one.
var (
	Version   = "dev"
	BuildTime = "unknown"

	bold = color.New(color.Bold).SprintFunc()
)

func main() {
	args := os.Args[1:]

	if len(args) == 1 && (args[0] == "--version" || args[0] == "-version") {
		printVersion()
		return
	}

	if len(args) > 1 {
		fmt.Fprintln(os.Stderr, "Usage: yoku [script]")
		os.Exit(64)
	}

	cfg, err := session.LoadConfig(".yoku.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "yoku: %v\n", err)
		os.Exit(1)
	}

	if len(args) == 0 {
		runRepl(cfg)
		return
	}

	runModule(cfg, args[0])
}

func runModule(cfg session.Config, path string) {
	text, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "yoku: %v\n", err)
		os.Exit(1)
	}

	sess := session.New(cfg, path, os.Stdout)
	if diagErr := sess.RunModule(string(text)); diagErr != nil {
		fmt.Fprintln(os.Stderr, sess.Render(diagErr))
		os.Exit(1)
	}
}

func runRepl(cfg session.Config) {
	sess := session.New(cfg, "<repl>", os.Stdout)
	repl.Start(sess, os.Stdout)
}

func printVersion() {
	fmt.Printf("yoku %s\n", bold(Version))
	if BuildTime != "unknown" {
		fmt.Printf("built: %s\n", BuildTime)
	}
}

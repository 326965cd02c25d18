package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

func main() {
	var (
		scriptFile  = flag.String("script", "", "Path to a command script (- for stdin)")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *scriptFile == "" && !*interactive {
		fmt.Fprintln(os.Stderr, "Usage: rcview -script <file>  (run a command script)")
		fmt.Fprintln(os.Stderr, "       rcview -script -       (read commands from stdin)")
		fmt.Fprintln(os.Stderr, "       rcview -i              (interactive mode)")
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runScript(*scriptFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runScript(path string) error {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}
		defer f.Close()
		r = f
	}

	in := newInspector()
	defer in.close()

	lineno := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		out, err := in.eval(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineno, err)
		}
		if out == "" {
			continue
		}
		if strings.Contains(out, "\n") {
			fmt.Printf("%s:\n%s\n", line, out)
		} else {
			fmt.Printf("%s  # %s\n", line, out)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	fmt.Printf("\n%d objects, %d live\n", len(in.rt.Snapshot()), in.rt.LiveCount())
	return nil
}

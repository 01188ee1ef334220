package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

const prompt = "gistpen> "

const helpText = `Available commands:
  find <kind> <id> [params-json]
  findby <kind> [params-json]
  create <kind> <data-json>
  update <kind> <id> <attrs-json>
  delete <kind> <id> [force]
  help
  exit | quit`

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Find(ctx context.Context, args string) error
	FindBy(ctx context.Context, args string) error
	Create(ctx context.Context, args string) error
	Update(ctx context.Context, args string) error
	Delete(ctx context.Context, args string) error
}

// runREPL reads commands from scanner until EOF or "exit"/"quit". The first
// token selects the command; the rest of the line is passed to the handler
// unsplit so JSON arguments may contain spaces.
//
// Errors returned by handlers are ignored here; handlers report their own
// errors.
func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner) {
	for {
		printlnFn(prompt)
		if !scanner.Scan() {
			return
		}

		cmd, rest := splitCommand(scanner.Text())
		if cmd == "" {
			continue
		}

		switch cmd {
		case "help":
			printlnFn(helpText)

		case "find", "get":
			_ = a.Find(ctx, rest)

		case "findby", "list":
			_ = a.FindBy(ctx, rest)

		case "create":
			_ = a.Create(ctx, rest)

		case "update":
			_ = a.Update(ctx, rest)

		case "delete", "rm":
			_ = a.Delete(ctx, rest)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

// splitCommand returns the first word of line and the trimmed remainder.
func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ""
	}
	i := strings.IndexFunc(line, isSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}

// splitArgs splits s into at most n whitespace separated fields; the last
// field keeps the remainder of s.
func splitArgs(s string, n int) []string {
	var out []string
	rest := strings.TrimSpace(s)
	for rest != "" && len(out) < n-1 {
		var head string
		head, rest = splitCommand(rest)
		out = append(out, head)
	}
	if rest != "" {
		out = append(out, rest)
	}
	return out
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

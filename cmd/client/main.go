package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/pflag"

	"github.com/Chinwer/ThssDB/internal/sql/executor"
	"github.com/Chinwer/ThssDB/sqlclient"
)

const (
	prompt     = "thssdb> "
	contPrompt = "   ...> "
)

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".thssdb_history"
	}
	return filepath.Join(home, ".thssdb_history")
}

func main() {
	var (
		addr      = pflag.StringP("addr", "a", "127.0.0.1:6667", "server address")
		timeout   = pflag.Duration("timeout", 3*time.Second, "dial timeout")
		rwTimeout = pflag.Duration("rw-timeout", 30*time.Second, "per-request timeout (0 = none)")
		histPath  = pflag.String("history", defaultHistoryPath(), "history file path")
		histLimit = pflag.Int("history-max", 2000, "max history lines kept")
		oneShot   = pflag.StringP("command", "c", "", "execute one SQL script and exit")
	)
	pflag.Parse()

	cli, err := sqlclient.Dial(*addr, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer func() { _ = cli.Close() }()
	cli.SetRWTimeout(*rwTimeout)

	if strings.TrimSpace(*oneShot) != "" {
		if !execAndPrint(os.Stdout, cli, *oneShot) {
			os.Exit(1)
		}
		return
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     *histPath,
		HistoryLimit:    *histLimit,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		// multi-line statements are saved once complete
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	fmt.Printf("connected to %s\n", *addr)
	fmt.Println(`type \help for help`)

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			// Ctrl+C drops the pending statement
			if buf.Len() > 0 {
				buf.Reset()
				rl.SetPrompt(prompt)
			}
			continue
		}
		if err != nil {
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 && isMetaCommand(line) {
			if quit := runMeta(line); quit {
				return
			}
			continue
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
		if !statementComplete(buf.String()) {
			rl.SetPrompt(contPrompt)
			continue
		}

		script := strings.TrimSpace(buf.String())
		buf.Reset()
		rl.SetPrompt(prompt)

		_ = rl.SaveHistory(compactOneLine(script))
		execAndPrint(os.Stdout, cli, script)
	}
}

func isMetaCommand(line string) bool {
	return strings.HasPrefix(line, `\`) || line == "quit" || line == "exit"
}

func runMeta(line string) (quit bool) {
	switch line {
	case `\q`, "quit", "exit":
		return true
	case `\help`:
		fmt.Println(`meta commands:
  \q | quit | exit       quit
  \help                  show help

sql:
  statements end with ';'
  a script may span lines; input is sent once it ends with ';'`)
	default:
		fmt.Printf("unknown command: %s\n", line)
	}
	return false
}

// execAndPrint runs one script and prints every result it got back, including
// the ones completed before a failing statement.
func execAndPrint(w io.Writer, cli *sqlclient.Client, script string) bool {
	results, err := cli.Exec(script)
	for i := range results {
		printResult(w, &results[i])
	}
	if err != nil {
		fmt.Fprintf(w, "error: %v\n", err)
		return false
	}
	return true
}

// statementComplete reports whether buf ends with a ';' outside string
// literals and line comments.
func statementComplete(buf string) bool {
	inQuote := false
	inComment := false
	last := rune(0)

	for i, r := range buf {
		switch {
		case inComment:
			if r == '\n' {
				inComment = false
			}
			continue
		case inQuote:
			// '' inside a literal toggles twice
			if r == '\'' {
				inQuote = false
			}
		case r == '\'':
			inQuote = true
		case r == '-' && strings.HasPrefix(buf[i:], "--"):
			inComment = true
			continue
		}
		if !inQuote && r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			last = r
		}
	}
	return !inQuote && last == ';'
}

// compactOneLine folds a multi-line script into one history line.
func compactOneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func printResult(w io.Writer, res *executor.Result) {
	if res.ResultSet == nil {
		fmt.Fprintln(w, res.Message)
		return
	}

	rs := res.ResultSet
	cells := make([][]string, len(rs.Rows))
	widths := make([]int, len(rs.Columns))
	for i, c := range rs.Columns {
		widths[i] = len(c)
	}
	for r, row := range rs.Rows {
		cells[r] = make([]string, len(rs.Columns))
		for i := range rs.Columns {
			s := "NULL"
			if i < len(row) && row[i] != nil {
				s = fmt.Sprintf("%v", row[i])
			}
			cells[r][i] = s
			widths[i] = max(widths[i], len(s))
		}
	}

	printRow := func(values []string) {
		for i, v := range values {
			if i > 0 {
				fmt.Fprint(w, " | ")
			}
			fmt.Fprint(w, v+strings.Repeat(" ", widths[i]-len(v)))
		}
		fmt.Fprintln(w)
	}

	printRow(rs.Columns)
	for i := range rs.Columns {
		if i > 0 {
			fmt.Fprint(w, "-+-")
		}
		fmt.Fprint(w, strings.Repeat("-", widths[i]))
	}
	fmt.Fprintln(w)
	for _, row := range cells {
		printRow(row)
	}
	fmt.Fprintf(w, "(%d rows)\n", len(rs.Rows))
}

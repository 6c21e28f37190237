// Package repl adapts the engine to an interactive command line.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"minirdb/internal/engine"
	"minirdb/internal/sql"
)

const (
	prompt = "minirdb> "
	// promptContinued is shown while a statement is waiting for its ';'.
	promptContinued = "...> "
)

// Session buffers input lines until they form complete statements and
// executes them one at a time. A failing statement is reported and the
// session carries on.
type Session struct {
	eng     *engine.DBEngine
	out     io.Writer
	pending string
}

// NewSession returns a session that writes results to out.
func NewSession(eng *engine.DBEngine, out io.Writer) *Session {
	return &Session{eng: eng, out: out}
}

// Pending reports whether part of a statement is buffered.
func (s *Session) Pending() bool {
	return s.pending != ""
}

// Feed consumes one input line. It returns true when the line asks to end
// the session.
func (s *Session) Feed(line string) (quit bool) {
	if !s.Pending() {
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			return false
		case "quit", "exit", ".exit", ".quit":
			return true
		}
	}

	s.pending += line + "\n"
	for {
		stmt, rest, ok := sql.CutStatement(s.pending)
		if !ok {
			break
		}
		s.pending = rest
		if stmt != "" {
			s.exec(stmt)
		}
	}
	if strings.TrimSpace(s.pending) == "" {
		s.pending = ""
	}
	return false
}

// Flush executes whatever is buffered as a final statement.
func (s *Session) Flush() {
	stmt := strings.TrimSpace(s.pending)
	s.pending = ""
	if stmt != "" {
		s.exec(stmt)
	}
}

func (s *Session) exec(query string) {
	stmt, err := sql.Parse(query)
	if err != nil {
		s.writeLn("Error: " + err.Error())
		return
	}
	res, err := s.eng.Execute(stmt)
	if err != nil {
		s.writeLn("Error: " + err.Error())
		return
	}
	WriteResult(s.out, res)
}

// WriteResult prints a SELECT result as a table and any other result as
// its acknowledgement line.
func WriteResult(w io.Writer, res *engine.Result) {
	if res.IsQuery() {
		fmt.Fprintln(w, formatRows(res.Columns, res.Rows))
		return
	}
	fmt.Fprintln(w, res.String())
}

func (s *Session) writeLn(text string) {
	fmt.Fprintln(s.out, text)
}

// Run reads statements from in until EOF or a quit command. When in is a
// terminal it is switched to raw mode and line editing is provided.
func Run(eng *engine.DBEngine, in io.Reader, out io.Writer) error {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return runTerminal(eng, f, out)
	}
	return runLines(eng, in, out)
}

// lineReader is the input side of a session: the terminal in interactive
// mode, a scanner otherwise. ReadLine returns io.EOF at end of input.
type lineReader interface {
	ReadLine() (string, error)
}

// scanReader adapts a bufio.Scanner to lineReader.
type scanReader struct {
	sc *bufio.Scanner
}

func (r scanReader) ReadLine() (string, error) {
	if r.sc.Scan() {
		return r.sc.Text(), nil
	}
	if err := r.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// drive feeds lines from r into s until a quit command or end of input.
// At end of input an unterminated final statement is still executed.
func drive(s *Session, r lineReader, setPrompt func(string)) error {
	for {
		if setPrompt != nil {
			if s.Pending() {
				setPrompt(promptContinued)
			} else {
				setPrompt(prompt)
			}
		}
		line, err := r.ReadLine()
		if errors.Is(err, io.EOF) {
			s.Flush()
			return nil
		}
		if err != nil {
			return fmt.Errorf("repl: read input: %w", err)
		}
		if s.Feed(line) {
			return nil
		}
	}
}

func runLines(eng *engine.DBEngine, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return drive(NewSession(eng, out), scanReader{sc: sc}, nil)
}

func runTerminal(eng *engine.DBEngine, f *os.File, out io.Writer) error {
	fd := int(f.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("repl: raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{f, out}, prompt)
	s := NewSession(eng, t)
	s.writeLn("minirdb: enter SQL statements terminated by ';', or quit to exit")
	return drive(s, t, t.SetPrompt)
}

// formatRows renders a result set as an aligned text table.
func formatRows(header []string, rows []sql.Row) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, v := range row {
			if n := len(v.String()); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	writeCells(&b, header, widths)
	for i := range header {
		b.WriteString("-" + strings.Repeat("-", widths[i]) + "-")
		if i != len(header)-1 {
			b.WriteString("+")
		}
	}
	b.WriteString("\n")
	cells := make([]string, len(header))
	for _, row := range rows {
		for i, v := range row {
			cells[i] = v.String()
		}
		writeCells(&b, cells, widths)
	}
	fmt.Fprintf(&b, "(%d row(s))", len(rows))
	return b.String()
}

func writeCells(b *strings.Builder, cells []string, widths []int) {
	for i, c := range cells {
		fmt.Fprintf(b, " %-*s ", widths[i], c)
		if i != len(cells)-1 {
			b.WriteString("|")
		}
	}
	b.WriteString("\n")
}

package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
	"golang.org/x/term"
)

// Terminal prompts on a line-oriented reader/writer pair.
type Terminal struct {
	reader *bufio.Reader
	w      io.Writer

	marker lipgloss.Style
	hint   lipgloss.Style
}

// NewTerminal creates a Terminal reading answers from r and writing questions to w.
func NewTerminal(r io.Reader, w io.Writer) *Terminal {
	renderer := lipgloss.NewRenderer(w)
	return &Terminal{
		reader: bufio.NewReader(r),
		w:      w,
		marker: renderer.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		hint:   renderer.NewStyle().Faint(true),
	}
}

// Interactive reports whether r is a terminal. Readers that are not files,
// such as scripted answers, count as interactive.
func Interactive(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return true
	}
	return term.IsTerminal(int(f.Fd()))
}

// Ask implements Prompter.
func (t *Terminal) Ask(question, def string, allowEmpty bool) (string, error) {
	for {
		t.question(question)
		if def != "" {
			fmt.Fprint(t.w, t.hint.Render("("+def+")")+" ")
		}
		line, err := t.readLine()
		if err != nil {
			return "", err
		}
		if line != "" {
			return line, nil
		}
		if def != "" || allowEmpty {
			return def, nil
		}
		fmt.Fprintln(t.w, t.hint.Render("  an answer is required"))
	}
}

// Confirm implements Prompter.
func (t *Terminal) Confirm(question string, def bool) (bool, error) {
	choices := "[y/N]"
	if def {
		choices = "[Y/n]"
	}
	for {
		t.question(question)
		fmt.Fprint(t.w, t.hint.Render(choices)+" ")
		line, err := t.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(t.w, t.hint.Render("  please answer y or n"))
	}
}

// Select implements Prompter. The answer may be an item number or text;
// text picks the best fuzzy match among items.
func (t *Terminal) Select(question string, items []string, def int) (int, error) {
	if len(items) == 0 {
		return 0, fmt.Errorf("nothing to select from")
	}
	if def < 0 || def >= len(items) {
		def = 0
	}

	fmt.Fprintln(t.w)
	t.question(question)
	fmt.Fprintln(t.w)
	for i, item := range items {
		fmt.Fprintf(t.w, "  %d) %s\n", i+1, item)
	}

	for {
		fmt.Fprintf(t.w, "Enter number or name [1-%d] %s ", len(items), t.hint.Render("("+strconv.Itoa(def+1)+")"))
		line, err := t.readLine()
		if err != nil {
			return 0, err
		}
		if line == "" {
			return def, nil
		}
		if num, err := strconv.Atoi(line); err == nil {
			if num >= 1 && num <= len(items) {
				return num - 1, nil
			}
			fmt.Fprintf(t.w, "  choose 1-%d\n", len(items))
			continue
		}
		if matches := fuzzy.Find(line, items); len(matches) > 0 {
			return matches[0].Index, nil
		}
		fmt.Fprintf(t.w, "  no item matches %q\n", line)
	}
}

func (t *Terminal) question(q string) {
	fmt.Fprint(t.w, t.marker.Render("?")+" "+q+" ")
}

// readLine reads one answer. A final line without a trailing newline is
// accepted; EOF before any input is an I/O failure.
func (t *Terminal) readLine() (string, error) {
	line, err := t.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading answer: %w", io.ErrUnexpectedEOF)
		}
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

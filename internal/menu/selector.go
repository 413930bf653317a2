package menu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/valaam-downloader/internal/model"
	"github.com/mattn/go-isatty"
)

// QuitToken quits from any prompt. It is compared case-insensitively.
const QuitToken = "q"

// SelectionPrompt is printed after every menu.
const SelectionPrompt = "Please enter your selection number (or 'q' to quit): "

var (
	// ErrQuit is returned when the user asks to quit or input ends.
	ErrQuit = errors.New("quit requested")

	// ErrNoOptions is returned by Select for an empty menu.
	ErrNoOptions = errors.New("no options to select from")
)

// Selector renders menus to an output and reads answers line by line.
//
// Selector is not safe for concurrent use.
type Selector struct {
	in  *bufio.Reader
	out io.Writer

	clear bool

	indexStyle  lipgloss.Style
	promptStyle lipgloss.Style
	errorStyle  lipgloss.Style
}

// NewSelector creates a Selector reading from in and writing to out.
//
// Styles are rendered with the color profile of out, so plain writers
// (files, buffers) receive unstyled text.
func NewSelector(in io.Reader, out io.Writer) *Selector {
	renderer := lipgloss.NewRenderer(out)
	return &Selector{
		in:          bufio.NewReader(in),
		out:         out,
		indexStyle:  renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ECDC4")),
		promptStyle: renderer.NewStyle().Foreground(lipgloss.Color("#F8B500")),
		errorStyle:  renderer.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	}
}

// SetClearScreen enables clearing the terminal in Clear. It has no effect
// when out is not a terminal.
func (s *Selector) SetClearScreen(enabled bool) {
	s.clear = enabled && isTerminal(s.out)
}

// Clear clears the terminal screen between menus, when enabled.
func (s *Selector) Clear() {
	if s.clear {
		fmt.Fprint(s.out, "\033[H\033[2J")
	}
}

// Select shows options as a numbered list and waits for a valid choice.
//
// It returns the link and label of the chosen option. Invalid answers are
// explained and the menu is shown again. Typing q returns ErrQuit, as does
// the end of input.
func (s *Selector) Select(options *model.OptionMap) (link, label string, err error) {
	count := options.Len()
	if count == 0 {
		return "", "", ErrNoOptions
	}

	for {
		for i, l := range options.Labels() {
			fmt.Fprintf(s.out, "%s %s\n", s.indexStyle.Render(strconv.Itoa(i)+"."), l)
		}

		answer, err := s.ask(SelectionPrompt)
		if err != nil {
			return "", "", err
		}

		index, convErr := strconv.Atoi(answer)
		switch {
		case convErr != nil:
			s.complain("Invalid input. Please enter a valid number or 'q' to quit.")
		case index < 0 || index >= count:
			s.complain(fmt.Sprintf("Please select a number between 0 and %d.", count-1))
		default:
			label, link = options.At(index)
			return link, label, nil
		}
	}
}

// Confirm asks a yes/no question. Only y (any case) counts as yes; q quits.
func (s *Selector) Confirm(question string) (bool, error) {
	answer, err := s.ask(question)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "y"), nil
}

// ask prints a prompt and reads one trimmed line, mapping q to ErrQuit.
func (s *Selector) ask(prompt string) (string, error) {
	fmt.Fprint(s.out, s.promptStyle.Render(prompt))

	line, err := s.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		fmt.Fprintln(s.out)
		if errors.Is(err, io.EOF) {
			return "", ErrQuit
		}
		return "", fmt.Errorf("read answer: %w", err)
	}

	answer := strings.TrimSpace(line)
	if strings.EqualFold(answer, QuitToken) {
		return "", ErrQuit
	}
	return answer, nil
}

func (s *Selector) complain(msg string) {
	fmt.Fprintln(s.out, s.errorStyle.Render(msg))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

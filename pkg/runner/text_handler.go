package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
	"golang.org/x/term"
)

// Style decorates the pieces of the transcript. Nil fields leave text untouched.
type Style struct {
	Bot     func(string) string
	User    func(string) string
	Control func(string) string
	System  func(string) string
}

func apply(fn func(string) string, s string) string {
	if fn == nil {
		return s
	}
	return fn(s)
}

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader    *bufio.Reader
	Writer    io.Writer
	Renderer  ContentRenderer
	Style     Style
	Sanitizer Sanitizer

	interactive bool
	lastInput   string

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerSanitizer sets the input limits.
func WithTextHandlerSanitizer(s Sanitizer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Sanitizer = s
	}
}

// WithTextHandlerStyle configures transcript decoration.
func WithTextHandlerStyle(style Style) TextHandlerOption {
	return func(h *TextHandler) {
		h.Style = style
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader:      bufio.NewReader(r),
		Writer:      w,
		interactive: IsInteractive(r),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// IsInteractive reports whether r is a terminal.
func IsInteractive(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Interactive reports whether the handler reads from a terminal.
func (h *TextHandler) Interactive() bool {
	return h.interactive
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump reads lines in the background so Input can honor context cancellation.
func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			close(h.inputChan)
			return
		}
	}
}

// Output writes bot messages, numbered options and the navigation hint.
// User messages repeating the line just typed are skipped: the terminal already shows it.
func (h *TextHandler) Output(ctx context.Context, actions []domain.ActionRequest) error {
	for _, act := range actions {
		switch payload := act.Payload.(type) {
		case domain.Message:
			if payload.Actor == domain.ActorUser {
				if strings.EqualFold(payload.Text, h.lastInput) {
					continue
				}
				fmt.Fprintln(h.Writer, apply(h.Style.User, "> "+payload.Text))
				continue
			}
			output := payload.Text
			if h.Renderer != nil {
				if rendered, err := h.Renderer(output); err == nil {
					output = rendered
				}
			}
			fmt.Fprintln(h.Writer, apply(h.Style.Bot, strings.TrimSpace(output)))

		case domain.ControlSet:
			h.writeControls(payload)
		}
	}
	return nil
}

func (h *TextHandler) writeControls(set domain.ControlSet) {
	if set.Kind == domain.ControlsOptions {
		for i, c := range set.Controls {
			fmt.Fprintln(h.Writer, apply(h.Style.Control, fmt.Sprintf("  %d) %s", i+1, c.Label)))
		}
		return
	}

	hints := make([]string, 0, len(set.Controls))
	for _, c := range set.Controls {
		switch c.Kind {
		case domain.ControlBack:
			hints = append(hints, c.Label+" (/back)")
		case domain.ControlMainMenu:
			hints = append(hints, c.Label+" (/menu)")
		}
	}
	fmt.Fprintln(h.Writer, apply(h.Style.Control, "  "+strings.Join(hints, "   ")))
}

// Input prompts and reads a sanitized line. Invalid lines are reported and re-read.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			fmt.Fprint(h.Writer, "> ")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}

			clean, err := h.Sanitizer.Clean(strings.TrimSpace(res.text))
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			h.lastInput = clean
			return clean, nil
		}
	}
}

// SystemOutput writes a meta-message.
func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintln(h.Writer, apply(h.Style.System, msg))
	return err
}

package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
// Every Output call writes one line holding the array of render requests.
type JSONHandler struct {
	Reader    *bufio.Reader
	Writer    io.Writer
	Encoder   *json.Encoder
	Sanitizer Sanitizer
}

// SystemEvent is the line written by SystemOutput.
type SystemEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(ctx context.Context, actions []domain.ActionRequest) error {
	if len(actions) == 0 {
		return nil
	}
	return h.Encoder.Encode(actions)
}

// Input reads one line: either a JSON string ("hello") or raw text.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		return h.Sanitizer.Clean(val)
	}
	return h.Sanitizer.Clean(text)
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(SystemEvent{Type: "SYSTEM_MESSAGE", Message: msg})
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// stdout is where command results go; the root command points it at its own writer
var stdout io.Writer = os.Stdout

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format, w: stdout, errW: os.Stderr}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errW, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errW, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case TextResult:
		_, _ = fmt.Fprintln(o.w, v.Result)
	case CodeResult:
		_, _ = fmt.Fprintln(o.w, v.Response)
	case HealthResult:
		_, _ = fmt.Fprintf(o.w, "Status: %s\n", v.Status)
		_, _ = fmt.Fprintf(o.w, "Online: %d\n", v.Online)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// TextResult is the reply of a gameplay or recovery operation
type TextResult struct {
	Result string `json:"result"`
}

// CodeResult is the reply of an account operation
type CodeResult struct {
	Response string `json:"response"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
	Online int    `json:"online"`
}

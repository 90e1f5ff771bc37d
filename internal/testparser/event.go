package testparser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Event kinds written by PHPUnit's --log-json logger.
const (
	EventSuiteStart = "suiteStart"
	EventTestStart  = "testStart"
	EventTest       = "test"
)

// notFinishedMessage is attached to a test that started but never reported.
const notFinishedMessage = "Test is not finished"

// TraceFrame is one stack frame of a test event.
type TraceFrame struct {
	File string     `json:"file"`
	Line LineNumber `json:"line"`
}

// LineNumber is a trace line. PHPUnit writes it as a number; quoted values
// are accepted as well.
type LineNumber string

// UnmarshalJSON accepts any scalar and keeps its text.
func (l *LineNumber) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	*l = LineNumber(s)
	return nil
}

// Event is a single entry of the --log-json event stream.
type Event struct {
	Event   string       `json:"event"`
	Suite   string       `json:"suite"`
	Test    string       `json:"test"`
	Status  string       `json:"status"`
	Time    float64      `json:"time"`
	Trace   []TraceFrame `json:"trace"`
	Message string       `json:"message"`
	Output  string       `json:"output"`
}

// EventParser parses PHPUnit --log-json reports.
type EventParser struct {
	root rootStripper
}

// NewEventParser creates an event stream parser for a build rooted at buildRoot.
func NewEventParser(buildRoot string) *EventParser {
	return &EventParser{root: newRootStripper(buildRoot)}
}

// Format returns FormatJSON.
func (p *EventParser) Format() Format {
	return FormatJSON
}

// Parse reads the event stream at path.
//
// The stream is either a JSON array of events or back-to-back event objects
// with no separator between them, which is what PHPUnit writes. A test that
// started but never reported a result is recorded as an error.
func (p *EventParser) Parse(path string) (*ResultSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidFormat, path, err)
	}

	c := newCollector()
	events, err := decodeEvents(data, c)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, path, err)
	}

	var started *Event
	for i := range events {
		switch events[i].Event {
		case EventTest:
			if err := p.parseTestcase(c, events[i]); err != nil {
				return nil, err
			}
			started = nil
		case EventTestStart:
			started = &events[i]
		}
	}

	if started != nil {
		unfinished := *started
		unfinished.Status = "error"
		unfinished.Message = notFinishedMessage
		unfinished.Output = ""
		if err := p.parseTestcase(c, unfinished); err != nil {
			return nil, err
		}
	}

	return c.set, nil
}

// decodeEvents decodes as many complete events as data holds. A truncated
// tail is recorded as a diagnostic; it is an error only when not a single
// event could be decoded.
func decodeEvents(data []byte, c *collector) ([]Event, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	var events []Event

	next := func() (bool, error) {
		var e Event
		err := dec.Decode(&e)
		var typeErr *json.UnmarshalTypeError
		switch {
		case err == nil:
			events = append(events, e)
			return true, nil
		case errors.As(err, &typeErr):
			c.diagnostic("skipped malformed event at offset %d: %v", typeErr.Offset, err)
			return true, nil
		default:
			return false, err
		}
	}

	var decodeErr error
	switch trimmed[0] {
	case '[':
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		for dec.More() {
			ok, err := next()
			if !ok {
				decodeErr = err
				break
			}
		}
		if decodeErr == nil {
			if _, err := dec.Token(); err != nil {
				decodeErr = fmt.Errorf("unterminated event array: %w", err)
			}
		}
	case '{':
		for {
			ok, err := next()
			if errors.Is(err, io.EOF) {
				break
			}
			if !ok {
				decodeErr = err
				break
			}
		}
	default:
		return nil, fmt.Errorf("expected JSON object or array, found %q", trimmed[0])
	}

	if decodeErr != nil {
		if len(events) == 0 {
			return nil, decodeErr
		}
		c.diagnostic("event stream truncated after %d events: %v", len(events), decodeErr)
	}
	return events, nil
}

func (p *EventParser) parseTestcase(c *collector, e Event) error {
	severity, err := EventSeverity(e)
	if err != nil {
		return err
	}
	c.add(e.Test, severity, eventMessage(e), e.Output,
		func() []string { return p.trace(e) },
		func() (string, string) { return p.location(e) },
	)
	return nil
}

// EventSeverity classifies a completed test event.
func EventSeverity(e Event) (Severity, error) {
	switch e.Status {
	case "fail":
		return SeverityFail, nil
	case "error":
		if strings.HasPrefix(e.Message, "Skipped") || strings.HasPrefix(e.Message, "Incomplete") {
			return SeveritySkipped, nil
		}
		return SeverityError, nil
	case "pass", "warning":
		return SeverityPass, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnexpectedStatus, e.Status)
	}
}

// eventMessage returns the event message, falling back to the test name.
func eventMessage(e Event) string {
	if e.Message != "" {
		return e.Message
	}
	if e.Test != "" {
		return e.Test
	}
	return e.Suite + "::"
}

func (p *EventParser) trace(e Event) []string {
	frames := make([]string, 0, len(e.Trace))
	for _, f := range e.Trace {
		frames = append(frames, p.root.strip(f.File)+":"+string(f.Line))
	}
	return frames
}

// location returns the last trace frame, which is where the assertion sits.
func (p *EventParser) location(e Event) (string, string) {
	if len(e.Trace) == 0 {
		return "", ""
	}
	last := e.Trace[len(e.Trace)-1]
	return p.root.strip(last.File), string(last.Line)
}

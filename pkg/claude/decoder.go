package claude

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// frameMarkerLen is the width of the marker ("data: ") preceding each payload.
const frameMarkerLen = 6

var newlineRuns = regexp.MustCompile(`\n+`)

// CompletionFrame is one decoded line of an append_message body.
type CompletionFrame struct {
	Raw        string
	Completion *string
	StopReason string
	Model      string
}

type framePayload struct {
	Completion json.RawMessage `json:"completion"`
	StopReason *string         `json:"stop_reason"`
	Model      string          `json:"model"`
}

// ParseFrames splits body into frames. Blank lines are skipped; any line that
// is not a JSON object after the marker aborts the whole parse.
func ParseFrames(body string) ([]CompletionFrame, error) {
	normalized := strings.TrimSpace(newlineRuns.ReplaceAllString(body, "\n"))
	if normalized == "" {
		return nil, nil
	}

	lines := strings.Split(normalized, "\n")
	frames := make([]CompletionFrame, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		frame, err := parseFrame(line)
		if err != nil {
			return nil, &Error{
				Code:    CodeDecode,
				Op:      "decode_completion",
				Message: fmt.Sprintf("frame %d is malformed", len(frames)),
				Err:     err,
			}
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

func parseFrame(line string) (CompletionFrame, error) {
	if len(line) < frameMarkerLen {
		return CompletionFrame{}, fmt.Errorf("line shorter than frame marker: %q", line)
	}
	payload := strings.TrimSpace(line[frameMarkerLen:])

	// Objects only: null, arrays and scalars are rejected here.
	if !strings.HasPrefix(payload, "{") {
		return CompletionFrame{}, fmt.Errorf("payload is not a JSON object")
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	var p framePayload
	if err := dec.Decode(&p); err != nil {
		return CompletionFrame{}, err
	}
	if dec.More() {
		return CompletionFrame{}, fmt.Errorf("trailing data after JSON object")
	}

	frame := CompletionFrame{Raw: line, Model: p.Model}
	if p.StopReason != nil {
		frame.StopReason = *p.StopReason
	}
	if len(p.Completion) > 0 && string(p.Completion) != "null" {
		var text string
		if err := json.Unmarshal(p.Completion, &text); err != nil {
			return CompletionFrame{}, fmt.Errorf("completion is not a string: %w", err)
		}
		frame.Completion = &text
	}
	return frame, nil
}

// DecodeCompletion returns the concatenation of every frame's completion in
// arrival order. A body without frames decodes to "".
func DecodeCompletion(body string) (string, error) {
	frames, err := ParseFrames(body)
	if err != nil {
		return "", err
	}
	return joinCompletions(frames), nil
}

func joinCompletions(frames []CompletionFrame) string {
	var sb strings.Builder
	for _, f := range frames {
		if f.Completion != nil {
			sb.WriteString(*f.Completion)
		}
	}
	return sb.String()
}

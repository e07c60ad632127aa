package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ChatRequest is the body posted to the chat backend's /chat endpoint.
type ChatRequest struct {
	ModelName     string   `json:"model_name"`
	ModelProvider string   `json:"model_provider"`
	SystemPrompt  string   `json:"system_prompt"`
	Messages      []string `json:"messages"`
	AllowSearch   bool     `json:"allow_search"`
}

// NewChatRequest builds the wire request for the given settings and transcript. Only the content of
// each message is sent; roles and timestamps stay on the client.
func NewChatRequest(settings ChatSettings, transcript []Message) ChatRequest {
	msgs := make([]string, len(transcript))
	for i, msg := range transcript {
		msgs[i] = msg.Content
	}
	return ChatRequest{
		ModelName:     settings.Model,
		ModelProvider: string(settings.Provider),
		SystemPrompt:  settings.SystemPrompt,
		Messages:      msgs,
		AllowSearch:   settings.InternetSearch,
	}
}

// ExtractReply turns the backend's JSON reply into the text shown in the transcript. The backend
// doesn't commit to a single shape, so the text is taken from the first of:
//
//   - the body itself, when it is a JSON string;
//   - the "response" field, when it is set to a truthy value;
//   - the "content" field, when it is set to a truthy value;
//   - the compact JSON encoding of the whole body.
//
// Truthiness follows JavaScript: null, false, 0 and "" are falsy. Non-string field values are
// returned as compact JSON. JSON is re-encoded the way JSON.stringify does it: key order is kept
// and numbers are written in their shortest form, so 1e2 becomes 100 and 1.0 becomes 1. A body
// that isn't a single JSON value, or that is null, is an error.
func ExtractReply(body []byte) (string, error) {
	var payload any
	if err := decodeSingle(body, &payload); err != nil {
		return "", fmt.Errorf("error decoding reply: %w", err)
	}

	switch v := payload.(type) {
	case string:
		return v, nil
	case nil:
		return "", errors.New("reply is null")
	case map[string]any:
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(body, &fields); err != nil {
			return "", fmt.Errorf("error decoding reply fields: %w", err)
		}
		for _, key := range []string{"response", "content"} {
			raw, ok := fields[key]
			if !ok || !truthy(raw) {
				continue
			}
			return displayText(raw)
		}
	}

	return stringify(body)
}

func decodeSingle(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after top-level value")
	}
	return nil
}

func truthy(raw json.RawMessage) bool {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		return err != nil || f != 0
	default:
		return true
	}
}

func displayText(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	return stringify(raw)
}

// stringify re-encodes raw without insignificant whitespace, keeping the order of object keys.
func stringify(raw []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	// Per open container: whether it is an object, and how many tokens it holds so far.
	type container struct {
		object bool
		tokens int
	}
	var (
		buf   bytes.Buffer
		stack []container
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("error encoding reply: %w", err)
		}

		if d, ok := tok.(json.Delim); ok && (d == '}' || d == ']') {
			stack = stack[:len(stack)-1]
			buf.WriteRune(rune(d))
			continue
		}

		if n := len(stack); n > 0 {
			top := &stack[n-1]
			switch {
			case top.tokens == 0:
			case top.object && top.tokens%2 == 1:
				buf.WriteByte(':')
			default:
				buf.WriteByte(',')
			}
			top.tokens++
		}

		switch v := tok.(type) {
		case json.Delim:
			buf.WriteRune(rune(v))
			stack = append(stack, container{object: v == '{'})
		case string:
			if err := writeString(&buf, v); err != nil {
				return "", err
			}
		case json.Number:
			buf.WriteString(jsNumber(v))
		case bool:
			buf.WriteString(strconv.FormatBool(v))
		case nil:
			buf.WriteString("null")
		}
	}
	return buf.String(), nil
}

func writeString(buf *bytes.Buffer, s string) error {
	var sb bytes.Buffer
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("error encoding string: %w", err)
	}
	buf.Write(bytes.TrimSuffix(sb.Bytes(), []byte("\n")))
	return nil
}

// jsNumber formats n the way JavaScript prints a number: shortest round-trip digits, plain
// notation for magnitudes in [1e-6, 1e21) and exponent notation otherwise. Values that overflow
// a float64 become null, as JSON.stringify does for Infinity.
func jsNumber(n json.Number) string {
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return n.String()
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "null"
	}
	if f == 0 {
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + sign + digits
}

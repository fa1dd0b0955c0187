package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// LoginStatus is the decoded /getLogin payload.
type LoginStatus struct {
	LoggedIn bool
	Handle   string
}

// Tag is one /getTagList entry. Servers may send en, en_short or both.
type Tag struct {
	En      string `json:"en"`
	EnShort string `json:"en_short"`
	Ko      string `json:"ko"`
}

// Value is the option value a selector submits for the tag.
func (t Tag) Value() string {
	if t.EnShort != "" {
		return t.EnShort
	}
	return t.En
}

// ProblemID accepts either a JSON number or a JSON string.
type ProblemID string

func (p *ProblemID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = ProblemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("problemId: %w", err)
	}
	*p = ProblemID(n.String())
	return nil
}

func (p ProblemID) String() string { return string(p) }

// Recommendation is one item of the recommendation endpoints.
type Recommendation struct {
	ProblemID ProblemID `json:"problemId"`
	TitleKo   string    `json:"titleKo"`
}

// ScriptOutput is the /run_python payload.
type ScriptOutput struct {
	Message string   `json:"message"`
	Items   []string `json:"items"`
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s: status %d", e.Path, e.Code)
}

type envelope[T any] struct {
	Items T `json:"items"`
}

func decodeLogin(raw []json.RawMessage) (LoginStatus, error) {
	if len(raw) < 2 {
		return LoginStatus{}, fmt.Errorf("getLogin: expected [bool, string], got %d items", len(raw))
	}
	var st LoginStatus
	if err := json.Unmarshal(raw[0], &st.LoggedIn); err != nil {
		return LoginStatus{}, fmt.Errorf("getLogin: flag: %w", err)
	}
	if strings.TrimSpace(string(raw[1])) != "null" {
		if err := json.Unmarshal(raw[1], &st.Handle); err != nil {
			return LoginStatus{}, fmt.Errorf("getLogin: handle: %w", err)
		}
	}
	return st, nil
}

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// AnswerKind tells which representation an Answer holds
type AnswerKind int

const (
	AnswerUnset AnswerKind = iota
	AnswerText
	AnswerChoices
	AnswerNumber
)

// Answer is the value given to one question.
// Text for radio/text/paragraph, ordered choices for checkbox/ranking (order = rank),
// a number for scale. The zero value is unset.
type Answer struct {
	kind    AnswerKind
	text    string
	choices []string
	number  int
}

// TextAnswer creates a text answer
func TextAnswer(s string) Answer {
	return Answer{kind: AnswerText, text: s}
}

// ChoicesAnswer creates an ordered choice answer
func ChoicesAnswer(values ...string) Answer {
	cp := make([]string, len(values))
	copy(cp, values)
	return Answer{kind: AnswerChoices, choices: cp}
}

// NumberAnswer creates a scale answer
func NumberAnswer(n int) Answer {
	return Answer{kind: AnswerNumber, number: n}
}

// Kind returns the representation held by the answer
func (a Answer) Kind() AnswerKind { return a.kind }

// IsEmpty reports whether the answer counts as unanswered:
// unset, empty string, or an empty sequence.
func (a Answer) IsEmpty() bool {
	switch a.kind {
	case AnswerText:
		return a.text == ""
	case AnswerChoices:
		return len(a.choices) == 0
	case AnswerNumber:
		return false
	}
	return true
}

// Text returns the text value, or "" for other kinds
func (a Answer) Text() string {
	if a.kind == AnswerText {
		return a.text
	}
	return ""
}

// Choices returns a copy of the ordered choices, or nil for other kinds
func (a Answer) Choices() []string {
	if a.kind != AnswerChoices {
		return nil
	}
	cp := make([]string, len(a.choices))
	copy(cp, a.choices)
	return cp
}

// Len is the number of choices, 0 for other kinds
func (a Answer) Len() int {
	if a.kind != AnswerChoices {
		return 0
	}
	return len(a.choices)
}

// Number returns the numeric value. Numeric text is accepted.
func (a Answer) Number() (int, bool) {
	switch a.kind {
	case AnswerNumber:
		return a.number, true
	case AnswerText:
		n, err := strconv.Atoi(strings.TrimSpace(a.text))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Contains reports whether value is among the choices
func (a Answer) Contains(value string) bool {
	for _, c := range a.choices {
		if c == value {
			return true
		}
	}
	return false
}

// Matches compares a scalar answer to a trigger value exactly.
// Sequences match when they contain the value.
func (a Answer) Matches(value string) bool {
	switch a.kind {
	case AnswerText:
		return a.text == value
	case AnswerNumber:
		return strconv.Itoa(a.number) == value
	case AnswerChoices:
		return a.Contains(value)
	}
	return false
}

// String renders the answer the way the admin views show it
func (a Answer) String() string {
	switch a.kind {
	case AnswerText:
		return a.text
	case AnswerNumber:
		return strconv.Itoa(a.number)
	case AnswerChoices:
		return strings.Join(a.choices, ", ")
	}
	return "-"
}

// MarshalJSON encodes the answer as a string, array, integer or null
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case AnswerText:
		return json.Marshal(a.text)
	case AnswerChoices:
		if a.choices == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.choices)
	case AnswerNumber:
		return json.Marshal(a.number)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a string, an array of strings, an integer, null,
// or an {option: rank} object which becomes choices ordered by rank.
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Answer{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = TextAnswer(s)
	case '[':
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("answer list must contain strings: %w", err)
		}
		*a = ChoicesAnswer(values...)
	case '{':
		var ranks map[string]float64
		if err := json.Unmarshal(data, &ranks); err != nil {
			return fmt.Errorf("ranking answer must map options to ranks: %w", err)
		}
		*a = ChoicesAnswer(orderByRank(ranks)...)
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("unsupported answer value %s", string(data))
		}
		if f != math.Trunc(f) {
			return fmt.Errorf("scale answer must be an integer, got %v", f)
		}
		*a = NumberAnswer(int(f))
	}
	return nil
}

func orderByRank(ranks map[string]float64) []string {
	options := make([]string, 0, len(ranks))
	for opt := range ranks {
		options = append(options, opt)
	}
	sort.Slice(options, func(i, j int) bool {
		if ranks[options[i]] == ranks[options[j]] {
			return options[i] < options[j]
		}
		return ranks[options[i]] < ranks[options[j]]
	})
	return options
}

// Responses maps question id to answer
type Responses map[string]Answer

// Clone returns a shallow copy; Answer values are immutable
func (r Responses) Clone() Responses {
	out := make(Responses, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

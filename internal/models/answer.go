package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// AnswerValue holds either a textual or a numeric answer. The zero value is the
// empty text answer.
type AnswerValue struct {
	text    string
	number  float64
	numeric bool
}

func TextValue(s string) AnswerValue {
	return AnswerValue{text: s}
}

func NumberValue(n float64) AnswerValue {
	return AnswerValue{number: n, numeric: true}
}

func (v AnswerValue) IsNumeric() bool {
	return v.numeric
}

// Text returns the textual value and false for numeric answers.
func (v AnswerValue) Text() (string, bool) {
	return v.text, !v.numeric
}

// Number returns the numeric value and false for textual answers.
func (v AnswerValue) Number() (float64, bool) {
	return v.number, v.numeric
}

// Matches reports whether the answer equals a correct option. Numbers never match text.
func (v AnswerValue) Matches(option string) bool {
	return !v.numeric && v.text == option
}

func (v AnswerValue) String() string {
	if v.numeric {
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	}
	return v.text
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.numeric {
		return json.Marshal(v.number)
	}
	return json.Marshal(v.text)
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("empty answer value")
	}
	if bytes.Equal(data, []byte("null")) {
		return errors.New("answer value must not be null")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextValue(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("answer value must be a string or a number")
	}
	*v = NumberValue(n)
	return nil
}

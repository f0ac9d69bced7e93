package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FormValue accepts a JSON string, number or null and keeps its text.
// Admin forms send numeric inputs either way.
type FormValue string

func (f *FormValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FormValue(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("expected a string or number: %w", err)
		}
		if i, err := n.Int64(); err == nil {
			*f = FormValue(strconv.FormatInt(i, 10))
			return nil
		}
		*f = FormValue(n.String())
	}
	return nil
}

// Ptr returns the text as a pointer, nil when f is nil.
func (f *FormValue) Ptr() *string {
	if f == nil {
		return nil
	}
	s := string(*f)
	return &s
}

// String returns the text, "" when f is nil.
func (f *FormValue) String() string {
	if f == nil {
		return ""
	}
	return string(*f)
}

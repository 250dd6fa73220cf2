// Package extract recovers structured JSON values from raw LLM output.
// Small models frequently wrap JSON in code fences or surround it with
// preamble and commentary, so a bare json.Unmarshal is not enough.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// JSON attempts to parse a value of type T out of a raw text blob.
// Strategies are tried in order, returning the first success:
//  1. the whole blob is valid JSON
//  2. the interior of the first fenced code block is valid JSON
//  3. the substring from the first '{' to the last '}' is valid JSON
//
// The second return value reports whether any strategy succeeded.
// Callers are expected to fall back to a default value when it is false.
func JSON[T any](raw string) (T, bool) {
	if v, ok := tryUnmarshal[T](raw); ok {
		return v, true
	}

	if m := codeFenceRe.FindStringSubmatch(raw); m != nil {
		if v, ok := tryUnmarshal[T](m[1]); ok {
			return v, true
		}
	}

	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first != -1 && last > first {
		if v, ok := tryUnmarshal[T](raw[first : last+1]); ok {
			return v, true
		}
	}

	var zero T
	return zero, false
}

// tryUnmarshal parses one candidate. A literal JSON null is treated as
// a miss: it decodes into the zero value without error, but the caller
// wants its own default in that case.
func tryUnmarshal[T any](candidate string) (T, bool) {
	var v T
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "null" {
		return v, false
	}
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return v, false
	}
	return v, true
}

package util

import (
	"regexp"
	"strings"
)

var codeBlockRe = regexp.MustCompile("(?s)```(?:json)?(.*?)```")

// ExtractJsonFromText pulls the JSON payload out of an LLM reply. Model
// output often wraps JSON in markdown fences or surrounds it with prose,
// so we try the fenced block first and then fall back to the widest
// brace/bracket span.
func ExtractJsonFromText(text string) string {
	if matches := codeBlockRe.FindStringSubmatch(text); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	start := firstIndex(strings.Index(text, "{"), strings.Index(text, "["))
	if start == -1 {
		return text
	}

	end := lastIndex(strings.LastIndex(text, "}"), strings.LastIndex(text, "]"))
	if end > start {
		return text[start : end+1]
	}

	return text
}

func firstIndex(a, b int) int {
	if a == -1 {
		return b
	}
	if b == -1 {
		return a
	}
	if a < b {
		return a
	}
	return b
}

func lastIndex(a, b int) int {
	if a > b {
		return a
	}
	return b
}

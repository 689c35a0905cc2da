package streamparse

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/dealsense/sales-intel/internal/core/domain"
)

var (
	codeFencePattern = regexp.MustCompile("(?s)^\\s*```(?:json)?\\s*(.*?)\\s*```\\s*$")
	objectPattern    = regexp.MustCompile(`(?s)\{.*\}`)
	arrayPattern     = regexp.MustCompile(`(?s)\[.*\]`)
)

// Recover returns the first valid JSON document that can be salvaged from a
// completed stream buffer. Strategies are tried in order of increasing
// permissiveness; if all fail the result is a typed parse failure, never a
// silently substituted empty object.
func Recover(buffer string) ([]byte, error) {
	trimmed := strings.TrimSpace(buffer)

	if raw, err := tryParse(trimmed); err == nil {
		return raw, nil
	} else if raw, ok := tryPrefixAtSyntaxError(trimmed, err); ok {
		return raw, nil
	}

	if fence := codeFencePattern.FindStringSubmatch(trimmed); fence != nil {
		if raw, err := tryParse(fence[1]); err == nil {
			return raw, nil
		}
	}

	if raw, ok := trySlice(trimmed, "{", "}"); ok {
		return raw, nil
	}
	if raw, ok := trySlice(trimmed, "[", "]"); ok {
		return raw, nil
	}

	if match := objectPattern.FindString(trimmed); match != "" {
		if raw, err := tryParse(match); err == nil {
			return raw, nil
		}
	}
	if match := arrayPattern.FindString(trimmed); match != "" {
		if raw, err := tryParse(match); err == nil {
			return raw, nil
		}
	}

	return nil, domain.ErrParseFailure
}

func tryParse(candidate string) ([]byte, error) {
	var parsed any
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return nil, err
	}
	return []byte(candidate), nil
}

// tryPrefixAtSyntaxError retries the prefix up to the reported error offset;
// trailing garbage after a complete document is the common case.
func tryPrefixAtSyntaxError(candidate string, parseErr error) ([]byte, bool) {
	var syntaxErr *json.SyntaxError
	if !errors.As(parseErr, &syntaxErr) {
		return nil, false
	}
	offset := int(syntaxErr.Offset)
	if offset <= 0 || offset > len(candidate) {
		return nil, false
	}
	// Offset counts bytes read including the offending one; try both sides.
	for _, end := range []int{offset, offset - 1} {
		if end <= 0 {
			continue
		}
		if raw, err := tryParse(strings.TrimSpace(candidate[:end])); err == nil {
			return raw, true
		}
	}
	return nil, false
}

func trySlice(candidate, opening, closing string) ([]byte, bool) {
	start := strings.Index(candidate, opening)
	end := strings.LastIndex(candidate, closing)
	if start < 0 || end <= start {
		return nil, false
	}
	raw, err := tryParse(candidate[start : end+1])
	return raw, err == nil
}

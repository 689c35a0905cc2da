// Package streamparse reconciles a token-by-token text stream from a
// generation service into a continuously-updating structured result: a
// permissive per-field scan while the stream is open, and a strict parse
// with layered recovery once it closes.
package streamparse

import "strings"

// Aggregator owns the accumulated buffer of one in-flight generation
// request. Not safe for concurrent use; concurrent requests get independent
// aggregators.
type Aggregator struct {
	fields   []string
	buf      strings.Builder
	snapshot map[string]string
	rawLen   map[string]int
}

func NewAggregator(fields []string) *Aggregator {
	return &Aggregator{
		fields:   fields,
		snapshot: make(map[string]string, len(fields)),
		rawLen:   make(map[string]int, len(fields)),
	}
}

// Append adds one fragment and returns the refreshed best-effort snapshot.
// A field that already shows real content is never regressed to something
// shorter; the final authoritative parse is the only thing allowed to
// overwrite it. Growth is judged on the raw scanned value: unescaping can
// shrink the text (`\n` collapses to one rune) without the value itself
// having gone backwards.
func (a *Aggregator) Append(fragment string) map[string]string {
	a.buf.WriteString(fragment)
	buffer := a.buf.String()

	for _, field := range a.fields {
		raw := scanFieldValue(buffer, field)
		if len(raw) > a.rawLen[field] {
			a.rawLen[field] = len(raw)
			a.snapshot[field] = unescapeForDisplay(raw)
		}
	}
	return a.Snapshot()
}

// Snapshot returns a copy of the current best-effort field values.
func (a *Aggregator) Snapshot() map[string]string {
	out := make(map[string]string, len(a.snapshot))
	for k, v := range a.snapshot {
		out[k] = v
	}
	return out
}

// Buffer returns the full text accumulated so far.
func (a *Aggregator) Buffer() string {
	return a.buf.String()
}

// scanFieldValue extracts the (possibly still open) raw string value of a
// field from a JSON document that is not yet well formed. The value runs
// from the quote after `"<field>": "` to the first quote not preceded by a
// backslash; if the buffer ends first, whatever was scanned is the
// in-progress value. Escapes are left as-is for the caller.
func scanFieldValue(buffer, field string) string {
	start := fieldValueStart(buffer, field)
	if start < 0 {
		return ""
	}

	var value strings.Builder
	for i := start; i < len(buffer); i++ {
		c := buffer[i]
		if c == '"' && buffer[i-1] != '\\' {
			break
		}
		value.WriteByte(c)
	}
	return value.String()
}

func fieldValueStart(buffer, field string) int {
	for _, marker := range []string{`"` + field + `": "`, `"` + field + `":"`} {
		if idx := strings.Index(buffer, marker); idx >= 0 {
			return idx + len(marker)
		}
	}
	return -1
}

var displayUnescaper = strings.NewReplacer(`\n`, "\n", `\"`, `"`)

// unescapeForDisplay handles just enough escaping for a live preview; the
// final parse does full JSON unescaping.
func unescapeForDisplay(s string) string {
	return displayUnescaper.Replace(s)
}

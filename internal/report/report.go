// Package report computes field-by-field diffs between anime snapshots and
// renders them as chat messages with emphasis spans. It is pure: no I/O, no
// persistence. Both the background update job and the interactive Update
// action render through this package.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf16"

	"animetrack/internal/models"
)

// Kind classifies how a field's comparison was rendered
type Kind int

const (
	// KindSingle is a bare value: no previous snapshot, the field was absent
	// previously, or the value is unchanged
	KindSingle Kind = iota
	// KindNumeric is a numeric value with a signed delta
	KindNumeric
	// KindDuration is the elapsed time between two capture timestamps
	KindDuration
	// KindTransition is a non-comparable change rendered "old -> new"
	KindTransition
)

// Field is one metric's classified comparison between two snapshots
type Field struct {
	Name  string
	Kind  Kind
	Value string
	Delta string // set only for KindNumeric
}

// Span marks an emphasized region of a rendered message. Offsets and lengths
// are in UTF-16 code units, the convention Telegram entities use.
type Span struct {
	Offset int
	Length int
	Italic bool // bold when false
}

// Message is a rendered report: plain text plus emphasis spans
type Message struct {
	Text  string
	Spans []Span
}

// Changes compares freshly fetched stats against the latest persisted snapshot
// and renders the update report. prev may be nil for a title with no history;
// every field then shows its bare current value.
func Changes(animeName string, prev *models.Snapshot, curr models.Stats) ([]Field, Message) {
	fields := make([]Field, 0, len(fieldOrder))
	for _, name := range fieldOrder {
		var prevVal any
		if prev != nil {
			prevVal = fieldValue(name, prev.Stats)
		}
		f := classify(prevVal, fieldValue(name, curr))
		f.Name = name
		fields = append(fields, f)
	}

	b := newBuilder()
	b.bold(animeName + ": \n")
	for _, f := range fields {
		b.bold(humanize(f.Name) + ":   ")
		b.plain(" " + f.Value)
		if f.Delta != "" {
			b.italic(" (" + f.Delta + ")")
		}
		b.plain("\n")
	}

	return fields, b.message()
}

// Overview renders the latest snapshot of a title without any comparison
func Overview(s models.Snapshot) Message {
	b := newBuilder()
	b.bold(s.AnimeName + ": \n")
	for _, name := range fieldOrder {
		b.bold(humanize(name) + ":   ")
		b.plain(" " + formatValue(fieldValue(name, s.Stats)) + "\n")
	}
	return b.message()
}

// fieldOrder is the fixed rendering order of metric fields. The capture
// timestamp participates in the diff: its comparison yields the elapsed-time
// line.
var fieldOrder = []string{"rank", "mean", "users_all", "users_scored", "status", "updated"}

func fieldValue(name string, s models.Stats) any {
	switch name {
	case "rank":
		if s.Rank == nil {
			return nil
		}
		return *s.Rank
	case "mean":
		return s.Mean
	case "users_all":
		return s.UsersAll
	case "users_scored":
		return s.UsersScored
	case "status":
		return s.Status
	case "updated":
		return s.Updated
	}
	return nil
}

// classify determines how a single field's change is rendered
func classify(prevVal, currVal any) Field {
	if prevVal == nil {
		// No history for this field: show the current value on its own
		return Field{Kind: KindSingle, Value: formatValue(currVal)}
	}

	if pt, ok := prevVal.(time.Time); ok {
		if ct, ok := currVal.(time.Time); ok {
			return Field{Kind: KindDuration, Value: formatElapsed(ct.Sub(pt))}
		}
	}

	if pi, pok := prevVal.(int64); pok {
		if ci, cok := currVal.(int64); cok {
			return Field{
				Kind:  KindNumeric,
				Value: groupInt(ci),
				Delta: signedInt(ci - pi),
			}
		}
	}
	if pf, pok := toFloat(prevVal); pok {
		if cf, cok := toFloat(currVal); cok {
			return Field{
				Kind:  KindNumeric,
				Value: formatValue(currVal),
				Delta: signedFloat(round3(cf - pf)),
			}
		}
	}

	// Values are not comparable (status strings, a vanished rank): show the
	// single value when unchanged, an explicit transition otherwise
	prevStr := formatValue(prevVal)
	currStr := formatValue(currVal)
	if prevStr == currStr {
		return Field{Kind: KindSingle, Value: prevStr}
	}
	return Field{Kind: KindTransition, Value: prevStr + " -> " + currStr}
}

// formatElapsed renders a non-negative time span as "+{d} d, {h} h, {m} m"
func formatElapsed(d time.Duration) string {
	secs := int64(d.Seconds())
	return fmt.Sprintf("+%d d, %d h, %d m", secs/86400, (secs%86400)/3600, (secs%3600)/60)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

// formatValue renders a single value: numbers space-grouped, timestamps to
// second precision, missing values as "-"
func formatValue(v any) string {
	switch n := v.(type) {
	case nil:
		return "-"
	case string:
		return n
	case int64:
		return groupInt(n)
	case float64:
		return groupFloat(n)
	case time.Time:
		return n.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprint(v)
}

func signedInt(n int64) string {
	s := groupInt(n)
	if n >= 0 {
		return "+" + s
	}
	return s
}

func signedFloat(f float64) string {
	s := groupFloat(f)
	if f >= 0 {
		return "+" + s
	}
	return s
}

// groupInt formats an integer with a space between each group of thousands
func groupInt(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var groups []string
	for len(s) > 3 {
		groups = append([]string{s[len(s)-3:]}, groups...)
		s = s[:len(s)-3]
	}
	groups = append([]string{s}, groups...)
	out := strings.Join(groups, " ")
	if neg {
		out = "-" + out
	}
	return out
}

// groupFloat formats a float in its shortest decimal form with the integer
// part space-grouped
func groupFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}
	n, _ := strconv.ParseInt(intPart, 10, 64)
	out := groupInt(n)
	if neg {
		out = "-" + out
	}
	if hasFrac {
		out += "." + fracPart
	}
	return out
}

// humanize turns a field name into its display label: underscores to spaces,
// first letter capitalized
func humanize(name string) string {
	label := strings.ReplaceAll(name, "_", " ")
	runes := []rune(label)
	if len(runes) > 0 {
		runes[0] = unicode.ToUpper(runes[0])
	}
	return string(runes)
}

// builder assembles a message while tracking UTF-16 offsets for spans
type builder struct {
	text  strings.Builder
	pos   int
	spans []Span
}

func newBuilder() *builder {
	return &builder{}
}

func (b *builder) plain(s string) {
	b.text.WriteString(s)
	b.pos += utf16Len(s)
}

func (b *builder) bold(s string) {
	b.spans = append(b.spans, Span{Offset: b.pos, Length: utf16Len(s)})
	b.plain(s)
}

func (b *builder) italic(s string) {
	b.spans = append(b.spans, Span{Offset: b.pos, Length: utf16Len(s), Italic: true})
	b.plain(s)
}

func (b *builder) message() Message {
	return Message{Text: b.text.String(), Spans: b.spans}
}

func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

package highlight

import (
	"strings"
)

// Span is a run of source bytes painted by one rule. Rule is empty for text
// that only carries the base style.
type Span struct {
	Start int
	End   int
	Rule  string
}

type run struct {
	start, end int
	rule       int
}

// Spans splits src into contiguous runs, one per change of winning rule.
func (r Ruleset) Spans(src string) []Span {
	runs := r.runs(src)
	spans := make([]Span, len(runs))
	for i, rn := range runs {
		spans[i] = Span{Start: rn.start, End: rn.end}
		if rn.rule >= 0 {
			spans[i].Rule = r.rules[rn.rule].Name
		}
	}
	return spans
}

// Render returns src with ANSI styles applied. With colour disabled the
// source is returned unchanged.
func (r Ruleset) Render(src string, colour bool) string {
	if !colour {
		return src
	}
	var b strings.Builder
	for _, rn := range r.runs(src) {
		style := r.base
		if rn.rule >= 0 {
			style = r.rules[rn.rule].Style
		}
		// Styles are closed at every newline.
		for _, line := range strings.SplitAfter(src[rn.start:rn.end], "\n") {
			body := strings.TrimSuffix(line, "\n")
			if body != "" {
				b.WriteString(style.Sprint(body))
			}
			if len(body) != len(line) {
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}

func (r Ruleset) runs(src string) []run {
	if src == "" {
		return nil
	}
	owner := make([]int, len(src))
	for i := range owner {
		owner[i] = -1
	}
	for idx, rule := range r.rules {
		if rule.Pattern == nil {
			continue
		}
		for _, loc := range rule.Pattern.FindAllStringIndex(src, -1) {
			for b := loc[0]; b < loc[1]; b++ {
				owner[b] = idx
			}
		}
	}

	var out []run
	start := 0
	for i := 1; i <= len(src); i++ {
		if i < len(src) && owner[i] == owner[start] {
			continue
		}
		out = append(out, run{start: start, end: i, rule: owner[start]})
		start = i
	}
	return out
}

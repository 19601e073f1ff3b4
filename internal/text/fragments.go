package text

import (
	"strings"
)

// Combine merges consecutive small fragments into larger ones under the
// extraction sizing hints: fragments keep accumulating while the current
// piece is under combineUnder, a piece is closed once it reaches newAfter
// (soft limit), and max is a hard cap enforced by splitting oversize input.
// Pieces are joined with a blank line to keep paragraph boundaries visible.
func Combine(fragments []string, combineUnder, newAfter, max int) []string {
	var out []string
	var cur strings.Builder

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}

	for _, frag := range fragments {
		frag = strings.TrimSpace(frag)
		if frag == "" {
			continue
		}
		for _, piece := range SplitOversize(frag, max) {
			switch {
			case cur.Len() == 0:
				cur.WriteString(piece)
			case cur.Len() < combineUnder && cur.Len()+2+len(piece) <= max:
				cur.WriteString("\n\n")
				cur.WriteString(piece)
			default:
				flush()
				cur.WriteString(piece)
			}
			if cur.Len() >= newAfter {
				flush()
			}
		}
	}
	flush()

	return out
}

// SplitOversize splits text into pieces no longer than max bytes, breaking
// on paragraph boundaries first, then lines, then words. A single word
// longer than max is cut mid-word as a last resort.
func SplitOversize(s string, max int) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if max <= 0 || len(s) <= max {
		return []string{s}
	}
	return splitBySeparators(s, max, []string{"\n\n", "\n", " "})
}

func splitBySeparators(s string, max int, seps []string) []string {
	if len(s) <= max {
		return []string{s}
	}
	if len(seps) == 0 {
		return hardCut(s, max)
	}

	sep := seps[0]
	parts := strings.Split(s, sep)

	var out []string
	var cur strings.Builder
	flush := func() {
		if str := strings.TrimSpace(cur.String()); str != "" {
			out = append(out, str)
		}
		cur.Reset()
	}

	for _, p := range parts {
		if len(p) > max {
			flush()
			out = append(out, splitBySeparators(p, max, seps[1:])...)
			continue
		}
		add := len(p)
		if cur.Len() > 0 {
			add += len(sep)
		}
		if cur.Len()+add > max {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteString(sep)
		}
		cur.WriteString(p)
	}
	flush()

	return out
}

func hardCut(s string, max int) []string {
	var out []string
	for len(s) > max {
		out = append(out, s[:max])
		s = s[max:]
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}

package srt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tarjama/api/internal/model"
)

// DefaultSegmentDuration is the synthesized length, in seconds, of a segment
// whose end cannot be derived from the next segment's start.
const DefaultSegmentDuration = 3

var timestampRe = regexp.MustCompile(`(\d{2}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})[,.](\d{3})`)

// Parse converts SubRip text into editing segments. Blocks are separated by
// blank lines; a block needs a sequence line, a timestamp line, and at least
// one text line. Blocks without a recognizable timestamp are dropped silently.
func Parse(text string) []model.Segment {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	blocks := regexp.MustCompile(`\n\s*\n`).Split(strings.TrimSpace(normalized), -1)

	var segments []model.Segment
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 3 {
			continue
		}

		m := timestampRe.FindStringSubmatch(lines[1])
		if m == nil {
			continue
		}

		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		sec, _ := strconv.Atoi(m[3])
		start := h*3600 + min*60 + sec

		body := strings.TrimSpace(strings.Join(lines[2:], "\n"))
		if body == "" {
			continue
		}

		segments = append(segments, model.Segment{
			Time: FormatClock(start),
			Text: body,
		})
	}

	return segments
}

// Format renders segments as SubRip text. Each segment ends where the next
// one starts; the last segment, and any segment whose successor does not
// start after it, gets DefaultSegmentDuration.
func Format(segments []model.Segment) string {
	var b strings.Builder

	index := 0
	for i, seg := range segments {
		start, err := ParseClock(seg.Time)
		if err != nil {
			continue
		}

		end := start + DefaultSegmentDuration
		if i+1 < len(segments) {
			if next, err := ParseClock(segments[i+1].Time); err == nil && next > start {
				end = next
			}
		}

		index++
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", index, formatTimestamp(start), formatTimestamp(end), seg.Text)
	}

	return b.String()
}

// ParseClock parses the compact editing form "M:SS" or "H:MM:SS" into seconds.
func ParseClock(clock string) (int, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", clock)
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time %q", clock)
		}
		total = total*60 + n
	}

	return total, nil
}

// FormatClock renders seconds in the compact editing form: "M:SS" under an
// hour, "H:MM:SS" from an hour up.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func formatTimestamp(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d,000", h, m, s)
}

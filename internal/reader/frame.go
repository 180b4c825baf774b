// internal/reader/frame.go
package reader

import (
	"fmt"

	"github.com/tamzrod/east-ups-bridge/internal/profile"
)

// Frame holds the raw words of one complete poll cycle, indexed by the spans
// that produced them.
type Frame struct {
	spans []profile.Span
	words [][]uint16
}

// NewFrame builds a frame from spans and their word payloads. Words must be
// parallel to spans.
func NewFrame(spans []profile.Span, words [][]uint16) *Frame {
	return &Frame{spans: spans, words: words}
}

// Slice returns the words backing a register spec. A spec whose address or
// width falls outside every span is a profile/plan mismatch, a defect rather
// than a device condition, and fails loudly.
func (f *Frame) Slice(table profile.Table, addr, width uint16) ([]uint16, error) {
	if width == 0 {
		return nil, fmt.Errorf("frame: zero-width slice at %s %d", table, addr)
	}
	for i, span := range f.spans {
		if span.Table != table {
			continue
		}
		if addr < span.Start || uint32(addr)+uint32(width)-1 > uint32(span.End()) {
			continue
		}
		if i >= len(f.words) {
			return nil, fmt.Errorf("frame: span %s %d+%d has no payload", span.Table, span.Start, span.Quantity)
		}
		off := addr - span.Start
		return f.words[i][off : off+width], nil
	}
	return nil, fmt.Errorf("frame: no span covers %s registers %d+%d", table, addr, width)
}

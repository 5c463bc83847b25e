package layout

import (
	"testing"

	"github.com/ByLCY/rollingdot/segment"
)

func uniform(units []segment.Unit, w float64) []float64 {
	adv := make([]float64, len(units))
	for i := range adv {
		adv[i] = w
	}
	return adv
}

func TestFlowSingleLine(t *testing.T) {
	units, _ := segment.Segment("Rent anything, anywhere.")
	boxes, term := Flow(units, uniform(units, 10), Plan{}, FlowOptions{Width: 1000, LineHeight: 40, TerminatorWidth: 5})
	for i, b := range boxes {
		if b.Y != 0 || b.X != float64(i)*10 {
			t.Fatalf("unit %d misplaced: %+v", i, b)
		}
	}
	if term.X != 230 || term.Y != 0 || term.Width != 5 {
		t.Fatalf("terminator box mismatch: %+v", term)
	}
}

func TestFlowForcedBreaksCollapseSpaces(t *testing.T) {
	units, _ := segment.Segment("Rent anything, anywhere.")
	plan := DefaultPolicy().Plan(units, Mobile)
	boxes, term := Flow(units, uniform(units, 10), plan, FlowOptions{Width: 1000, LineHeight: 40})
	if boxes[4].Width != 0 || boxes[4].Y != 0 {
		t.Fatalf("space before a forced break must collapse on the previous line: %+v", boxes[4])
	}
	if boxes[5].X != 0 || boxes[5].Y != 40 {
		t.Fatalf("'anything,' must start line 2: %+v", boxes[5])
	}
	if boxes[14].Width != 0 || boxes[15].X != 0 || boxes[15].Y != 80 {
		t.Fatalf("'anywhere' must start line 3: %+v %+v", boxes[14], boxes[15])
	}
	if term.Y != 80 || term.X != 80 {
		t.Fatalf("terminator must follow the last word: %+v", term)
	}
	lines := GroupLines(toGlyphs(boxes), DefaultLineTolerance)
	if len(lines) != 3 || lines[0].Last().Right() != 40 {
		t.Fatalf("collapsed space must not extend the line: %+v", lines)
	}
}

func TestFlowWrapsAtWidth(t *testing.T) {
	units, _ := segment.Segment("aa bb cc")
	boxes, _ := Flow(units, uniform(units, 10), Plan{}, FlowOptions{Width: 50, LineHeight: 10})
	if boxes[4].Y != 0 || boxes[4].Right() != 50 {
		t.Fatalf("'bb' fits exactly on line 1: %+v", boxes[4])
	}
	if boxes[5].Width != 0 || boxes[6].X != 0 || boxes[6].Y != 10 {
		t.Fatalf("'cc' must wrap: %+v %+v", boxes[5], boxes[6])
	}
}

func TestFlowTerminatorStaysWithLastWord(t *testing.T) {
	units, _ := segment.Segment("aa bb.")
	boxes, term := Flow(units, uniform(units, 10), Plan{}, FlowOptions{Width: 50, LineHeight: 10, TerminatorWidth: 5})
	if boxes[3].Y != 10 || term.Y != 10 || term.X != 20 {
		t.Fatalf("last word and terminator must wrap together: %+v %+v", boxes[3], term)
	}
}

func TestFlowSplitsLongWord(t *testing.T) {
	units, _ := segment.Segment("abcdefgh")
	boxes, _ := Flow(units, uniform(units, 10), Plan{}, FlowOptions{Width: 30, LineHeight: 10})
	want := []float64{0, 0, 0, 10, 10, 10, 20, 20}
	for i, b := range boxes {
		if b.Y != want[i] || b.Right() > 30 {
			t.Fatalf("unit %d: %+v", i, b)
		}
	}
}

func toGlyphs(boxes []Box) []Glyph {
	out := make([]Glyph, len(boxes))
	for i, b := range boxes {
		out[i] = Glyph{Box: b, Index: i}
	}
	return out
}

// Package mocap holds the marker frame table produced from a motion-capture
// export, and the loaders that build it from CSV, XLSX and TRC files.
package mocap

import (
	"fmt"
	"math"
)

// Point3 is a marker position in capture coordinates (Vicon is z-up).
type Point3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Axis returns the named coordinate. ok is false for anything but X, Y or Z.
func (p Point3) Axis(name string) (v float64, ok bool) {
	switch name {
	case "X":
		return p.X, true
	case "Y":
		return p.Y, true
	case "Z":
		return p.Z, true
	}
	return 0, false
}

func (p *Point3) set(axis string, v float64) {
	switch axis {
	case "X":
		p.X = v
	case "Y":
		p.Y = v
	case "Z":
		p.Z = v
	}
}

func (p Point3) finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsNaN(p.Z) &&
		!math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0) && !math.IsInf(p.Z, 0)
}

// Axes lists the coordinate columns every marker carries.
var Axes = []string{"X", "Y", "Z"}

// MarkerSample maps marker names to their position in one frame.
type MarkerSample map[string]Point3

// Frame is one capture sample. Number is 1-based.
type Frame struct {
	Number  int
	Markers MarkerSample
}

// FrameSeries is the full capture, ordered by frame number.
type FrameSeries struct {
	Frames []Frame

	// FrameRate is the capture rate declared by the file, 0 when the format
	// does not carry one (CSV and XLSX exports).
	FrameRate float64
	// Units is the coordinate unit declared by the file, empty when unknown.
	Units string
	// Source is the path the series was loaded from.
	Source string
}

// Len returns the number of frames.
func (s *FrameSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Frames)
}

// Numbers returns the frame numbers in order.
func (s *FrameSeries) Numbers() []int {
	out := make([]int, len(s.Frames))
	for i, f := range s.Frames {
		out[i] = f.Number
	}
	return out
}

// Marker returns the position of name in the i-th frame (0-based slice index).
func (s *FrameSeries) Marker(i int, name string) (Point3, error) {
	if i < 0 || i >= len(s.Frames) {
		return Point3{}, &DataError{Reason: fmt.Sprintf("frame index %d out of range", i)}
	}
	f := s.Frames[i]
	p, ok := f.Markers[name]
	if !ok {
		return Point3{}, &DataError{Reason: "missing marker", Marker: name, Frame: f.Number}
	}
	return p, nil
}

// Validate checks the series invariants the analysis relies on: at least one
// frame, frame numbers 1..N in order, and every marker in set present with
// finite coordinates in every frame.
func (s *FrameSeries) Validate(set MarkerSet) error {
	if s.Len() == 0 {
		return &DataError{Reason: "empty frame series"}
	}
	required := set.All()
	for i, f := range s.Frames {
		if f.Number != i+1 {
			return &DataError{
				Reason: fmt.Sprintf("frame numbers must be contiguous from 1, expected %d got %d", i+1, f.Number),
				Frame:  f.Number,
			}
		}
		for _, name := range required {
			p, ok := f.Markers[name]
			if !ok {
				return &DataError{Reason: "missing marker", Marker: name, Frame: f.Number}
			}
			if !p.finite() {
				return &DataError{Reason: "non-finite coordinate", Marker: name, Frame: f.Number}
			}
		}
	}
	return nil
}

// MarkerSet names the marker groups the analysis reads. Vocabularies differ
// between capture rigs, so the set is configuration rather than a constant.
type MarkerSet struct {
	// Body landmarks averaged into the body centroid.
	Body []string `json:"body" yaml:"body"`
	// Box markers on the lifted object, averaged into the object centroid.
	Box []string `json:"box" yaml:"box"`
	// Desk markers are reserved: required to be present, never read.
	Desk []string `json:"desk,omitempty" yaml:"desk,omitempty"`
	// SpineReference anchors the height calibration.
	SpineReference string `json:"spine_reference" yaml:"spine_reference"`
	// ObjectTop is the marker whose vertical travel calibrates height.
	ObjectTop string `json:"object_top" yaml:"object_top"`
}

// DefaultMarkerSet returns the vocabulary of the reference capture rig.
func DefaultMarkerSet() MarkerSet {
	return MarkerSet{
		Body: []string{
			"sagBilek", "sagDirsek", "sagOmuz", "sagKopr",
			"solBilek", "solDirsek", "solOmuz", "solKopr",
			"omurga1", "omurga2", "omurga3", "omurga4", "omurga5",
		},
		Box:            []string{"side1", "side2", "top"},
		Desk:           []string{"sagOn"},
		SpineReference: "omurga5",
		ObjectTop:      "top",
	}
}

// All returns every marker the set needs, without duplicates, in a stable
// order: body, box, desk, then the reference markers if not already listed.
func (m MarkerSet) All() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(names ...string) {
		for _, n := range names {
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	add(m.Body...)
	add(m.Box...)
	add(m.Desk...)
	add(m.SpineReference, m.ObjectTop)
	return out
}

// Validate checks that the set can drive the analysis.
func (m MarkerSet) Validate() error {
	if len(m.Body) == 0 {
		return fmt.Errorf("marker set: body markers must not be empty")
	}
	if len(m.Box) == 0 {
		return fmt.Errorf("marker set: box markers must not be empty")
	}
	if m.SpineReference == "" {
		return fmt.Errorf("marker set: spine_reference is required")
	}
	if m.ObjectTop == "" {
		return fmt.Errorf("marker set: object_top is required")
	}
	for _, group := range [][]string{m.Body, m.Box, m.Desk} {
		seen := make(map[string]bool, len(group))
		for _, n := range group {
			if n == "" {
				return fmt.Errorf("marker set: empty marker name")
			}
			if seen[n] {
				return fmt.Errorf("marker set: duplicate marker %q", n)
			}
			seen[n] = true
		}
	}
	return nil
}

// Package records defines the typed records decoded from the site's JSON
// data files, plus the few derived views the pages need.
package records

import (
	"errors"
	"sort"

	"finitefield.org/egypt-online-web/internal/schema"
)

// Snapshot is a headline number on the home page.
type Snapshot struct {
	Value   Text `json:"value"`
	Label   Text `json:"label"`
	Caption Text `json:"caption,omitempty"`
}

// Validate implements schema.Validator.
func (s *Snapshot) Validate() error {
	switch {
	case s.Value.Empty():
		return errors.New("empty value")
	case s.Label.Empty():
		return errors.New("empty label")
	}
	return nil
}

// Fact is a short titled paragraph.
type Fact struct {
	Title Text `json:"title"`
	Text  Text `json:"text"`
}

// ISPOffer is an internet provider offer in canonical form.
// Logo may be empty.
type ISPOffer struct {
	Name  Text `json:"name"`
	Logo  Text `json:"logo"`
	Avg   Text `json:"avg"`
	Price Text `json:"price"`
}

// Validate implements schema.Validator.
func (o *ISPOffer) Validate() error {
	switch {
	case o.Name.Empty():
		return errors.New("empty name")
	case o.Avg.Empty():
		return errors.New("empty avg")
	case o.Price.Empty():
		return errors.New("empty price")
	}
	return nil
}

// Milestone is one entry of the timeline.
type Milestone struct {
	Year  Year `json:"year"`
	Title Text `json:"title"`
	Text  Text `json:"text"`
}

// GrowthStat is a KPI tile on the growth page.
type GrowthStat struct {
	Label   Text `json:"label"`
	Value   Text `json:"value"`
	Caption Text `json:"caption,omitempty"`
}

// GrowthType is one slice of the access-type donut, share in percent.
type GrowthType struct {
	Name  Text   `json:"name"`
	Share Number `json:"share"`
}

// GrowthSpeed is one bar of the speed chart.
type GrowthSpeed struct {
	Name Text   `json:"name"`
	Mbps Number `json:"mbps"`
}

// Point is one sample of the penetration series.
type Point struct {
	Year  Year   `json:"year"`
	Value Number `json:"value"`
}

// Member returns doc[key] when doc is a JSON object, nil otherwise.
func Member(doc any, key string) any {
	if m, ok := doc.(map[string]any); ok {
		return m[key]
	}
	return nil
}

// Series extracts the penetration samples from either a bare sequence or an
// object wrapping the sequence under "series".
func Series(doc any) ([]any, error) {
	switch v := doc.(type) {
	case []any:
		return v, nil
	case map[string]any:
		if s, ok := v["series"].([]any); ok {
			return s, nil
		}
	}
	return nil, schema.Invalid("penetration", "must be an array OR an object with a series[] array")
}

// Points validates and decodes the penetration series held by doc.
func Points(doc any) ([]Point, error) {
	series, err := Series(doc)
	if err != nil {
		return nil, err
	}
	recs, err := schema.Point.Ensure(series, "penetration.series")
	if err != nil {
		return nil, err
	}
	return schema.Decode[Point](recs, "penetration.series")
}

// Latest returns the last point in source order. The series is expected to
// be sorted already and is not re-sorted here.
func Latest(points []Point) (Point, bool) {
	if len(points) == 0 {
		return Point{}, false
	}
	return points[len(points)-1], true
}

// TimelineWindow keeps milestones whose year lies in [from, to] and returns
// them in ascending year order. Equal years keep their source order.
func TimelineWindow(ms []Milestone, from, to int) []Milestone {
	out := make([]Milestone, 0, len(ms))
	for _, m := range ms {
		if m.Year.Within(from, to) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

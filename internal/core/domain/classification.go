package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

type Category string

const (
	CategoryTechnical Category = "Technical Documentation"
	CategoryBusiness  Category = "Business Proposal"
	CategoryLegal     Category = "Legal Document"
	CategoryAcademic  Category = "Academic Paper"
	CategoryArticle   Category = "General Article"
	CategoryOther     Category = "Other"
)

// Categories returns the closed category set in canonical order.
func Categories() []Category {
	return []Category{
		CategoryTechnical,
		CategoryBusiness,
		CategoryLegal,
		CategoryAcademic,
		CategoryArticle,
		CategoryOther,
	}
}

func IsKnownCategory(c Category) bool {
	for _, known := range Categories() {
		if known == c {
			return true
		}
	}
	return false
}

type Score struct {
	Category Category
	Value    float64
}

// Distribution is an ordered category -> confidence mapping. It serializes
// as a flat JSON object whose keys keep the slice order.
type Distribution []Score

// FallbackDistribution is the conservative result used whenever
// classification cannot run.
func FallbackDistribution() Distribution {
	return Distribution{{Category: CategoryOther, Value: 1.0}}
}

// SortDescending orders scores by value, ties broken by canonical category order.
func (d Distribution) SortDescending() {
	rank := make(map[Category]int, len(Categories()))
	for i, c := range Categories() {
		rank[c] = i
	}
	sort.SliceStable(d, func(i, j int) bool {
		if d[i].Value != d[j].Value {
			return d[i].Value > d[j].Value
		}
		return rank[d[i].Category] < rank[d[j].Category]
	})
}

func (d Distribution) Top() (Score, bool) {
	if len(d) == 0 {
		return Score{}, false
	}
	return d[0], true
}

func (d Distribution) Get(c Category) (float64, bool) {
	for _, s := range d {
		if s.Category == c {
			return s.Value, true
		}
	}
	return 0, false
}

func (d Distribution) Map() map[Category]float64 {
	out := make(map[Category]float64, len(d))
	for _, s := range d {
		out[s.Category] = s.Value
	}
	return out
}

func (d Distribution) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(s.Category))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal score for %q: %w", s.Category, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *Distribution) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = nil
		return nil
	}
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Distribution, 0, len(raw))
	for k, v := range raw {
		out = append(out, Score{Category: Category(k), Value: v})
	}
	out.SortDescending()
	*d = out
	return nil
}

// Classification carries the distribution plus an explicit marker telling
// whether the classifier actually ran.
type Classification struct {
	Scores   Distribution
	Fallback bool
	Reason   string
}

func FallbackClassification(reason string) Classification {
	return Classification{
		Scores:   FallbackDistribution(),
		Fallback: true,
		Reason:   reason,
	}
}

type ClassificationMethod string

const (
	MethodChunked    ClassificationMethod = "chunked"
	MethodNormalized ClassificationMethod = "normalized"
)

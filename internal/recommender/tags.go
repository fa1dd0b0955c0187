package recommender

import "strings"

type idRange struct{ min, max int }

// tagRanges approximates a tag by problem id for problems whose tags are
// not known.
var tagRanges = map[string]idRange{
	"implementation": {1000, 2000},
	"math":           {1001, 3000},
	"greedy":         {1200, 2500},
	"dp":             {1000, 3000},
	"graph":          {1260, 2000},
	"string":         {1152, 2000},
	"bruteforce":     {1000, 2000},
}

// NormalizeTag lower-cases name, strips underscores and spaces and folds
// common aliases, so "Dynamic Programming", "dynamic_programming" and
// "dp" compare equal.
func NormalizeTag(name string) string {
	key := strings.ToLower(name)
	key = strings.ReplaceAll(key, "_", "")
	key = strings.ReplaceAll(key, " ", "")

	switch {
	case strings.Contains(key, "dynamic") || strings.Contains(key, "programming"):
		return "dp"
	case strings.Contains(key, "brute"):
		return "bruteforce"
	case key == "graphs" || key == "graphtheory":
		return "graph"
	case key == "mathematics":
		return "math"
	}
	return key
}

// tagFilter reports whether a problem matches tag. Known problem tags are
// authoritative; otherwise the id range table decides and unknown tags
// let everything through.
func (m *model) tagFilter(tag string) func(int) bool {
	key := NormalizeTag(tag)
	return func(id int) bool {
		if names, ok := m.tags[id]; ok && len(names) > 0 {
			for _, n := range names {
				if n == key {
					return true
				}
			}
			return false
		}
		if r, ok := tagRanges[key]; ok {
			return r.min <= id && id <= r.max
		}
		return true
	}
}

package solvedac

import "strings"

// Problem is an item of /search/problem.
type Problem struct {
	ProblemID int    `json:"problemId"`
	TitleKo   string `json:"titleKo"`
	Level     int    `json:"level"`
	Tags      []Tag  `json:"tags"`
}

type Tag struct {
	Key          string        `json:"key"`
	DisplayNames []DisplayName `json:"displayNames"`
}

type DisplayName struct {
	Language string `json:"language"`
	Name     string `json:"name"`
	Short    string `json:"short"`
}

// User is an item of /ranking/class.
type User struct {
	Handle string `json:"handle"`
	Class  int    `json:"class"`
	Tier   int    `json:"tier"`
}

type page[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}

func (t Tag) display(lang string) (DisplayName, bool) {
	for _, d := range t.DisplayNames {
		if d.Language == lang {
			return d, true
		}
	}
	return DisplayName{}, false
}

// ShortName is the English short name with spaces turned into
// underscores, falling back to the second display name and then the key.
func (t Tag) ShortName() string {
	short := ""
	if d, ok := t.display("en"); ok {
		short = d.Short
	} else if len(t.DisplayNames) > 1 {
		short = t.DisplayNames[1].Short
	}
	if short == "" {
		short = t.Key
	}
	return strings.ReplaceAll(strings.TrimSpace(short), " ", "_")
}

// EnName is the full English name.
func (t Tag) EnName() string {
	if d, ok := t.display("en"); ok && d.Name != "" {
		return d.Name
	}
	return t.ShortName()
}

// KoName is the Korean name, or the English one when missing.
func (t Tag) KoName() string {
	if d, ok := t.display("ko"); ok && d.Name != "" {
		return d.Name
	}
	return t.EnName()
}

// TagNames returns the short names of every tag on the problem.
func (p Problem) TagNames() []string {
	out := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		if n := t.ShortName(); n != "" {
			out = append(out, n)
		}
	}
	return out
}

package view

import (
	"context"
	"errors"
	"fmt"

	"github.com/psrec/psrec/internal/api"
	"golang.org/x/net/html"
)

const (
	// ProblemURL is the judge page a recommendation links to.
	ProblemURL = "https://www.acmicpc.net/problem/"

	NoChoice      = "no_choice"
	NoChoiceLabel = "선택 안함"
)

var ErrMissingElement = errors.New("view: element handle is nil")

type LoginFetcher interface {
	Login(ctx context.Context) (api.LoginStatus, error)
}

type RecommendationFetcher interface {
	Recommendations(ctx context.Context) ([]api.Recommendation, error)
}

type TagFetcher interface {
	Tags(ctx context.Context) ([]api.Tag, error)
	RecommendationsByTag(ctx context.Context, tag string) ([]api.Recommendation, error)
}

type ScriptFetcher interface {
	RunScript(ctx context.Context) (api.ScriptOutput, error)
}

// fail writes err into slot when there is one and returns it.
func fail(slot *html.Node, err error) error {
	if slot != nil {
		SetText(slot, err.Error())
		SetDisplay(slot, true)
	}
	return err
}

// LoginStatus toggles the profile and login navigation and shows the handle.
type LoginStatus struct {
	Profile *html.Node
	Login   *html.Node
	Handle  *html.Node
	Error   *html.Node
}

func (v LoginStatus) Render(ctx context.Context, f LoginFetcher) error {
	if v.Profile == nil || v.Login == nil || v.Handle == nil {
		return fail(v.Error, ErrMissingElement)
	}
	st, err := f.Login(ctx)
	if err != nil {
		return fail(v.Error, fmt.Errorf("login status: %w", err))
	}
	SetDisplay(v.Profile, st.LoggedIn)
	SetDisplay(v.Login, !st.LoggedIn)
	SetText(v.Handle, st.Handle)
	return nil
}

// RecommendationList appends one block per recommended problem. The
// container is never cleared, so repeated renders append again.
type RecommendationList struct {
	Container *html.Node
	Error     *html.Node
}

func (v RecommendationList) Render(ctx context.Context, f RecommendationFetcher) error {
	if v.Container == nil {
		return fail(v.Error, ErrMissingElement)
	}
	items, err := f.Recommendations(ctx)
	if err != nil {
		return fail(v.Error, fmt.Errorf("recommendations: %w", err))
	}
	appendProblems(v.Container, items)
	return nil
}

// ProblemBlock builds the markup of a single recommendation.
func ProblemBlock(r api.Recommendation) *html.Node {
	id := r.ProblemID.String()

	block := NewElement("div", html.Attribute{Key: "class", Val: "problem"})
	span := NewElement("span", html.Attribute{Key: "class", Val: "problem-id"})
	SetText(span, id)
	link := NewElement("a", html.Attribute{Key: "href", Val: ProblemURL + id})
	SetText(link, r.TitleKo)

	block.AppendChild(span)
	block.AppendChild(link)
	return block
}

func appendProblems(container *html.Node, items []api.Recommendation) {
	for _, r := range items {
		container.AppendChild(ProblemBlock(r))
	}
}

// TagSelector fills a select with tags and renders the recommendations of
// the submitted tag into Results.
type TagSelector struct {
	Select   *html.Node
	Results  *html.Node
	Error    *html.Node
	Sentinel bool
}

// Load appends one option per tag in the order received.
func (v TagSelector) Load(ctx context.Context, f TagFetcher) error {
	if v.Select == nil {
		return fail(v.Error, ErrMissingElement)
	}
	tags, err := f.Tags(ctx)
	if err != nil {
		return fail(v.Error, fmt.Errorf("tag list: %w", err))
	}
	if v.Sentinel {
		v.Select.AppendChild(option(NoChoice, NoChoiceLabel))
	}
	for _, t := range tags {
		v.Select.AppendChild(option(t.Value(), t.Ko))
	}
	return nil
}

func option(value, label string) *html.Node {
	o := NewElement("option", html.Attribute{Key: "value", Val: value})
	SetText(o, label)
	return o
}

// Submit clears Results, posts tag and renders the response. An empty or
// sentinel tag is sent as is.
func (v TagSelector) Submit(ctx context.Context, f TagFetcher, tag string) error {
	if v.Results == nil {
		return fail(v.Error, ErrMissingElement)
	}
	Clear(v.Results)
	items, err := f.RecommendationsByTag(ctx, tag)
	if err != nil {
		return fail(v.Error, fmt.Errorf("recommendations for %q: %w", tag, err))
	}
	appendProblems(v.Results, items)
	return nil
}

// Selected returns the value of the selected option, defaulting to the first.
func (v TagSelector) Selected() string {
	if v.Select == nil {
		return ""
	}
	options := Children(v.Select, "option")
	for _, o := range options {
		if _, ok := Attr(o, "selected"); ok {
			val, _ := Attr(o, "value")
			return val
		}
	}
	if len(options) == 0 {
		return ""
	}
	val, _ := Attr(options[0], "value")
	return val
}

// Choose marks the option with value as selected. It reports whether one matched.
func (v TagSelector) Choose(value string) bool {
	if v.Select == nil {
		return false
	}
	found := false
	for _, o := range Children(v.Select, "option") {
		RemoveAttr(o, "selected")
		if val, _ := Attr(o, "value"); val == value && !found {
			SetAttr(o, "selected", "")
			found = true
		}
	}
	return found
}

// ScriptOutput appends each line the remote script returns to List.
type ScriptOutput struct {
	List  *html.Node
	Error *html.Node
}

func (v ScriptOutput) Run(ctx context.Context, f ScriptFetcher) error {
	if v.List == nil {
		return fail(v.Error, ErrMissingElement)
	}
	out, err := f.RunScript(ctx)
	if err != nil {
		return fail(v.Error, fmt.Errorf("run script: %w", err))
	}
	for _, item := range out.Items {
		li := NewElement("li")
		SetText(li, item)
		v.List.AppendChild(li)
	}
	return nil
}

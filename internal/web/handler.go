package web

import (
	"bytes"
	"context"
	"embed"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/psrec/psrec/internal/api"
	"github.com/psrec/psrec/internal/user"
	"github.com/psrec/psrec/internal/view"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

//go:embed templates/*.html
var templates embed.FS

const maxRuns = 10

type Options struct {
	// BaseURL of the JSON API. Empty selects InProcessBaseURL.
	BaseURL   string
	Transport http.RoundTripper
	Timeout   time.Duration
}

// Handler renders the HTML pages. Every dynamic part of a page is filled by
// a view renderer calling the JSON API with the visitor's cookies.
type Handler struct {
	log     *zap.Logger
	baseURL string
	http    *http.Client
}

func NewHandler(log *zap.Logger, opts Options) *Handler {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = InProcessBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Handler{
		log:     log,
		baseURL: baseURL,
		http:    &http.Client{Transport: opts.Transport, Timeout: timeout},
	}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/", h.index)
	app.Get("/search", h.search)
	app.Post("/search", h.search)
	app.Get("/demo", h.demo)
	app.Post("/demo", h.demo)
	app.Get("/login", h.loginPage)
}

func (h *Handler) client(c *fiber.Ctx) *api.Client {
	cookie := string(c.Request().Header.Peek(fiber.HeaderCookie))
	return api.New(h.baseURL, api.WithHTTPClient(h.http), api.WithHeader(fiber.HeaderCookie, cookie))
}

func page(name string) (*html.Node, error) {
	f, err := templates.Open("templates/" + name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return view.Parse(f)
}

func loginView(doc *html.Node) view.LoginStatus {
	return view.LoginStatus{
		Profile: view.ByID(doc, "profile_nav"),
		Login:   view.ByID(doc, "login_nav"),
		Handle:  view.ByID(doc, "handle"),
		Error:   view.ByID(doc, "login_error"),
	}
}

func (h *Handler) index(c *fiber.Ctx) error {
	doc, err := page("index.html")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	ctx := c.UserContext()
	client := h.client(c)
	recs := view.RecommendationList{
		Container: view.ByID(doc, "recommendations"),
		Error:     view.ByID(doc, "recommendations_error"),
	}

	var g errgroup.Group
	g.Go(func() error { return loginView(doc).Render(ctx, client) })
	g.Go(func() error { return recs.Render(ctx, client) })
	h.logRender("/", g.Wait())

	return h.send(c, doc)
}

func (h *Handler) search(c *fiber.Ctx) error {
	doc, err := page("search.html")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	ctx := c.UserContext()
	client := h.client(c)
	submitted := c.Method() == fiber.MethodPost
	tag := strings.Clone(c.FormValue("tag"))
	selector := view.TagSelector{
		Select:   view.ByID(doc, "tag"),
		Results:  view.ByID(doc, "results"),
		Error:    view.ByID(doc, "tag_error"),
		Sentinel: true,
	}

	var g errgroup.Group
	g.Go(func() error { return loginView(doc).Render(ctx, client) })
	g.Go(func() error { return h.selectTag(ctx, client, selector, submitted, tag) })
	h.logRender("/search", g.Wait())

	return h.send(c, doc)
}

func (h *Handler) selectTag(ctx context.Context, client *api.Client, selector view.TagSelector, submitted bool, tag string) error {
	if err := selector.Load(ctx, client); err != nil {
		return err
	}
	if !submitted {
		return nil
	}
	selector.Choose(tag)
	return selector.Submit(ctx, client, tag)
}

func (h *Handler) demo(c *fiber.Ctx) error {
	doc, err := page("demo.html")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	if c.Method() == fiber.MethodPost {
		runs, err := strconv.Atoi(c.FormValue("runs", "1"))
		if err != nil || runs < 1 {
			runs = 1
		}
		if runs > maxRuns {
			runs = maxRuns
		}

		out := view.ScriptOutput{List: view.ByID(doc, "ulist"), Error: view.ByID(doc, "run_error")}
		client := h.client(c)
		for i := 0; i < runs; i++ {
			if err := out.Run(c.UserContext(), client); err != nil {
				h.logRender("/demo", err)
				break
			}
		}
	}

	return h.send(c, doc)
}

func (h *Handler) loginPage(c *fiber.Ctx) error {
	doc, err := page("login.html")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	if next := view.ByID(doc, "next"); next != nil {
		view.SetAttr(next, "value", user.SafeNext(c.Query("next")))
	}
	return h.send(c, doc)
}

func (h *Handler) send(c *fiber.Ctx, doc *html.Node) error {
	var buf bytes.Buffer
	if err := view.Render(&buf, doc); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *Handler) logRender(path string, err error) {
	if err != nil {
		h.log.Warn("page rendered with errors", zap.String("page", path), zap.Error(err))
	}
}

// Package feed renders the published blog and changelog entries as an
// Atom document.
package feed

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/feeds"

	"github.com/opsboard/opsboard/internal/httpx"
	"github.com/opsboard/opsboard/internal/store"
)

const defaultLimit = 50

// Renderer builds the feed document from stored posts.
type Renderer struct {
	posts   store.PostStore
	baseURL string
	title   string
	logger  *slog.Logger
}

func NewRenderer(posts store.PostStore, baseURL, title string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		posts:   posts,
		baseURL: strings.TrimRight(baseURL, "/"),
		title:   title,
		logger:  logger,
	}
}

// Render produces the Atom XML for the newest published posts.
func (r *Renderer) Render(req *http.Request) (string, error) {
	posts, err := r.posts.ListPublishedPosts(req.Context(), defaultLimit)
	if err != nil {
		return "", fmt.Errorf("failed to list posts: %w", err)
	}

	f := &feeds.Feed{
		Title: r.title,
		Link:  &feeds.Link{Href: r.baseURL},
		Id:    r.baseURL + "/feed.xml",
	}
	if len(posts) > 0 {
		f.Updated = posts[0].PublishedAt
	}

	for _, p := range posts {
		section := "blog"
		if p.Kind == store.PostChangelog {
			section = "changelog"
		}
		f.Items = append(f.Items, &feeds.Item{
			Id:          r.baseURL + "/" + section + "/" + p.Slug,
			Title:       p.Title,
			Link:        &feeds.Link{Href: r.baseURL + "/" + section + "/" + p.Slug},
			Description: p.Summary,
			Content:     p.Body,
			Created:     p.PublishedAt,
		})
	}

	atom, err := f.ToAtom()
	if err != nil {
		return "", fmt.Errorf("failed to render feed: %w", err)
	}
	return atom, nil
}

// RegisterRoutes mounts the public feed endpoint.
func RegisterRoutes(reg *httpx.Registry, renderer *Renderer) {
	reg.Get("/feed.xml", httpx.RouteDefinition{
		Name:    "feed.atom",
		Summary: "Atom feed of published blog and changelog posts",
		Tags:    []string{"feed"},
		Handler: func(w http.ResponseWriter, r *http.Request, rc *httpx.RequestContext) error {
			atom, err := renderer.Render(r)
			if err != nil {
				return err
			}

			w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write([]byte(atom)); err != nil {
				renderer.logger.Warn("feed write failed", slog.String("error", err.Error()))
			}
			return nil
		},
	})
}

package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/scenecsv/internal/core"
	"github.com/JonMunkholm/scenecsv/internal/profile"
	"github.com/JonMunkholm/scenecsv/internal/scene"
)

// pageData is everything the scene page shows.
type pageData struct {
	Profiles []profile.Profile
	Nodes    []scene.Node
	History  []*core.SpawnResult
}

func (s *Server) handleScenePage(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Profiles: s.service.Profiles(),
		Nodes:    s.service.Scene(),
		History:  s.service.History(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := scenePage(data).Render(r.Context(), w); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
	}
}

// scenePage renders the full page.
func scenePage(d pageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &htmlWriter{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>scenecsv</title>`)
		p.raw(`<style>body{font-family:sans-serif;margin:2rem}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.25rem .5rem;text-align:left}.err{color:#b00}</style>`)
		p.raw(`</head><body><h1>Scene</h1>`)

		if err := profileList(d.Profiles).Render(ctx, w); err != nil {
			return err
		}
		if err := nodeTable(d.Nodes).Render(ctx, w); err != nil {
			return err
		}
		if err := historyTable(d.History).Render(ctx, w); err != nil {
			return err
		}

		p.raw(`</body></html>`)
		return p.err
	})
}

func profileList(profiles []profile.Profile) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &htmlWriter{w: w}
		p.raw(`<section id="profiles"><h2>Profiles</h2>`)
		if len(profiles) == 0 {
			p.raw(`<p>No profiles loaded.</p></section>`)
			return p.err
		}
		p.raw(`<ul>`)
		for _, pr := range profiles {
			p.raw(`<li><strong>`)
			p.text(pr.Name)
			p.raw(`</strong> from <code>`)
			p.text(pr.Source)
			p.raw(`</code> (`)
			p.text(fmt.Sprintf("%d bindings, policy %s", len(pr.Bindings), pr.Policy))
			p.raw(`)`)
			if pr.Description != "" {
				p.raw(` - `)
				p.text(pr.Description)
			}
			p.raw(`</li>`)
		}
		p.raw(`</ul></section>`)
		return p.err
	})
}

func nodeTable(nodes []scene.Node) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &htmlWriter{w: w}
		p.raw(`<section id="scene"><h2>Placed objects (`)
		p.text(fmt.Sprint(len(nodes)))
		p.raw(`)</h2>`)
		if len(nodes) == 0 {
			p.raw(`<p>The scene is empty.</p></section>`)
			return p.err
		}
		p.raw(`<table><thead><tr><th>Name</th><th>Prefab</th><th>Position</th><th>Rotation</th></tr></thead><tbody>`)
		for _, n := range nodes {
			p.row(n.Name, n.Prefab.Name, n.Position.String(), n.Rotation.String())
		}
		p.raw(`</tbody></table></section>`)
		return p.err
	})
}

func historyTable(history []*core.SpawnResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &htmlWriter{w: w}
		p.raw(`<section id="history"><h2>Recent spawns</h2>`)
		if len(history) == 0 {
			p.raw(`<p>No spawns yet.</p></section>`)
			return p.err
		}
		p.raw(`<table><thead><tr><th>When</th><th>Profile</th><th>Placed</th><th>Unresolved</th><th>Skipped</th><th>Result</th></tr></thead><tbody>`)
		for _, h := range history {
			result := "ok"
			if h.Error != "" {
				result = core.FormatUserError(fmt.Errorf("%s", h.Error))
			}
			p.row(
				h.StartedAt.Format(time.RFC3339),
				h.Profile,
				fmt.Sprint(len(h.Placed)),
				strings.Join(h.Unresolved, ", "),
				fmt.Sprint(len(h.Skipped)),
				result,
			)
		}
		p.raw(`</tbody></table></section>`)
		return p.err
	})
}

// htmlWriter writes markup and escaped text, keeping the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (p *htmlWriter) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *htmlWriter) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *htmlWriter) row(cells ...string) {
	p.raw(`<tr>`)
	for _, c := range cells {
		p.raw(`<td>`)
		p.text(c)
		p.raw(`</td>`)
	}
	p.raw(`</tr>`)
}

// internal/siteconfig/render_test.go
//
// Unit-tests for derived-artifact rendering.
//
// Run: go test ./internal/siteconfig -v

package siteconfig

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestRenderStyleVars(t *testing.T) {
	doc := Document{Brand: Brand{
		Colors:     map[string]string{"primary": "#0052CC", "accent": "#FF5630"},
		FontFamily: "Inter, sans-serif",
	}}

	sheet := string(doc.RenderStyleVars())
	for _, want := range []string{
		"--color-accent: #FF5630;",
		"--color-primary: #0052CC;",
		"--font-family: Inter, sans-serif;",
	} {
		if !strings.Contains(sheet, want) {
			t.Errorf("sheet missing %q:\n%s", want, sheet)
		}
	}

	// Sorted roles keep repeated renders byte-identical.
	if strings.Index(sheet, "--color-accent") > strings.Index(sheet, "--color-primary") {
		t.Errorf("roles not sorted:\n%s", sheet)
	}
	if !bytes.Equal(doc.RenderStyleVars(), doc.RenderStyleVars()) {
		t.Error("render is not deterministic")
	}
}

func TestRenderEmbedSnippet(t *testing.T) {
	doc := Document{
		SchemaVersion: 1,
		Brand:         Brand{Logo: "logo.svg"},
		Integrations:  map[string]map[string]string{"chat": {"widget_id": "w-1"}},
	}

	snippet, err := doc.RenderEmbedSnippet()
	if err != nil {
		t.Fatalf("RenderEmbedSnippet error: %v", err)
	}
	s := string(snippet)
	if !strings.HasPrefix(s, "window.__SITE_CONFIG__ = ") {
		t.Errorf("unexpected snippet prefix: %q", s[:40])
	}
	if !strings.Contains(s, `"widget_id": "w-1"`) {
		t.Errorf("integrations missing from snippet:\n%s", s)
	}
}

func TestRenderContentIndex(t *testing.T) {
	doc := Document{Content: Content{
		Posts:    []Post{{Slug: "launch", Title: "Launch", Body: "long body"}},
		Services: []Service{{Name: "plumbing", Title: "Plumbing"}},
	}}

	blob, err := doc.RenderContentIndex()
	if err != nil {
		t.Fatalf("RenderContentIndex error: %v", err)
	}

	var idx struct {
		Posts []struct {
			Slug  string `json:"slug"`
			Title string `json:"title"`
			Body  string `json:"body"`
		} `json:"posts"`
		Services []struct {
			Name string `json:"name"`
		} `json:"services"`
	}
	if err := json.Unmarshal(blob, &idx); err != nil {
		t.Fatalf("index is not valid JSON: %v", err)
	}
	if len(idx.Posts) != 1 || idx.Posts[0].Slug != "launch" {
		t.Fatalf("unexpected posts: %#v", idx.Posts)
	}
	if idx.Posts[0].Body != "" {
		t.Error("index must carry references, not post bodies")
	}
	if len(idx.Services) != 1 || idx.Services[0].Name != "plumbing" {
		t.Fatalf("unexpected services: %#v", idx.Services)
	}
}

func TestRenderContentIndexEmpty(t *testing.T) {
	var doc Document
	blob, err := doc.RenderContentIndex()
	if err != nil {
		t.Fatalf("RenderContentIndex error: %v", err)
	}
	if strings.Contains(string(blob), "null") {
		t.Errorf("empty sections must render as [], got:\n%s", blob)
	}
}

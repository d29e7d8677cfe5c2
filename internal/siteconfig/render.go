// internal/siteconfig/render.go
//
// Derived-artifact rendering.
//
// Context
// -------
// Some files inside a site's generated-artifact tree are deterministic
// functions of the configuration document: the CSS custom-property sheet,
// the embedded-config snippet read by the site's JavaScript, and the
// content index.  The patch engine regenerates them after any document
// mutation, and again after a rollback, so tree and document never drift.
//
// Output is deliberately stable (sorted keys) so repeated renders of the
// same document are byte-identical.
package siteconfig

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Well-known artifact paths, relative to a site's tree root.
const (
	StyleVarsPath    = "assets/css/variables.css"
	EmbedSnippetPath = "assets/js/site-config.js"
	ContentIndexPath = "content/index.json"
)

// RenderStyleVars produces the `:root` custom-property sheet.  Color roles
// become `--color-<role>`; the font family, when set, becomes
// `--font-family`.
func (d *Document) RenderStyleVars() []byte {
	var b strings.Builder
	b.WriteString("/* Generated from site configuration.  Do not edit by hand. */\n")
	b.WriteString(":root {\n")
	for _, role := range sortedKeys(d.Brand.Colors) {
		fmt.Fprintf(&b, "  --color-%s: %s;\n", role, d.Brand.Colors[role])
	}
	if d.Brand.FontFamily != "" {
		fmt.Fprintf(&b, "  --font-family: %s;\n", d.Brand.FontFamily)
	}
	b.WriteString("}\n")
	return []byte(b.String())
}

// RenderEmbedSnippet produces the JS snippet that exposes brand and
// integration settings to the generated site at runtime.
func (d *Document) RenderEmbedSnippet() ([]byte, error) {
	payload := struct {
		SchemaVersion int                          `json:"schema_version"`
		Brand         Brand                        `json:"brand"`
		Integrations  map[string]map[string]string `json:"integrations,omitempty"`
	}{d.SchemaVersion, d.Brand, d.Integrations}

	blob, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}
	return []byte("window.__SITE_CONFIG__ = " + string(blob) + ";\n"), nil
}

// RenderContentIndex produces the JSON index of posts and services that
// the generated site uses for listings and navigation.
func (d *Document) RenderContentIndex() ([]byte, error) {
	type postRef struct {
		Slug  string `json:"slug"`
		Title string `json:"title,omitempty"`
	}
	type serviceRef struct {
		Name  string `json:"name"`
		Title string `json:"title,omitempty"`
	}

	idx := struct {
		Posts    []postRef    `json:"posts"`
		Services []serviceRef `json:"services"`
	}{
		Posts:    make([]postRef, 0, len(d.Content.Posts)),
		Services: make([]serviceRef, 0, len(d.Content.Services)),
	}
	for _, p := range d.Content.Posts {
		idx.Posts = append(idx.Posts, postRef{Slug: p.Slug, Title: p.Title})
	}
	for _, s := range d.Content.Services {
		idx.Services = append(idx.Services, serviceRef{Name: s.Name, Title: s.Title})
	}

	return json.MarshalIndent(idx, "", "  ")
}

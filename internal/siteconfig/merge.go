// internal/siteconfig/merge.go
//
// Partial-update merging with change reporting.
//
// Context
// -------
// The hot-patch engine applies *partial* updates to a site's document:
// a handful of brand colors, a rewritten hero, one integration section.
// Each merge helper mutates the receiver in place and returns a
// human-readable change list that the engine surfaces to the caller.
// An empty change list means the update was a no-op.
package siteconfig

import (
	"fmt"
	"sort"
	"strings"
)

// ConfigUpdate is the partial update accepted by the `config` patch type.
// Nil or empty fields are left untouched.
type ConfigUpdate struct {
	Colors       map[string]string            `json:"colors,omitempty"`
	Logo         string                       `json:"logo,omitempty"`
	FontFamily   string                       `json:"font_family,omitempty"`
	Hero         *Hero                        `json:"hero,omitempty"`
	Integrations map[string]map[string]string `json:"integrations,omitempty"`
}

// IsZero reports whether the update carries nothing to merge.
func (u ConfigUpdate) IsZero() bool {
	return len(u.Colors) == 0 && u.Logo == "" && u.FontFamily == "" &&
		u.Hero == nil && len(u.Integrations) == 0
}

// MergeConfig folds a partial update into the document and returns the
// list of changes made.
func (d *Document) MergeConfig(u ConfigUpdate) []string {
	var changes []string

	if len(u.Colors) > 0 {
		if d.Brand.Colors == nil {
			d.Brand.Colors = make(map[string]string, len(u.Colors))
		}
		var touched []string
		for _, k := range sortedKeys(u.Colors) {
			if d.Brand.Colors[k] != u.Colors[k] {
				d.Brand.Colors[k] = u.Colors[k]
				touched = append(touched, k)
			}
		}
		if len(touched) > 0 {
			changes = append(changes,
				fmt.Sprintf("Updated brand colors: %s", strings.Join(touched, ", ")))
		}
	}

	if u.Logo != "" && u.Logo != d.Brand.Logo {
		d.Brand.Logo = u.Logo
		changes = append(changes, "Updated brand logo")
	}
	if u.FontFamily != "" && u.FontFamily != d.Brand.FontFamily {
		d.Brand.FontFamily = u.FontFamily
		changes = append(changes, "Updated brand font family")
	}

	if u.Hero != nil {
		if u.Hero.Title != "" && u.Hero.Title != d.Content.Hero.Title {
			d.Content.Hero.Title = u.Hero.Title
			changes = append(changes, "Updated hero title")
		}
		if u.Hero.Subtitle != "" && u.Hero.Subtitle != d.Content.Hero.Subtitle {
			d.Content.Hero.Subtitle = u.Hero.Subtitle
			changes = append(changes, "Updated hero subtitle")
		}
	}

	if len(u.Integrations) > 0 {
		if d.Integrations == nil {
			d.Integrations = make(map[string]map[string]string, len(u.Integrations))
		}
		for _, section := range sortedKeys(u.Integrations) {
			dst := d.Integrations[section]
			if dst == nil {
				dst = make(map[string]string)
				d.Integrations[section] = dst
			}
			var dirty bool
			for k, v := range u.Integrations[section] {
				if dst[k] != v {
					dst[k] = v
					dirty = true
				}
			}
			if dirty {
				changes = append(changes, fmt.Sprintf("Updated integrations: %s", section))
			}
		}
	}

	return changes
}

// UpsertServices replaces or appends service blocks, matching on Name.
func (d *Document) UpsertServices(items []Service) []string {
	var changes []string
	for _, item := range items {
		if item.Name == "" {
			continue
		}
		replaced := false
		for i := range d.Content.Services {
			if d.Content.Services[i].Name == item.Name {
				d.Content.Services[i] = item
				replaced = true
				break
			}
		}
		if replaced {
			changes = append(changes, fmt.Sprintf("Rewrote service: %s", item.Name))
		} else {
			d.Content.Services = append(d.Content.Services, item)
			changes = append(changes, fmt.Sprintf("Added service: %s", item.Name))
		}
	}
	return changes
}

// UpsertPosts replaces or appends blog posts, matching on Slug.
func (d *Document) UpsertPosts(items []Post) []string {
	var changes []string
	for _, item := range items {
		if item.Slug == "" {
			continue
		}
		replaced := false
		for i := range d.Content.Posts {
			if d.Content.Posts[i].Slug == item.Slug {
				d.Content.Posts[i] = item
				replaced = true
				break
			}
		}
		if replaced {
			changes = append(changes, fmt.Sprintf("Rewrote post: %s", item.Slug))
		} else {
			d.Content.Posts = append(d.Content.Posts, item)
			changes = append(changes, fmt.Sprintf("Added post: %s", item.Slug))
		}
	}
	return changes
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

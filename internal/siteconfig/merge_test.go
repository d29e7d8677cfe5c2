// internal/siteconfig/merge_test.go
//
// Unit-tests for partial-update merging and change reporting.
//
// Run: go test ./internal/siteconfig -v

package siteconfig

import (
	"testing"
)

func TestMergeConfigColors(t *testing.T) {
	doc := Document{
		SchemaVersion: 1,
		Brand:         Brand{Colors: map[string]string{"primary": "#111111"}},
	}

	changes := doc.MergeConfig(ConfigUpdate{
		Colors: map[string]string{"primary": "#0052CC"},
	})
	if len(changes) != 1 || changes[0] != "Updated brand colors: primary" {
		t.Fatalf("unexpected changes: %#v", changes)
	}
	if doc.Brand.Colors["primary"] != "#0052CC" {
		t.Errorf("color not merged: %q", doc.Brand.Colors["primary"])
	}
}

func TestMergeConfigColorListSorted(t *testing.T) {
	var doc Document

	changes := doc.MergeConfig(ConfigUpdate{
		Colors: map[string]string{"primary": "#0052CC", "accent": "#FF5630"},
	})
	if len(changes) != 1 || changes[0] != "Updated brand colors: accent, primary" {
		t.Fatalf("unexpected changes: %#v", changes)
	}
}

func TestMergeConfigNoop(t *testing.T) {
	doc := Document{
		Brand: Brand{
			Colors:     map[string]string{"primary": "#0052CC"},
			Logo:       "logo.svg",
			FontFamily: "Inter",
		},
		Content: Content{Hero: Hero{Title: "Welcome"}},
	}

	changes := doc.MergeConfig(ConfigUpdate{
		Colors:     map[string]string{"primary": "#0052CC"},
		Logo:       "logo.svg",
		FontFamily: "Inter",
		Hero:       &Hero{Title: "Welcome"},
	})
	if len(changes) != 0 {
		t.Fatalf("expected no changes, got %#v", changes)
	}
}

func TestMergeConfigHeroAndIntegrations(t *testing.T) {
	var doc Document

	changes := doc.MergeConfig(ConfigUpdate{
		Hero: &Hero{Title: "Hello", Subtitle: "World"},
		Integrations: map[string]map[string]string{
			"analytics": {"tracking_id": "UA-1"},
		},
	})
	want := map[string]bool{
		"Updated hero title":             true,
		"Updated hero subtitle":          true,
		"Updated integrations: analytics": true,
	}
	if len(changes) != len(want) {
		t.Fatalf("unexpected changes: %#v", changes)
	}
	for _, c := range changes {
		if !want[c] {
			t.Errorf("unexpected change entry: %q", c)
		}
	}
	if doc.Integrations["analytics"]["tracking_id"] != "UA-1" {
		t.Errorf("integration not merged: %#v", doc.Integrations)
	}
}

func TestConfigUpdateIsZero(t *testing.T) {
	if !(ConfigUpdate{}).IsZero() {
		t.Error("empty update should be zero")
	}
	if (ConfigUpdate{Logo: "x.svg"}).IsZero() {
		t.Error("update with a logo should not be zero")
	}
}

func TestUpsertServices(t *testing.T) {
	doc := Document{Content: Content{Services: []Service{
		{Name: "plumbing", Title: "Old"},
	}}}

	changes := doc.UpsertServices([]Service{
		{Name: "plumbing", Title: "New"},
		{Name: "heating", Title: "Heating"},
		{Name: ""}, // no name, silently skipped
	})
	if len(changes) != 2 ||
		changes[0] != "Rewrote service: plumbing" ||
		changes[1] != "Added service: heating" {
		t.Fatalf("unexpected changes: %#v", changes)
	}
	if len(doc.Content.Services) != 2 || doc.Content.Services[0].Title != "New" {
		t.Fatalf("services not upserted: %#v", doc.Content.Services)
	}
}

func TestUpsertPosts(t *testing.T) {
	var doc Document

	changes := doc.UpsertPosts([]Post{{Slug: "launch", Title: "Launch"}})
	if len(changes) != 1 || changes[0] != "Added post: launch" {
		t.Fatalf("unexpected changes: %#v", changes)
	}

	changes = doc.UpsertPosts([]Post{{Slug: "launch", Title: "Relaunch"}})
	if len(changes) != 1 || changes[0] != "Rewrote post: launch" {
		t.Fatalf("unexpected changes: %#v", changes)
	}
	if len(doc.Content.Posts) != 1 || doc.Content.Posts[0].Title != "Relaunch" {
		t.Fatalf("posts not upserted: %#v", doc.Content.Posts)
	}
}

func TestNormalize(t *testing.T) {
	var doc Document
	if err := doc.Normalize(); err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if doc.SchemaVersion != SchemaVersion {
		t.Errorf("version not stamped: %d", doc.SchemaVersion)
	}

	future := Document{SchemaVersion: SchemaVersion + 1}
	if err := future.Normalize(); err == nil {
		t.Error("expected error for a future schema version")
	}
}

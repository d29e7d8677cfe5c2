// internal/patch/handler_config.go
//
// `config` patch: partial updates to brand, hero, and integrations.
//
// After merging, the artifacts that are deterministic functions of the
// document—style variables and the embedded-config snippet—are
// regenerated so the live tree matches the stored configuration.
package patch

import (
	"context"
	"errors"

	"github.com/mocher01/lowebi-sub005/internal/siteconfig"
)

func applyConfigPatch(ctx context.Context, pc *Context, opts Options) ([]string, error) {
	update, err := decodeOptions[siteconfig.ConfigUpdate](opts)
	if err != nil {
		return nil, err
	}
	if update.IsZero() {
		return nil, errors.New(
			"config patch requires at least one of colors, logo, font_family, hero, or integrations")
	}

	doc := pc.Site.Config
	changes := doc.MergeConfig(*update)
	if len(changes) == 0 {
		return nil, errors.New("config patch matched the current configuration; nothing to update")
	}

	if err := pc.Store.UpdateSiteConfig(ctx, pc.Site.ID, doc); err != nil {
		return nil, err
	}
	pc.Site.Config = doc

	if err := pc.Tree.WriteFile(pc.Site.ID, siteconfig.StyleVarsPath,
		doc.RenderStyleVars()); err != nil {
		return nil, err
	}
	changes = append(changes, "Regenerated style variables")

	snippet, err := doc.RenderEmbedSnippet()
	if err != nil {
		return nil, err
	}
	if err := pc.Tree.WriteFile(pc.Site.ID, siteconfig.EmbedSnippetPath, snippet); err != nil {
		return nil, err
	}
	changes = append(changes, "Regenerated embedded config")

	return changes, nil
}

// internal/patch/handler_assets.go
//
// `assets` patch: replace named files under assets/ and optionally
// reprocess derived variants through the asset-processing collaborator.
package patch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
)

type assetsOptions struct {
	// Files maps asset names (relative to assets/) to local source paths.
	Files map[string]string `json:"files"`
	// Reprocess runs each replaced asset through the processor.
	Reprocess bool `json:"reprocess"`
}

func applyAssetsPatch(ctx context.Context, pc *Context, opts Options) ([]string, error) {
	o, err := decodeOptions[assetsOptions](opts)
	if err != nil {
		return nil, err
	}
	if len(o.Files) == 0 {
		return nil, errors.New("assets patch requires a files map")
	}

	names := make([]string, 0, len(o.Files))
	for name := range o.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	var changes []string
	for _, name := range names {
		data, err := os.ReadFile(o.Files[name])
		if err != nil {
			return nil, fmt.Errorf("read replacement for %s: %w", name, err)
		}

		rel := path.Join("assets", name)
		if err := pc.Tree.WriteFile(pc.Site.ID, rel, data); err != nil {
			return nil, err
		}
		changes = append(changes, fmt.Sprintf("Replaced asset: %s", name))

		if o.Reprocess && pc.Assets != nil {
			variants, err := pc.Assets.Process(ctx, pc.Site.ID, rel)
			if err != nil {
				return nil, fmt.Errorf("reprocess %s: %w", name, err)
			}
			if len(variants) > 0 {
				changes = append(changes,
					fmt.Sprintf("Regenerated %d variant(s) of %s", len(variants), name))
			}
		}
	}

	return changes, nil
}

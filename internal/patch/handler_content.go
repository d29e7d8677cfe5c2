// internal/patch/handler_content.go
//
// `content` patch: rewrite blog posts and service descriptions, then
// regenerate the content index derived from them.
package patch

import (
	"context"
	"errors"

	"github.com/mocher01/lowebi-sub005/internal/siteconfig"
)

type contentOptions struct {
	Posts    []siteconfig.Post    `json:"posts"`
	Services []siteconfig.Service `json:"services"`
}

func applyContentPatch(ctx context.Context, pc *Context, opts Options) ([]string, error) {
	o, err := decodeOptions[contentOptions](opts)
	if err != nil {
		return nil, err
	}
	if len(o.Posts) == 0 && len(o.Services) == 0 {
		return nil, errors.New("content patch requires posts or services")
	}

	doc := pc.Site.Config
	changes := doc.UpsertPosts(o.Posts)
	changes = append(changes, doc.UpsertServices(o.Services)...)
	if len(changes) == 0 {
		return nil, errors.New("content patch entries had no usable slug or name")
	}

	if err := pc.Store.UpdateSiteConfig(ctx, pc.Site.ID, doc); err != nil {
		return nil, err
	}
	pc.Site.Config = doc

	idx, err := doc.RenderContentIndex()
	if err != nil {
		return nil, err
	}
	if err := pc.Tree.WriteFile(pc.Site.ID, siteconfig.ContentIndexPath, idx); err != nil {
		return nil, err
	}
	changes = append(changes, "Regenerated content index")

	return changes, nil
}

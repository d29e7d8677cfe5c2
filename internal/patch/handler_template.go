// internal/patch/handler_template.go
//
// `template` patch: caller-supplied literal search/replace fixes to named
// files in the generated tree.  Narrow hot-fixes only; anything broader
// belongs in a config patch or a full rebuild.
package patch

import (
	"context"
	"errors"
	"fmt"
)

type templateFix struct {
	File    string `json:"file"`
	Find    string `json:"find"`
	Replace string `json:"replace"`
}

type templateOptions struct {
	Fixes []templateFix `json:"fixes"`
}

func applyTemplatePatch(ctx context.Context, pc *Context, opts Options) ([]string, error) {
	o, err := decodeOptions[templateOptions](opts)
	if err != nil {
		return nil, err
	}
	if len(o.Fixes) == 0 {
		return nil, errors.New("template patch requires a fixes list")
	}

	var changes []string
	for i, fix := range o.Fixes {
		if fix.File == "" || fix.Find == "" {
			return nil, fmt.Errorf("fix %d: file and find are required", i)
		}

		n, err := pc.Tree.ReplaceInFile(pc.Site.ID, fix.File, fix.Find, fix.Replace)
		if err != nil {
			return nil, fmt.Errorf("fix %d (%s): %w", i, fix.File, err)
		}
		if n == 0 {
			return nil, fmt.Errorf("fix %d: pattern not found in %s", i, fix.File)
		}
		changes = append(changes, fmt.Sprintf("Applied %d replacement(s) in %s", n, fix.File))
	}

	return changes, nil
}

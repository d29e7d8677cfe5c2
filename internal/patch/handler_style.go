// internal/patch/handler_style.go
//
// `style` patch: targeted rewrite of custom-property declarations in the
// generated stylesheet.  No document mutation and no full regeneration;
// this exists for quick visual fixes where rebuilding the sheet from the
// configuration would be overkill.
package patch

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/mocher01/lowebi-sub005/internal/siteconfig"
)

type styleOptions struct {
	// Vars maps custom-property names (e.g. "--color-primary") to new
	// CSS values.
	Vars map[string]string `json:"vars"`
}

func applyStylePatch(ctx context.Context, pc *Context, opts Options) ([]string, error) {
	o, err := decodeOptions[styleOptions](opts)
	if err != nil {
		return nil, err
	}
	if len(o.Vars) == 0 {
		return nil, errors.New("style patch requires a vars map")
	}

	data, err := pc.Tree.ReadFile(pc.Site.ID, siteconfig.StyleVarsPath)
	if err != nil {
		return nil, fmt.Errorf("read stylesheet: %w", err)
	}
	sheet := string(data)

	names := make([]string, 0, len(o.Vars))
	for name := range o.Vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var changes []string
	for _, name := range names {
		re, err := regexp.Compile(regexp.QuoteMeta(name) + `\s*:\s*[^;]*;`)
		if err != nil {
			return nil, fmt.Errorf("bad variable name %q: %w", name, err)
		}
		if !re.MatchString(sheet) {
			return nil, fmt.Errorf("style variable not found in stylesheet: %s", name)
		}
		sheet = re.ReplaceAllString(sheet, fmt.Sprintf("%s: %s;", name, o.Vars[name]))
		changes = append(changes, fmt.Sprintf("Updated style variable: %s", name))
	}

	if err := pc.Tree.WriteFile(pc.Site.ID, siteconfig.StyleVarsPath, []byte(sheet)); err != nil {
		return nil, err
	}
	return changes, nil
}

// internal/patch/options.go
//
// Option decoding shared by the handlers.
//
// Options arrive as a free-form map from the CLI or admin API.  Each
// handler decodes them into its own typed struct via a JSON round trip;
// a shape mismatch is an expected domain failure, not a panic.
package patch

import (
	"encoding/json"
	"fmt"
)

// decodeOptions converts the option map into a handler's typed struct.
func decodeOptions[T any](opts Options) (*T, error) {
	blob, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("encode options: %w", err)
	}

	var out T
	if err := json.Unmarshal(blob, &out); err != nil {
		return nil, fmt.Errorf("malformed options: %w", err)
	}
	return &out, nil
}

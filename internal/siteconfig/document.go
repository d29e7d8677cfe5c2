// internal/siteconfig/document.go
//
// Versioned site configuration document.
//
// Context
// -------
// Every generated site carries one configuration document in the `config`
// JSON column of the `sites` table.  The legacy platform treated that
// column as an opaque blob; here it is a typed, versioned structure so
// patch handlers operate on named fields instead of untyped key paths.
// `SchemaVersion` exists to support future migrations of the document
// shape itself.
//
// The document implements driver.Valuer and sql.Scanner, so sqlx reads
// and writes it transparently.  Components that need the *exact* stored
// bytes (backups) bypass the type and read the raw column instead.
//
// Notes
// -----
// • Unknown JSON keys are ignored on scan; legacy documents carry `name`
//   and `domain` keys that live in their own columns now.
// • Oxford commas, two spaces after periods.
package siteconfig

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SchemaVersion is the current document schema version.  Normalize stamps
// it onto documents imported from the legacy platform.
const SchemaVersion = 1

// Document is the full configuration of one generated site.
type Document struct {
	SchemaVersion int                          `json:"schema_version"`
	Brand         Brand                        `json:"brand"`
	Content       Content                      `json:"content"`
	Integrations  map[string]map[string]string `json:"integrations,omitempty"`
}

// Brand holds visual identity settings.  Colors is keyed by role
// (primary, secondary, accent); each value is a CSS color literal.
type Brand struct {
	Colors     map[string]string `json:"colors,omitempty"`
	Logo       string            `json:"logo,omitempty"`
	FontFamily string            `json:"font_family,omitempty"`
}

// Content groups the editable content sections of a site.
type Content struct {
	Hero     Hero      `json:"hero"`
	Services []Service `json:"services,omitempty"`
	Posts    []Post    `json:"posts,omitempty"`
}

// Hero is the landing-section copy.
type Hero struct {
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
}

// Service is one service description block.
type Service struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Post is one blog entry, addressed by slug.
type Post struct {
	Slug  string `json:"slug"`
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

// Normalize stamps the current schema version onto documents that predate
// versioning.  It returns an error for documents from a *future* schema,
// which this binary cannot interpret safely.
func (d *Document) Normalize() error {
	if d.SchemaVersion == 0 {
		d.SchemaVersion = SchemaVersion
	}
	if d.SchemaVersion > SchemaVersion {
		return fmt.Errorf("unsupported config schema version %d (max %d)",
			d.SchemaVersion, SchemaVersion)
	}
	return nil
}

//
// SQL codec
//

// Value marshals the document for storage in the JSON column.
func (d Document) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan decodes the JSON column into the document.
func (d *Document) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Document{}
		return nil
	case []byte:
		if err := json.Unmarshal(v, d); err != nil {
			return err
		}
	case string:
		if err := json.Unmarshal([]byte(v), d); err != nil {
			return err
		}
	default:
		return fmt.Errorf("siteconfig: cannot scan %T into Document", src)
	}
	return d.Normalize()
}

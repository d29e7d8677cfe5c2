// internal/config/model.go
//
// Typed configuration model for the Lowebi control plane.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                          – dotenv values,
//   • `conf/global.yaml`                       – primary static file,
//   • `LOWEBI_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs—only plain strings.  The database password is the
// canonical example.
//
// Validation happens immediately after unmarshal; the binary fails fast
// if required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • The `Paths.Root` field is filled at runtime; YAML must not set it.
//   • Oxford commas, two spaces after periods.

package config

//
// HTTP section
//

// HTTP holds admin-API tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
}

//
// Database section
//

// Database holds the control-plane DSN.  Operators keep the template in
// YAML and point the password at Vault (`vault:secret/lowebi#db_password`)
// so credentials stay out of flat files and git history.
type Database struct {
	DSN string `koanf:"dsn" validate:"required"`
}

//
// Deploy section
//

// Deploy describes how patched artifact trees reach the live instance.
// Target is an rsync-style destination (`user@host:/srv/sites`); the
// restart command receives the site id as its only argument.
type Deploy struct {
	Target         string `koanf:"target"`
	RestartCommand string `koanf:"restart_command"`
	DryRun         bool   `koanf:"dry_run"`
}

//
// Paths section
//

// Paths locates on-disk state.  Root is resolved at runtime (LOWEBI_ROOT
// or discovery); SitesDir holds one generated-artifact tree per site id,
// and LegacyConfigDir is the import root for the one-time migration.
type Paths struct {
	Root            string `koanf:"-"`
	SitesDir        string `koanf:"sites_dir" validate:"required"`
	LegacyConfigDir string `koanf:"legacy_config_dir"`
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the process lifetime.
type Config struct {
	Debug    bool     `koanf:"debug"`
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Deploy   Deploy   `koanf:"deploy"`
	Paths    Paths    `koanf:"paths"`
}

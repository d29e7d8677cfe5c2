// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file — `<root>/conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `LOWEBI_`, where `__` maps to “.”
     (e.g., `LOWEBI_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, any leaf value of the form `vault:<path>#<key>` is resolved
through the Vault client, the tree is unmarshalled into strongly-typed
structs, validated, enriched with the runtime root path, and cached in an
`atomic.Pointer` for lock-free reads.  `Reload()` simply calls `Load()`
again and swaps the pointer.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`;
    this lets `go run ./cmd/lowebi` work from any sub-directory.
  • Relative `paths.*` values are resolved against the root.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/mocher01/lowebi-sub005/internal/vault"
)

var current atomic.Pointer[Config]

const vaultRefPrefix = "vault:"

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves LOWEBI_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to the executable heuristic for production layout.
func rootDir() string {
	if r := os.Getenv("LOWEBI_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, resolves Vault references,
// validates, and caches Config.
func Load() (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}

	// Env overrides: LOWEBI_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider("LOWEBI_", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, "LOWEBI_"), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveVaultRefs(k); err != nil {
		zap.S().Errorw("config vault resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	cfg.Paths.SitesDir = absAgainst(root, cfg.Paths.SitesDir)
	cfg.Paths.LegacyConfigDir = absAgainst(root, cfg.Paths.LegacyConfigDir)

	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"sites_dir", cfg.Paths.SitesDir,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// resolveVaultRefs replaces every `vault:<path>#<key>` leaf with the value
// read from Vault.  The client is created lazily so installs without Vault
// never touch it.
func resolveVaultRefs(k *koanf.Koanf) error {
	var cli *vault.Client

	for key, val := range k.All() {
		s, ok := val.(string)
		if !ok || !strings.HasPrefix(s, vaultRefPrefix) {
			continue
		}

		if cli == nil {
			c, err := vault.New()
			if err != nil {
				return err
			}
			cli = c
		}

		ref := strings.TrimPrefix(s, vaultRefPrefix)
		path, field, found := strings.Cut(ref, "#")
		if !found {
			continue // malformed ref; let validation catch the raw value
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		secret, err := cli.GetKV(ctx, path, field, 5*time.Minute)
		cancel()
		if err != nil {
			return err
		}
		if err := k.Set(key, secret); err != nil {
			return err
		}
	}
	return nil
}

// absAgainst resolves p relative to root unless it is already absolute or
// empty.
func absAgainst(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config  { return current.Load() }
func Reload() error { _, err := Load(); return err }

package resolver

import (
	"fmt"
	"github.com/BurntSushi/toml"
	"github.com/nsmithuk/resolver/dnssec"
	"os"
	"time"
)

// FileConfig is the TOML-decoded shape of the process configuration file
// (6): trust anchor source, key cache bounds, and the NSEC3 iteration cap.
// Field names use TOML's dotted-key convention, matching the key table in
// the external-interfaces section.
type FileConfig struct {
	Upstream string `toml:"upstream"`

	TrustAnchorFile string `toml:"trust_anchor_file"`

	KeyCache struct {
		MaxTTL     Duration `toml:"max_ttl"`
		MaxEntries int      `toml:"max_entries"`
	} `toml:"keycache"`

	NSEC3 struct {
		Iterations map[string]uint16 `toml:"iterations"`
	} `toml:"nsec3"`

	TA struct {
		BadKeyTTL Duration `toml:"bad_key_ttl"`
	} `toml:"ta"`
}

// Duration wraps time.Duration so TOML's string values ("60s") decode
// straight into it, following semihalev-sdns's config.Duration pattern.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// LoadFileConfig reads and decodes a TOML configuration file from path.
func LoadFileConfig(path string) (*FileConfig, error) {
	cfg := new(FileConfig)
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	return cfg, nil
}

// DNSSECConfig maps the decoded file config onto a dnssec.Config, opening
// and loading the trust anchor file (if one was set) onto a fresh
// AnchorStore. A nil TrustAnchorFile leaves Anchors nil, so the caller
// falls back to the module's built-in root anchors.
func (c *FileConfig) DNSSECConfig() (dnssec.Config, error) {
	cfg := dnssec.Config{
		KeyCacheMaxEntries: c.KeyCache.MaxEntries,
		KeyCacheMaxTTL:     c.KeyCache.MaxTTL.Duration,
		KeyCacheBadTTL:     c.TA.BadKeyTTL.Duration,
	}

	// The iterations table is keyed by key size, but doe's current cap is a
	// single global ceiling (see doe.MaxIterations); take the largest
	// configured tier, matching the permissive end of the RFC 5155 table.
	for _, n := range c.NSEC3.Iterations {
		if n > cfg.NSEC3MaxIterations {
			cfg.NSEC3MaxIterations = n
		}
	}

	if c.TrustAnchorFile != "" {
		f, err := os.Open(c.TrustAnchorFile)
		if err != nil {
			return cfg, fmt.Errorf("could not open trust anchor file: %w", err)
		}
		defer f.Close()

		anchors := dnssec.NewAnchorStore()
		if err := anchors.LoadAnchorFile(f, "."); err != nil {
			return cfg, fmt.Errorf("could not load trust anchor file: %w", err)
		}
		cfg.Anchors = anchors
	}

	return cfg, nil
}

package config

import (
	"fmt"
	"path/filepath"

	"github.com/socialsmoker223/quants-lab/pkg/confkit"
)

// MustLoadSources loads etc/sources.yaml from the project root and panics on
// error. It isolates the upstream client configuration so tests do not need a
// full collector config.
func MustLoadSources() *SourcesConf {
	root := confkit.MustProjectRoot()
	path := filepath.Join(root, "etc", "sources.yaml")
	cfg, err := LoadSources(path)
	if err != nil {
		panic(fmt.Errorf("load sources config %s: %w", path, err))
	}
	return cfg
}

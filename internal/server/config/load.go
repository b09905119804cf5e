package config

import (
	"github.com/yndnr/scenelink/internal/infra/confloader"
)

// Load builds a verified configuration from the defaults, the YAML file at
// path (optional), SCENELINK_* environment variables and overrides, in
// increasing priority. overrides uses dotted keys such as "tick.rate".
func Load(path string, overrides map[string]any) (*ScenelinkConfig, error) {
	cfg := Default()
	loader := confloader.NewLoader(confloader.WithConfigFile(path))
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if len(overrides) > 0 {
		if err := loader.LoadMap(overrides); err != nil {
			return nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, err
		}
	}
	if err := Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// configFile maps registry hosts to connection settings so credentials
// don't have to travel on the command line.
//
//	registries:
//	  registry.example.com:5000:
//	    username: alice
//	    password: s3cret
//	  localhost:5000:
//	    plain_http: true
type configFile struct {
	Registries map[string]registryEntry `yaml:"registries"`
}

type registryEntry struct {
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	Insecure    bool   `yaml:"insecure"`
	PlainHTTP   bool   `yaml:"plain_http"`
	AuthRealm   string `yaml:"auth_realm"`
	AuthService string `yaml:"auth_service"`
}

// loadConfig reads the config file at path, falling back to the default
// location. A missing file is not an error; it just yields an empty
// config.
func loadConfig(path string) (configFile, error) {
	var cfg configFile

	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "regview", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

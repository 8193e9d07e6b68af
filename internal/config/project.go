package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// ProjectFile is the per-project config file name, searched from the
// working directory upward.
const ProjectFile = ".seam.toml"

// Project holds per-project settings read from .seam.toml.
type Project struct {
	Scanner   Scanner           `toml:"scanner"`
	Render    Render            `toml:"render"`
	Overrides map[string]string `toml:"overrides"`
}

// Scanner configures the external analysis subprocess.
type Scanner struct {
	Command string `toml:"command"`
	Timeout string `toml:"timeout,omitempty"`
	Dir     string `toml:"dir,omitempty"`
}

// Render configures diagram output.
type Render struct {
	Width int `toml:"width,omitempty"`
}

// ScanTimeout parses the scanner timeout; zero when unset.
func (p *Project) ScanTimeout() (time.Duration, error) {
	if p.Scanner.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.Scanner.Timeout)
	if err != nil {
		return 0, fmt.Errorf("scanner.timeout: %w", err)
	}
	return d, nil
}

// LoadProject reads .seam.toml starting from dir and walking up toward
// the filesystem root. A missing file is not an error: the zero Project
// is returned.
func LoadProject(dir string) (*Project, error) {
	path, err := findProjectFile(dir)
	if err != nil || path == "" {
		return &Project{Overrides: map[string]string{}}, err
	}
	return LoadProjectFile(path)
}

// LoadProjectFile reads one specific project file.
func LoadProjectFile(path string) (*Project, error) {
	var p Project
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if p.Overrides == nil {
		p.Overrides = map[string]string{}
	}
	if _, err := p.ScanTimeout(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &p, nil
}

func findProjectFile(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(abs, ProjectFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", nil
		}
		abs = parent
	}
}

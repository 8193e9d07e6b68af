package main

import (
	"context"
	"fmt"
	"os"

	"github.com/loomworks/seam/internal/catalog"
	"github.com/loomworks/seam/internal/config"
	"github.com/loomworks/seam/internal/scan"
)

// loadPayload obtains the analysis payload for a local command: from the
// file named in args (or stdin for "-"), or by running the scanner
// configured in .seam.toml when no file is given. The project config is
// returned alongside so callers can apply its overrides and render width.
func loadPayload(ctx context.Context, args []string) (*catalog.Payload, *config.Project, error) {
	project, err := config.LoadProject(".")
	if err != nil {
		return nil, nil, err
	}

	if len(args) > 0 {
		p, err := readPayloadFile(args[0])
		if err != nil {
			return nil, nil, err
		}
		return p, project, nil
	}

	if project.Scanner.Command == "" {
		return nil, nil, fmt.Errorf("no payload file given and no scanner configured in %s", config.ProjectFile)
	}

	timeout, err := project.ScanTimeout()
	if err != nil {
		return nil, nil, err
	}
	runner := &scan.Runner{
		Command: project.Scanner.Command,
		Timeout: timeout,
		Dir:     project.Scanner.Dir,
	}
	p, err := runner.Run(ctx)
	if err != nil {
		return nil, nil, err
	}
	return p, project, nil
}

// readPayloadFile decodes a payload from the named file, or stdin for "-".
func readPayloadFile(path string) (*catalog.Payload, error) {
	if path == "-" {
		return catalog.DecodePayload(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return catalog.DecodePayload(f)
}

// mergeOverrides layers command-line overrides on top of the project file's.
func mergeOverrides(project *config.Project, flagOverrides map[string]string) map[string]string {
	if len(project.Overrides) == 0 && len(flagOverrides) == 0 {
		return nil
	}
	merged := make(map[string]string, len(project.Overrides)+len(flagOverrides))
	for k, v := range project.Overrides {
		merged[k] = v
	}
	for k, v := range flagOverrides {
		merged[k] = v
	}
	return merged
}

// Package main generates the Grafana dashboard and Prometheus rule files for
// meli-seller-hub from code, so the deployed artifacts never drift from the
// metrics the server actually exports.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vieirasantos/meli-seller-hub/tools/dashgen/dashboards"
	"github.com/vieirasantos/meli-seller-hub/tools/dashgen/rules"
)

const generatedHeader = "# Code generated by tools/dashgen. DO NOT EDIT.\n"

func main() {
	validateOnly := flag.Bool("validate", false, "build artifacts without writing files")
	outputDir := flag.String("output", "", "override output directory")
	flag.Parse()

	cfg := DefaultConfig()
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *validateOnly); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg Config, validateOnly bool) error {
	if cfg.DashboardEnabled {
		dash, err := dashboards.BuildOverview().Build()
		if err != nil {
			return fmt.Errorf("building overview dashboard: %w", err)
		}
		data, err := json.MarshalIndent(dash, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling dashboard: %w", err)
		}
		data = append(data, '\n')
		if err := writeArtifact(cfg, validateOnly,
			filepath.Join("grafana", "data", "msh-overview.json"), data); err != nil {
			return err
		}
	}

	if cfg.RulesEnabled {
		recording, err := yaml.Marshal(rules.RecordingRules())
		if err != nil {
			return fmt.Errorf("marshaling recording rules: %w", err)
		}
		if err := writeArtifact(cfg, validateOnly,
			filepath.Join("prometheus", "msh-recording-rules.yaml"),
			append([]byte(generatedHeader), recording...)); err != nil {
			return err
		}

		alerts, err := yaml.Marshal(rules.AlertRules())
		if err != nil {
			return fmt.Errorf("marshaling alert rules: %w", err)
		}
		if err := writeArtifact(cfg, validateOnly,
			filepath.Join("prometheus", "msh-alerts.yaml"),
			append([]byte(generatedHeader), alerts...)); err != nil {
			return err
		}
	}

	if validateOnly {
		fmt.Println("validation passed")
	}
	return nil
}

func writeArtifact(cfg Config, validateOnly bool, relPath string, data []byte) error {
	if validateOnly {
		return nil
	}
	path := filepath.Join(cfg.OutputDir, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/gridmind/config"
)

// OutputManager writes step and window records to CSV files in an
// output directory, plus a snapshot of the effective configuration.
type OutputManager struct {
	dir         string
	stepsFile   *os.File
	windowsFile *os.File

	stepsHeaderWritten   bool
	windowsHeaderWritten bool
}

// NewOutputManager creates the output directory and its files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "steps.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating steps.csv: %w", err)
	}
	om.stepsFile = f

	f, err = os.Create(filepath.Join(dir, "windows.csv"))
	if err != nil {
		om.stepsFile.Close()
		return nil, fmt.Errorf("creating windows.csv: %w", err)
	}
	om.windowsFile = f

	return om, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteStep appends one step record to steps.csv.
func (om *OutputManager) WriteStep(rec StepRecord) error {
	if om == nil {
		return nil
	}
	records := []StepRecord{rec}
	if !om.stepsHeaderWritten {
		if err := gocsv.Marshal(records, om.stepsFile); err != nil {
			return fmt.Errorf("writing steps: %w", err)
		}
		om.stepsHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.stepsFile); err != nil {
		return fmt.Errorf("writing steps: %w", err)
	}
	return nil
}

// WriteWindow appends one window stats record to windows.csv.
func (om *OutputManager) WriteWindow(stats WindowStats) error {
	if om == nil {
		return nil
	}
	records := []WindowStats{stats}
	if !om.windowsHeaderWritten {
		if err := gocsv.Marshal(records, om.windowsFile); err != nil {
			return fmt.Errorf("writing windows: %w", err)
		}
		om.windowsHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.windowsFile); err != nil {
		return fmt.Errorf("writing windows: %w", err)
	}
	return nil
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	if err := om.stepsFile.Close(); err != nil {
		firstErr = err
	}
	if err := om.windowsFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

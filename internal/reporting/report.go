package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"blockwipe/internal/config"
	"blockwipe/internal/wipe"
)

// Report is the JSON record of one wipe run
type Report struct {
	RunID     string          `json:"run_id"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Pattern   string          `json:"pattern"`
	Passes    int             `json:"passes"`
	Verify    bool            `json:"verify"`
	Outcomes  []OutcomeReport `json:"outcomes"`
	Summary   Summary         `json:"summary"`
	ExitCode  int             `json:"exit_code"`
	Duration  string          `json:"duration"`
}

// OutcomeReport is the per-device section of a run report
type OutcomeReport struct {
	Device         string    `json:"device"`
	Status         string    `json:"status"`
	Reason         string    `json:"reason,omitempty"`
	MismatchOffset uint64    `json:"mismatch_offset,omitempty"`
	VerifySkipped  bool      `json:"verify_skipped,omitempty"`
	BytesWritten   uint64    `json:"bytes_written"`
	Passes         int       `json:"passes"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	SpeedMBps      float64   `json:"speed_mbps"`
}

// Summary aggregates a run's outcomes
type Summary struct {
	TotalDevices       int     `json:"total_devices"`
	Succeeded          int     `json:"succeeded"`
	PreconditionFailed int     `json:"precondition_failed"`
	IoFailures         int     `json:"io_failures"`
	VerificationFailed int     `json:"verification_failed"`
	TotalBytes         uint64  `json:"total_bytes"`
	SuccessRate        float64 `json:"success_rate"`
}

// Generate builds a run report from the fleet's outcomes. Devices are listed
// in path order for stable output.
func Generate(outcomes map[string]*wipe.Outcome, version string, startTime, endTime time.Time, exitCode int) *Report {
	report := &Report{
		RunID:     fmt.Sprintf("run_%d", startTime.UnixNano()),
		Version:   version,
		Timestamp: startTime,
		ExitCode:  exitCode,
		Duration:  endTime.Sub(startTime).String(),
	}

	devices := make([]string, 0, len(outcomes))
	for dev := range outcomes {
		devices = append(devices, dev)
	}
	sort.Strings(devices)

	for _, dev := range devices {
		out := outcomes[dev]

		report.Outcomes = append(report.Outcomes, OutcomeReport{
			Device:         out.Device,
			Status:         string(out.Status),
			Reason:         out.Reason,
			MismatchOffset: out.MismatchOffset,
			VerifySkipped:  out.VerifySkipped,
			BytesWritten:   out.BytesWritten,
			Passes:         out.Passes,
			StartTime:      out.StartTime,
			EndTime:        out.EndTime,
			SpeedMBps:      out.SpeedMBps,
		})

		report.Summary.TotalBytes += out.BytesWritten
		switch out.Status {
		case wipe.StatusSuccess:
			report.Summary.Succeeded++
		case wipe.StatusPreconditionFailed:
			report.Summary.PreconditionFailed++
		case wipe.StatusIoFailure:
			report.Summary.IoFailures++
		case wipe.StatusVerificationFailed:
			report.Summary.VerificationFailed++
		}
	}

	report.Summary.TotalDevices = len(outcomes)
	if report.Summary.TotalDevices > 0 {
		report.Summary.SuccessRate = float64(report.Summary.Succeeded) / float64(report.Summary.TotalDevices) * 100
	}

	return report
}

// Save writes the report as JSON into the configured report directory and
// returns the file path
func Save(report *Report, cfg *config.Config) (string, error) {
	if !cfg.Reporting.Enabled {
		return "", nil
	}

	if err := os.MkdirAll(cfg.Reporting.LocalPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	filename := fmt.Sprintf("blockwipe_report_%s.json", report.Timestamp.Format("20060102_150405"))
	path := filepath.Join(cfg.Reporting.LocalPath, filename)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"blockwipe/internal/config"
	"blockwipe/internal/device"
	"blockwipe/internal/logging"
	"blockwipe/internal/reporting"
	"blockwipe/internal/security"
	"blockwipe/internal/wipe"
)

const (
	Version = "1.0.2"
	AppName = "blockwipe"

	// Exit codes
	EXIT_SUCCESS = 0
	EXIT_ERROR   = 1
	EXIT_WARNING = 2
)

var (
	cfg        *config.Config
	logger     *logging.Logger
	verbose    bool
	configPath string
	profile    string

	useZero           bool
	useRandom         bool
	passes            int
	verifyAfter       bool
	force             bool
	allowSystemDevice bool

	hasWarnings bool
)

var rootCmd = &cobra.Command{
	Use:     "blockwipe",
	Short:   "blockwipe - secure erasure of block devices",
	Long:    "Overwrites the full addressable range of block devices with zero or random fill, with optional read-back verification",
	Version: Version,
}

var wipeCmd = &cobra.Command{
	Use:   "wipe <device>...",
	Short: "Overwrite devices and optionally verify the result",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWipe,
}

var infoCmd = &cobra.Command{
	Use:   "info <device>...",
	Short: "Show device size and availability",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInfo,
}

var verifyCmd = &cobra.Command{
	Use:   "verify <device>...",
	Short: "Check that devices are fully zero-filled",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runVerify,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "Wipe profile (quick/standard/paranoid)")

	wipeCmd.Flags().BoolVar(&useZero, "zero", false, "Fill with zero bytes (default)")
	wipeCmd.Flags().BoolVar(&useRandom, "random", false, "Fill with cryptographically random bytes")
	wipeCmd.Flags().IntVarP(&passes, "passes", "p", 1, "Number of overwrite passes")
	wipeCmd.Flags().BoolVar(&verifyAfter, "verify", false, "Verify the result by reading the device back")
	wipeCmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	wipeCmd.Flags().BoolVar(&allowSystemDevice, "allow-system-device", false, "Allow wiping the device backing the root filesystem (DANGEROUS)")

	rootCmd.AddCommand(wipeCmd, infoCmd, verifyCmd)
}

func runWipe(cmd *cobra.Command, args []string) error {
	startTime := time.Now()

	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if profile != "" {
		if err := config.ApplyProfile(cfg, profile); err != nil {
			return fmt.Errorf("failed to apply profile %s: %w", profile, err)
		}
	}

	// CLI flags override configuration
	if useZero && useRandom {
		return fmt.Errorf("--zero and --random are mutually exclusive")
	}
	if useZero {
		cfg.Wipe.Pattern = "zero"
	}
	if useRandom {
		cfg.Wipe.Pattern = "random"
	}
	if cmd.Flags().Changed("passes") {
		cfg.Wipe.Passes = passes
	}
	if cmd.Flags().Changed("verify") {
		cfg.Wipe.Verify = verifyAfter
	}
	if allowSystemDevice {
		cfg.Security.AllowSystemDevice = true
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := security.Checks(cfg); err != nil {
		return err
	}

	logger, err = logging.New(cfg, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()

	if profile != "" {
		logger.Log("INFO", "Applied profile", "profile", profile)
	}

	pattern, err := wipe.ParsePattern(cfg.Wipe.Pattern)
	if err != nil {
		return err
	}

	// Apply the device protection policy before building the batch
	var requests []wipe.Request
	for _, dev := range args {
		if skip, reason := security.ShouldSkipDevice(cfg, dev); skip {
			logger.Log("WARN", "Device skipped by policy", "device", dev, "reason", reason)
			fmt.Printf("Skipping %s: %s\n", dev, reason)
			hasWarnings = true
			continue
		}

		requests = append(requests, wipe.Request{
			DevicePath: dev,
			Pattern:    pattern,
			Passes:     cfg.Wipe.Passes,
			Verify:     cfg.Wipe.Verify,
		})
	}

	// Reject the batch before any device is touched
	if err := wipe.ValidateRequests(requests); err != nil {
		return err
	}

	logger.Log("INFO", "Starting run", "version", Version, "devices", len(requests),
		"pattern", cfg.Wipe.Pattern, "passes", cfg.Wipe.Passes, "verify", cfg.Wipe.Verify)

	if !force && cfg.Security.RequireConfirmation {
		if !confirmWipe(requests) {
			logger.Log("INFO", "Run cancelled by user")
			return nil
		}
	}

	oracle := device.NewSystemOracle()

	// Resolve mounted devices before the core runs; the core itself always
	// hard-aborts on precondition failure
	if cfg.Wipe.OnPreconditionFailure == "prompt" {
		if err := resolveMounted(oracle, requests, logger); err != nil {
			return err
		}
	}

	printer := &progressPrinter{}
	wiper := wipe.NewWiper(oracle, logger, cfg.Wipe.BufferSize, printer.print)
	fleet := wipe.NewFleet(wiper, logger)

	outcomes, err := fleet.Run(context.Background(), requests)
	if err != nil {
		return err
	}
	printer.done()

	printResults(outcomes, requests)

	exitCode := EXIT_SUCCESS
	if wipe.AnyFailed(outcomes) {
		exitCode = EXIT_ERROR
	} else if hasWarnings {
		exitCode = EXIT_WARNING
	}

	if cfg.Reporting.Enabled {
		report := reporting.Generate(outcomes, Version, startTime, time.Now(), exitCode)
		report.Pattern = cfg.Wipe.Pattern
		report.Passes = cfg.Wipe.Passes
		report.Verify = cfg.Wipe.Verify
		if path, err := reporting.Save(report, cfg); err != nil {
			logger.Log("WARN", "Failed to save report", "error", err.Error())
		} else if path != "" {
			logger.Log("INFO", "Report saved", "run_id", report.RunID, "file", path)
		}
	}

	if exitCode == EXIT_ERROR {
		return fmt.Errorf("some devices failed")
	}
	return nil
}

func printResults(outcomes map[string]*wipe.Outcome, requests []wipe.Request) {
	fmt.Println("\nWipe results:")
	fmt.Println("=============")

	for _, req := range requests {
		out, ok := outcomes[req.DevicePath]
		if !ok {
			continue
		}

		status := "OK"
		if out.Failed() {
			status = "FAIL"
		}

		fmt.Printf("%-4s %s - %s (%.1f GB, %.1f MB/s)\n", status, out.Device, out.Status,
			float64(out.BytesWritten)/(1024*1024*1024), out.SpeedMBps)

		if out.Reason != "" {
			fmt.Printf("     reason: %s\n", out.Reason)
		}
		if out.VerifySkipped {
			fmt.Printf("     verification skipped: random fill is not verifiable\n")
		}
	}
}

func runInfo(cmd *cobra.Command, args []string) error {
	oracle := device.NewSystemOracle()

	fmt.Println("Device information:")
	fmt.Println("===================")
	for _, dev := range args {
		size, err := oracle.SizeOf(dev)
		if err != nil {
			fmt.Printf("%s - unavailable (%v)\n", dev, err)
			continue
		}

		mounted, err := oracle.IsMounted(dev)
		if err != nil {
			return fmt.Errorf("mount check failed for %s: %w", dev, err)
		}
		inUse, err := oracle.IsInUse(dev)
		if err != nil {
			return fmt.Errorf("in-use check failed for %s: %w", dev, err)
		}

		state := "idle"
		if mounted {
			state = "mounted"
		} else if inUse {
			state = "in use"
		}

		fmt.Printf("%s - %.1f GB, %s\n", dev, float64(size)/(1024*1024*1024), state)
	}

	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err = logging.New(cfg, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()

	oracle := device.NewSystemOracle()
	verifier := wipe.NewVerifier(cfg.Wipe.BufferSize)

	failed := false
	for _, dev := range args {
		desc, err := device.Describe(oracle, dev)
		if err != nil {
			return err
		}

		f, err := os.Open(dev)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", dev, err)
		}

		logger.Log("INFO", "Verifying device", "device", dev, "size", desc.TotalBytes)
		res, err := verifier.Verify(f, desc, wipe.PatternZero)
		f.Close()
		if err != nil {
			return err
		}

		if res.OK {
			fmt.Printf("OK   %s - fully zero-filled (%d bytes)\n", dev, desc.TotalBytes)
		} else {
			fmt.Printf("FAIL %s - non-zero byte at offset %d\n", dev, res.MismatchOffset)
			logger.Log("ERROR", "Verification failed", "device", dev, "offset", res.MismatchOffset)
			failed = true
		}
	}

	if failed {
		return fmt.Errorf("verification failed")
	}
	return nil
}

// progressPrinter renders in-place progress lines; workers report
// concurrently so writes are serialized
type progressPrinter struct {
	mu     sync.Mutex
	active bool
}

func (p *progressPrinter) print(pr wipe.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.active = true
	fmt.Printf("\r[%s] pass %d/%d: %6.2f%%", pr.Device, pr.Pass, pr.TotalPasses, pr.Percent)
}

func (p *progressPrinter) done() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active {
		fmt.Println()
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(EXIT_ERROR)
	}
	if hasWarnings {
		os.Exit(EXIT_WARNING)
	}
	os.Exit(EXIT_SUCCESS)
}

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"blockwipe/internal/device"
	"blockwipe/internal/logging"
	"blockwipe/internal/wipe"
)

// confirmWipe asks for explicit confirmation before the destructive run
func confirmWipe(requests []wipe.Request) bool {
	fmt.Printf("WARNING: ALL DATA on the following %d device(s) will be DESTROYED:\n", len(requests))
	for _, req := range requests {
		fmt.Printf("  %s (%s fill, %d pass(es))\n", req.DevicePath, req.Pattern, req.Passes)
	}
	fmt.Print("Continue? (y/N): ")

	var response string
	fmt.Scanln(&response)
	return strings.EqualFold(strings.TrimSpace(response), "y")
}

// resolveMounted offers to unmount each mounted device before any wipe
// begins. Declining leaves the device mounted, so the run is aborted here
// rather than letting every precondition check fail later.
func resolveMounted(oracle device.Oracle, requests []wipe.Request, logger *logging.Logger) error {
	reader := bufio.NewReader(os.Stdin)

	for _, req := range requests {
		mounted, err := oracle.IsMounted(req.DevicePath)
		if err != nil {
			return fmt.Errorf("mount check failed for %s: %w", req.DevicePath, err)
		}
		if !mounted {
			continue
		}

		fmt.Printf("Device %s is currently mounted.\n", req.DevicePath)
		fmt.Print("Unmount it now? (y/N): ")

		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if !strings.EqualFold(strings.TrimSpace(line), "y") {
			return fmt.Errorf("device %s is mounted; unmount it manually and retry", req.DevicePath)
		}

		if err := oracle.Unmount(req.DevicePath); err != nil {
			return err
		}

		logger.Log("INFO", "Device unmounted", "device", req.DevicePath)
		fmt.Printf("Device %s unmounted.\n", req.DevicePath)
	}

	return nil
}

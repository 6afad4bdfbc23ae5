package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"zipcodes/internal/precompute"
)

func main() {
	// Define command-line flags
	input := flag.String("input", "", "CSV file or directory of CSV files (required)")
	outputFile := flag.String("output", "internal/dataset/zips.json.gz", "Output artifact path")
	workers := flag.Int("workers", runtime.NumCPU(), "Number of files parsed in parallel")
	flag.Parse()

	// Validate input
	if *input == "" {
		fmt.Fprintf(os.Stderr, "Error: --input flag is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	if _, err := os.Stat(*input); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: Input path '%s' does not exist\n", *input)
		os.Exit(1)
	}

	fmt.Printf("Zipcode Dataset Pre-compute Tool\n")
	fmt.Printf("================================\n\n")
	fmt.Printf("Input: %s\n", *input)
	fmt.Printf("Output file: %s\n", *outputFile)
	fmt.Printf("Workers: %d\n", *workers)
	fmt.Println()

	programStart := time.Now()

	// Progress callback that shows elapsed time
	progressCallback := func(msg string) {
		elapsed := time.Since(programStart)
		fmt.Printf("[%s] %s\n", formatElapsed(elapsed), msg)
	}

	startTime := time.Now()
	records, err := precompute.LoadInputs(*input, *workers, progressCallback)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		os.Exit(1)
	}

	processingTime := time.Since(startTime)

	progressCallback("Writing artifact...")

	if err := precompute.WriteArtifact(records, *outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "\nError writing output: %v\n", err)
		os.Exit(1)
	}

	// Summary
	fmt.Printf("\n✓ Success!\n")
	fmt.Printf("  Records written: %d\n", len(records))
	fmt.Printf("  Processing time: %s\n", processingTime.Round(time.Millisecond))
	fmt.Printf("  Output file: %s\n", *outputFile)
	fmt.Println()
}

// formatElapsed formats a duration into a human-readable elapsed time string
func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes > 0 {
		return fmt.Sprintf("%dm%02ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

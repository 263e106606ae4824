// Command marlinpipe is the reference, out-of-core CLI for the training
// data pipeline and weights quantizer.
//
// Usage:
//
//	marlinpipe convert <path> [--output <out>]             quantize JSON weights
//	marlinpipe interleave --output <out> <file…>            randomly interleave ≥2 datasets
//	marlinpipe txt-to-data --output <out> <txt>             convert legacy text to packed
//	marlinpipe shuffle <dataset> [--output <out>] [--block-size N] [--group-size N]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nnuepipe/marlinpipe"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "convert":
		err = runConvert(os.Args[2:])
	case "interleave":
		err = runInterleave(os.Args[2:])
	case "txt-to-data":
		err = runTxtToData(os.Args[2:])
	case "shuffle":
		err = runShuffle(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "marlinpipe: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "marlinpipe: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  marlinpipe convert <path> [--output <out>]
  marlinpipe interleave --output <out> <file...>
  marlinpipe txt-to-data --output <out> <txt>
  marlinpipe shuffle <dataset> [--output <out>] [--block-size N] [--group-size N]

Run "marlinpipe <command> -h" for command-specific options.
`)
}

// --- convert ---

func runConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	output := fs.String("output", "", "output path (default: <path> with its extension replaced by .bin)")
	arch := fs.String("arch", "board768-single", "quantizer architecture: board768-single/halfkp-bucketed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("convert: missing input file\nUsage: marlinpipe convert <path> [--output <out>]")
	}
	inputPath := fs.Arg(0)

	var a marlinpipe.Architecture
	switch *arch {
	case "board768-single":
		a = marlinpipe.Board768SingleBucketArchitecture()
	case "halfkp-bucketed":
		a = marlinpipe.HalfKpBucketedArchitecture()
	default:
		return fmt.Errorf("convert: unknown arch %q (use board768-single/halfkp-bucketed)", *arch)
	}

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	out, err := marlinpipe.QuantizeWeights(a, raw)
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}

	outputPath := *output
	if outputPath == "" {
		outputPath = trimExt(inputPath) + ".bin"
	}
	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Quantized %s → %s (%d bytes)\n", inputPath, outputPath, len(out))
	return nil
}

// --- interleave ---

func runInterleave(args []string) error {
	fs := flag.NewFlagSet("interleave", flag.ContinueOnError)
	output := fs.String("output", "", "output path (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *output == "" {
		return fmt.Errorf("interleave: --output is required")
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("interleave: need at least 2 input files, got %d\nUsage: marlinpipe interleave --output <out> <file...>", fs.NArg())
	}

	progress := func(written, total uint64) {
		fmt.Fprintf(os.Stderr, "\rinterleaved %d/%d records", written, total)
	}
	if err := marlinpipe.Interleave(fs.Args(), *output, progress); err != nil {
		fmt.Fprintln(os.Stderr)
		return fmt.Errorf("interleave: %w", err)
	}
	fmt.Fprintln(os.Stderr)
	return nil
}

// --- txt-to-data ---

func runTxtToData(args []string) error {
	fs := flag.NewFlagSet("txt-to-data", flag.ContinueOnError)
	output := fs.String("output", "", "output path (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *output == "" {
		return fmt.Errorf("txt-to-data: --output is required")
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("txt-to-data: missing input file\nUsage: marlinpipe txt-to-data --output <out> <txt>")
	}
	inputPath := fs.Arg(0)

	in, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(*output)
	if err != nil {
		return err
	}

	n, err := marlinpipe.ConvertLegacyText(in, out)
	if err != nil {
		out.Close()
		os.Remove(*output)
		return fmt.Errorf("txt-to-data: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(*output)
		return err
	}

	fmt.Fprintf(os.Stderr, "Converted %s → %s (%d records)\n", inputPath, *output, n)
	return nil
}

// --- shuffle ---

func runShuffle(args []string) error {
	fs := flag.NewFlagSet("shuffle", flag.ContinueOnError)
	output := fs.String("output", "", `output path (default: <dataset>.shuffled)`)
	blockSize := fs.Int("block-size", 0, "records per in-memory block (0=default)")
	groupSize := fs.Int("group-size", 0, "files merged per interleave round (0=default)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("shuffle: missing input file\nUsage: marlinpipe shuffle <dataset> [--output <out>] [--block-size N] [--group-size N]")
	}
	inputPath := fs.Arg(0)

	outputPath := *output
	if outputPath == "" {
		outputPath = inputPath + ".shuffled"
	}

	cfg := marlinpipe.DefaultShuffleConfig(inputPath, outputPath)
	if *blockSize > 0 {
		cfg.BlockSize = *blockSize
	}
	if *groupSize > 0 {
		cfg.GroupSize = *groupSize
	}
	cfg.Progress = func(written, total uint64) {
		fmt.Fprintf(os.Stderr, "\rshuffled %d/%d records", written, total)
	}

	if err := marlinpipe.Shuffle(cfg); err != nil {
		fmt.Fprintln(os.Stderr)
		return fmt.Errorf("shuffle: %w", err)
	}
	fmt.Fprintln(os.Stderr)
	return nil
}

func trimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

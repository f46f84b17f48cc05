// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"golang.org/x/term"

	"clause-scan/internal/analyzer"
	"clause-scan/internal/config"
	"clause-scan/internal/extract"
	"clause-scan/internal/sections"
	"clause-scan/internal/version"
)

// cliFlags holds command line flag values
type cliFlags struct {
	configFile    string
	outputFormat  string
	ocrLanguage   string
	showStructure bool
	showMetadata  bool
	debug         bool
	noColor       bool
	showVersion   bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	configureColor(flags.noColor)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "clause-scan",
	})
	if flags.debug {
		logger.SetLevel(log.DebugLevel)
	}

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: clause-scan [options] <file>...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := loadConfiguration(flags.configFile, logger)
	ocr := buildOCREngine(flags.ocrLanguage, logger)
	pipeline := analyzer.New(cfg, ocr, logger)

	exitCode := 0
	for _, file := range files {
		if err := analyzeFile(pipeline, file, flags); err != nil {
			logger.Error("analysis failed", "file", file, "error", err)
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

func parseFlags() *cliFlags {
	flags := &cliFlags{}
	flag.StringVar(&flags.configFile, "config", "", "Path to clause-definitions file (YAML or JSON)")
	flag.StringVar(&flags.outputFormat, "format", "text", "Output format: text, json")
	flag.StringVar(&flags.ocrLanguage, "ocr-lang", "eng", "Language for optical recognition of scanned pages")
	flag.BoolVar(&flags.showStructure, "structure", false, "Print the detected section outline")
	flag.BoolVar(&flags.showMetadata, "metadata", false, "Print extracted document metadata")
	flag.BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	flag.BoolVar(&flags.showVersion, "version", false, "Print version information and exit")
	flag.Parse()
	return flags
}

// configureColor disables color when asked to or when stdout is not a
// terminal.
func configureColor(noColor bool) {
	if noColor || !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
}

// loadConfiguration resolves and loads the clause-definition file.
// A missing or unparsable configuration is fatal: the engine has no
// degraded mode without its rule table.
func loadConfiguration(configFile string, logger *log.Logger) *config.Config {
	path := configFile
	if path == "" {
		path = config.FindConfigFile()
	}
	if path == "" {
		logger.Fatal("no clause-definitions file found; pass one with --config")
	}

	cfg, err := config.Load(path)
	if err != nil {
		logger.Fatal("loading clause definitions", "path", path, "error", err)
	}
	logger.Debug("loaded clause definitions", "path", path, "types", len(cfg.Definitions))
	return cfg
}

// buildOCREngine probes optical recognition once at startup. Absence is
// not fatal; scanned documents simply fail extraction.
func buildOCREngine(language string, logger *log.Logger) extract.OCREngine {
	ocr, err := extract.NewTesseractEngine(language)
	if err != nil {
		logger.Warn("optical recognition unavailable", "error", err)
		return nil
	}
	return ocr
}

func analyzeFile(pipeline *analyzer.Analyzer, file string, flags *cliFlags) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	result, err := pipeline.Analyze(data, file)
	if err != nil {
		return err
	}

	switch flags.outputFormat {
	case "json":
		return printJSON(result)
	case "text":
		printText(file, result, flags)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", flags.outputFormat)
	}
}

func printJSON(result *analyzer.AnalysisResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func printText(file string, result *analyzer.AnalysisResult, flags *cliFlags) {
	header := color.New(color.FgCyan, color.Bold)
	clauseName := color.New(color.FgYellow, color.Bold)
	notFound := color.New(color.FgRed)

	header.Printf("=== %s ===\n", file)
	fmt.Printf("Format: %s", result.Report.Format)
	if result.Report.Backend != "" {
		fmt.Printf(" (backend: %s)", result.Report.Backend)
	}
	fmt.Printf(", %d sections, %d sentences\n\n", result.Report.SectionCount, result.Report.SentenceCount)

	types := make([]string, 0, len(result.Clauses))
	for clauseType := range result.Clauses {
		types = append(types, clauseType)
	}
	sort.Strings(types)

	for _, clauseType := range types {
		clauseName.Printf("%s:\n", displayName(clauseType))
		text := result.Clauses[clauseType]
		if text == analyzer.NotFound {
			notFound.Println("  " + text)
		} else {
			for _, line := range strings.Split(text, "\n") {
				fmt.Println("  " + line)
			}
		}
		fmt.Println()
	}

	if result.Report.FallbackUsed {
		notFound.Println("Note: rule engine unavailable, results are keyword-heuristic extractions")
	}

	if flags.showStructure && len(result.Sections) > 0 {
		header.Println("--- Document structure ---")
		fmt.Print(sections.Structure(result.Sections))
		fmt.Println()
	}

	if flags.showMetadata && len(result.Metadata) > 0 {
		header.Println("--- Metadata ---")
		keys := make([]string, 0, len(result.Metadata))
		for key := range result.Metadata {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Printf("%s: %v\n", key, result.Metadata[key])
		}
		fmt.Println()
	}

	for _, diagnostic := range result.Report.Diagnostics {
		fmt.Fprintf(os.Stderr, "diagnostic: %s\n", diagnostic)
	}
}

// displayName renders a clause-type key for human output.
func displayName(clauseType string) string {
	words := strings.Split(clauseType, "_")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scantab/internal/config"
	"scantab/internal/domain"
	"scantab/internal/export"
	"scantab/internal/locator"
	"scantab/internal/port"
	"scantab/internal/reconstruct"

	// Register locator providers.
	_ "scantab/internal/locator/geminivision"
	_ "scantab/internal/locator/googlevision"
	_ "scantab/internal/locator/tesseract"
)

var (
	outputPath string
	sheetName  string
	asCSV      bool
	timeout    time.Duration
)

func init() {
	flag.StringVar(&outputPath, "output", "", "output file path (default: <input-name>.xlsx)")
	flag.StringVar(&outputPath, "o", "", "output file path (shorthand)")
	flag.StringVar(&sheetName, "sheet", "", "workbook sheet name (default from config)")
	flag.BoolVar(&asCSV, "csv", false, "write CSV instead of a workbook")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "extraction timeout")
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: extract [flags] <image>\n\n")
	fmt.Fprintf(os.Stderr, "Reconstructs a table from a scanned image and writes a spreadsheet.\n\n")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: image path required\n\n")
		usage()
		os.Exit(1)
	}
	imagePath := flag.Arg(0)

	if err := run(imagePath); err != nil {
		log.Fatal(err)
	}
}

func run(imagePath string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	chain, err := buildLocatorChain(&cfg.Locator)
	if err != nil {
		return err
	}

	imageBytes, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	contentType, err := contentTypeForPath(imagePath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result := reconstruct.NewBuilder(chain).Extract(ctx, port.LocateInput{
		ImageBytes:  imageBytes,
		ContentType: contentType,
	})

	printSummary(result)
	if !result.Success {
		os.Exit(1)
	}

	out := outputPath
	if out == "" {
		base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
		if asCSV {
			out = base + ".csv"
		} else {
			out = base + ".xlsx"
		}
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if asCSV {
		err = export.WriteCSV(f, result.Table)
	} else {
		sheet := sheetName
		if sheet == "" {
			sheet = cfg.Export.SheetName
		}
		err = export.WriteWorkbook(f, result.Table, sheet)
	}
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	fmt.Printf("wrote %s\n", out)
	return nil
}

func contentTypeForPath(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	imageType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return "", domain.ErrUnsupportedFileType
	}
	return domain.AllowedImageTypes[imageType], nil
}

func printSummary(result *domain.ExtractionResult) {
	if !result.Success {
		fmt.Printf("extraction failed (%s, %.2fs): %s\n", result.Backend, result.ElapsedSeconds, result.Error)
		return
	}
	fmt.Printf("extracted %d rows x %d columns (backend=%s, confidence=%.4f, %.2fs)\n",
		result.RowsExtracted, result.ColumnsDetected, result.Backend,
		result.Confidence, result.ElapsedSeconds)
}

// buildLocatorChain creates the fallback chain of OCR backends from the
// configured provider tiers.
func buildLocatorChain(cfg *config.LocatorConfig) (port.TextLocator, error) {
	var locators []port.TextLocator
	for _, pc := range cfg.Configured() {
		loc, err := locator.NewLocator(pc)
		if err != nil {
			return nil, fmt.Errorf("initializing locator %q: %w", pc.Provider, err)
		}
		locators = append(locators, loc)
	}
	if len(locators) == 0 {
		return nil, domain.ErrNoBackendAvailable
	}
	if len(locators) == 1 {
		return locators[0], nil
	}
	return locator.NewChainLocator(locators), nil
}

//go:build mage

// Package main contains Mage build targets for paper-sorter developer tooling.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "paper-sorter"
	cmdPkg  = "./cmd/paper-sorter"

	// workDirEnv selects the checkpoint directory for Scrape, Classify and Stats.
	workDirEnv = "PAPER_SORTER_WORK_DIR"
)

func binPath() string { return filepath.Join(binDir, binName) }

func workDir() string {
	if d := os.Getenv(workDirEnv); d != "" {
		return d
	}
	return "data"
}

// Init creates the work directory and an empty .secrets/ for the Gemini key.
func Init() error {
	for _, dir := range []string{workDir(), ".secrets"} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized. Put the API key in .secrets/gemini-api-key.")
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	if err := sh.RunV("go", "build", "-o", binPath(), cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", binPath())
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Scrape builds the CLI and runs phase 1 (which hands off to classify).
func Scrape() error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath(), "scrape", "--work-dir", workDir())
}

// Classify builds the CLI and runs phase 2 on existing checkpoints.
func Classify() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "classify", "--work-dir", workDir())
}

// Stats prints Go line counts and the checkpoint state of the work directory.
func Stats() error {
	prodLines, testLines, err := countGoLines(".")
	if err != nil {
		return err
	}
	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)

	years, err := checkpointYears(workDir())
	if err != nil {
		return err
	}
	for _, y := range years {
		fmt.Printf("Year %s: %d listed, %d with PDF link, %d PDFs, updated=%t\n",
			y,
			countRecords(filepath.Join(workDir(), "papers_"+y+".json")),
			countLinked(filepath.Join(workDir(), "pdf_links_"+y+".json")),
			countPDFs(filepath.Join(workDir(), "pdf_"+y)),
			fileExists(filepath.Join(workDir(), "pdf_links_"+y+"_updated.json")))
	}
	return nil
}

// countGoLines walks root and counts non-blank lines in production and
// test Go files. The _examples tree is skipped.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), "_") || info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			if strings.TrimSpace(sc.Text()) != "" {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}

// checkpointYears returns the years that have a papers_<year>.json file.
func checkpointYears(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "papers_*.json"))
	if err != nil {
		return nil, err
	}
	var years []string
	for _, m := range matches {
		years = append(years, strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), "papers_"), ".json"))
	}
	sort.Strings(years)
	return years, nil
}

func countRecords(path string) int {
	var records []map[string]any
	if readJSON(path, &records) != nil {
		return 0
	}
	return len(records)
}

func countLinked(path string) int {
	var records []struct {
		PDFLink *string `json:"pdf_link"`
	}
	if readJSON(path, &records) != nil {
		return 0
	}
	n := 0
	for _, r := range records {
		if r.PDFLink != nil {
			n++
		}
	}
	return n
}

func countPDFs(dir string) int {
	matches, _ := filepath.Glob(filepath.Join(dir, "*.pdf"))
	return len(matches)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

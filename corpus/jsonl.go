package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ndisplan/ragserver/models"
)

// Corpus lines carrying embeddings run to tens of kilobytes.
const maxLineBytes = 8 * 1024 * 1024

// WriteRecords writes records as JSONL, one record per line, creating parent
// directories as needed.
func WriteRecords(path string, records []models.Record) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return fmt.Errorf("failed to encode record %s: %w", records[i].ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

// ReadRecords reads a JSONL corpus file. Lines that do not parse are counted
// and skipped rather than failing the read.
func ReadRecords(path string) ([]models.Record, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var (
		records []models.Record
		skipped int
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec models.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("failed to scan %s: %w", path, err)
	}
	return records, skipped, nil
}

// CombineFiles merges JSONL corpus files into one, in the given order,
// dropping duplicate records per Dedupe. Inputs that do not exist are
// skipped. Returns the number of records written.
func CombineFiles(outPath string, inPaths ...string) (int, error) {
	var merged []models.Record
	for _, in := range inPaths {
		if _, err := os.Stat(in); os.IsNotExist(err) {
			continue
		}
		records, _, err := ReadRecords(in)
		if err != nil {
			return 0, fmt.Errorf("failed to read corpus file %s: %w", in, err)
		}
		merged = append(merged, records...)
	}

	merged = Dedupe(merged)
	if err := WriteRecords(outPath, merged); err != nil {
		return 0, err
	}
	return len(merged), nil
}

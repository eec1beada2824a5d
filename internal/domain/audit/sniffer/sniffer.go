// Package sniffer detects the layout of delimited audit exports.
// It identifies the delimiter and header row and fingerprints the headers for logging.
package sniffer

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"unicode"
)

// Candidate delimiters in preference order. Brazilian exports favour ';'
// because ',' is the decimal mark.
var delimiters = []rune{';', '\t', ',', '|'}

const (
	maxSampleLines = 20
	maxSampleRows  = 5
)

// FileConfig holds the detected configuration for a CSV/TSV file
type FileConfig struct {
	Delimiter   rune       // The field delimiter (';', ',', '\t', '|')
	SkipLines   int        // Blank lines before the header
	Headers     []string   // Detected header names
	Fingerprint string     // SHA256 hash of normalized headers
	SampleRows  [][]string // First few data rows for preview
}

var ErrEmptyFile = errors.New("file is empty")

// DetectConfig analyzes a CSV/TSV file and returns its configuration
func DetectConfig(data []byte) (*FileConfig, error) {
	lines := splitLines(data)
	skipLines := firstNonBlank(lines)
	if skipLines < 0 {
		return nil, ErrEmptyFile
	}

	sample := sampleLines(lines[skipLines+1:], maxSampleLines)
	delimiter := detectDelimiter(lines[skipLines], sample)

	return buildConfig(data, lines, skipLines, delimiter)
}

// DetectConfigWithDelimiter is DetectConfig with a caller-chosen delimiter.
func DetectConfigWithDelimiter(data []byte, delimiter rune) (*FileConfig, error) {
	lines := splitLines(data)
	skipLines := firstNonBlank(lines)
	if skipLines < 0 {
		return nil, ErrEmptyFile
	}

	return buildConfig(data, lines, skipLines, delimiter)
}

func buildConfig(data []byte, lines []string, skipLines int, delimiter rune) (*FileConfig, error) {
	headers, err := readRecord(lines[skipLines], delimiter)
	if err != nil {
		return nil, err
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	return &FileConfig{
		Delimiter:   delimiter,
		SkipLines:   skipLines,
		Headers:     headers,
		Fingerprint: generateFingerprint(headers),
		SampleRows:  getSampleRows(data, delimiter, maxSampleRows),
	}, nil
}

// detectDelimiter picks the first candidate that appears in the header and
// splits every sample row into as many fields as the header.
func detectDelimiter(header string, sample []string) rune {
	var present []rune
	for _, d := range delimiters {
		if strings.ContainsRune(header, d) {
			present = append(present, d)
		}
	}

	// Single column: any delimiter that leaves the data rows whole will do
	if len(present) == 0 {
		for _, d := range delimiters {
			if consistent(sample, d, 1) {
				return d
			}
		}
		return delimiters[0]
	}

	best, bestFields := present[0], 0
	for _, d := range present {
		fields := fieldCount(header, d)
		if consistent(sample, d, fields) {
			return d
		}
		if fields > bestFields {
			best, bestFields = d, fields
		}
	}
	return best
}

func consistent(sample []string, delimiter rune, fields int) bool {
	for _, line := range sample {
		if fieldCount(line, delimiter) != fields {
			return false
		}
	}
	return true
}

func fieldCount(line string, delimiter rune) int {
	record, err := readRecord(line, delimiter)
	if err != nil {
		return -1
	}
	return len(record)
}

func readRecord(line string, delimiter rune) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.Read()
}

// generateFingerprint creates a unique hash from header names
func generateFingerprint(headers []string) string {
	// Normalize headers: lowercase, remove non-alphanumeric
	var normalized []string
	for _, h := range headers {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, h)
		if clean != "" {
			normalized = append(normalized, clean)
		}
	}

	joined := strings.Join(normalized, "|")
	hash := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(hash[:])
}

// getSampleRows returns the first N data rows after the header
func getSampleRows(data []byte, delimiter rune, maxRows int) [][]string {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var rows [][]string
	headerSeen := false

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if isBlank(record) {
			continue
		}
		if !headerSeen {
			headerSeen = true
			continue
		}

		rows = append(rows, record)
		if len(rows) >= maxRows {
			break
		}
	}

	return rows
}

func splitLines(data []byte) []string {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.Split(text, "\n")
}

func sampleLines(lines []string, limit int) []string {
	var out []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func firstNonBlank(lines []string) int {
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			return i
		}
	}
	return -1
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

package manifest

import (
	"fmt"
	"strings"

	"vip-manifest-service/pkg/logger"
)

const fieldCount = 6

var validCategories = map[string]bool{
	CategoryGold:      true,
	CategoryGoldPlus:  true,
	CategoryPlatinum:  true,
	CategoryBlack:     true,
	CategoryTop:       true,
	CategorySignature: true,
}

var validStatuses = map[string]bool{
	StatusConfirmado: true,
	StatusPendiente:  true,
	StatusCancelado:  true,
	StatusCheckin:    true,
}

// Parser validates and structures raw manifest text
type Parser struct {
	logger logger.Logger
}

// NewParser creates a manifest parser
func NewParser(logger logger.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse splits the manifest into lines and validates each one. Rejected lines
// are reported as "Line <n>: <reason>" and skipped; parsing never stops early.
func (p *Parser) Parse(text string) *ParseResult {
	result := &ParseResult{
		Entries: make([]ParsedEntry, 0),
		Errors:  make([]string, 0),
	}

	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	lines := strings.Split(normalized, "\n")

	lineNo := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lineNo++

		entry, err := validateLine(line)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Line %d: %s", lineNo, err))
			continue
		}
		result.Entries = append(result.Entries, entry)
	}

	result.Success = len(result.Errors) == 0
	p.logger.Info("Parsed manifest",
		"lines", lineNo,
		"entries", len(result.Entries),
		"errors", len(result.Errors))

	return result
}

// validateLine checks one non-blank manifest line: exactly 6 comma-separated
// fields (flight, destination, name, category, status, seat), all non-empty,
// category and status in the enumerated sets case-insensitively.
func validateLine(line string) (ParsedEntry, error) {
	parts := strings.Split(line, ",")
	if len(parts) != fieldCount {
		return ParsedEntry{}, fmt.Errorf("expected %d comma-separated fields, got %d", fieldCount, len(parts))
	}

	fields := make([]string, fieldCount)
	for i, part := range parts {
		fields[i] = strings.TrimSpace(part)
	}

	names := []string{"flight number", "destination", "name", "category", "status", "seat"}
	for i, field := range fields {
		if field == "" {
			return ParsedEntry{}, fmt.Errorf("empty %s field", names[i])
		}
	}

	category := strings.ToUpper(fields[3])
	if !validCategories[category] {
		return ParsedEntry{}, fmt.Errorf("unknown category %q", fields[3])
	}

	status := strings.ToUpper(fields[4])
	if !validStatuses[status] {
		return ParsedEntry{}, fmt.Errorf("unknown status %q", fields[4])
	}

	return ParsedEntry{
		FlightNumber: fields[0],
		Destination:  fields[1],
		Name:         fields[2],
		Category:     category,
		Status:       status,
		Seat:         fields[5],
	}, nil
}

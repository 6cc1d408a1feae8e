// seed_rates generates a SQL seed script for the insurances table from a
// government rate-table CSV (級距表).
//
// Usage: go run ./cmd/seed_rates [path/rates.csv]
// By default it looks for rates.csv in the current directory.
// Writes: internal/infrastructure/postgres/migrations/002_seed_insurances.sql
//
// Expected CSV columns:
//
//	insurance_type,grade_level,salary_min,salary_max,premium_base,rate,employee_ratio,employer_ratio,government_ratio,effective_date
//
// salary_max may be empty for the unbounded top bracket.
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const outputPath = "internal/infrastructure/postgres/migrations/002_seed_insurances.sql"

type bracket struct {
	insuranceType string
	gradeLevel    int
	salaryMin     decimal.Decimal
	salaryMax     *decimal.Decimal
	premiumBase   decimal.Decimal
	rate          decimal.Decimal
	employeeRatio decimal.Decimal
	employerRatio decimal.Decimal
	govRatio      decimal.Decimal
	effectiveDate string
}

func main() {
	csvPath := "rates.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	brackets, err := parseBrackets(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse CSV: %v\n", err)
		os.Exit(1)
	}
	if len(brackets) == 0 {
		fmt.Fprintln(os.Stderr, "CSV contains no brackets")
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create migrations dir: %v\n", err)
		os.Exit(1)
	}
	out, err := os.Create(outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create output: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	writeSeed(out, brackets)
	fmt.Printf("wrote %d brackets to %s\n", len(brackets), outputPath)
}

func parseBrackets(r io.Reader) ([]bracket, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 10 {
		return nil, fmt.Errorf("expected 10 columns, got %d", len(header))
	}

	var brackets []bracket
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		b, err := parseBracket(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		brackets = append(brackets, b)
	}
	return brackets, nil
}

func parseBracket(record []string) (bracket, error) {
	var b bracket
	var err error

	b.insuranceType = strings.TrimSpace(record[0])
	if b.insuranceType == "" {
		return b, fmt.Errorf("empty insurance_type")
	}
	if b.gradeLevel, err = strconv.Atoi(record[1]); err != nil {
		return b, fmt.Errorf("grade_level: %w", err)
	}
	if b.salaryMin, err = decimal.NewFromString(record[2]); err != nil {
		return b, fmt.Errorf("salary_min: %w", err)
	}
	if strings.TrimSpace(record[3]) != "" {
		max, err := decimal.NewFromString(record[3])
		if err != nil {
			return b, fmt.Errorf("salary_max: %w", err)
		}
		b.salaryMax = &max
	}
	if b.premiumBase, err = decimal.NewFromString(record[4]); err != nil {
		return b, fmt.Errorf("premium_base: %w", err)
	}
	if b.rate, err = decimal.NewFromString(record[5]); err != nil {
		return b, fmt.Errorf("rate: %w", err)
	}
	if b.employeeRatio, err = decimal.NewFromString(record[6]); err != nil {
		return b, fmt.Errorf("employee_ratio: %w", err)
	}
	if b.employerRatio, err = decimal.NewFromString(record[7]); err != nil {
		return b, fmt.Errorf("employer_ratio: %w", err)
	}
	if b.govRatio, err = decimal.NewFromString(record[8]); err != nil {
		return b, fmt.Errorf("government_ratio: %w", err)
	}
	b.effectiveDate = strings.TrimSpace(record[9])
	if b.effectiveDate == "" {
		return b, fmt.Errorf("empty effective_date")
	}
	return b, nil
}

func writeSeed(w io.Writer, brackets []bracket) {
	fmt.Fprintln(w, "-- Generated by cmd/seed_rates. Do not edit by hand.")
	fmt.Fprintln(w, "INSERT INTO insurances (id, insurance_type, grade_level, salary_min, salary_max, premium_base, rate, employee_ratio, employer_ratio, government_ratio, effective_date, created_at, updated_at) VALUES")
	for i, b := range brackets {
		max := "NULL"
		if b.salaryMax != nil {
			max = b.salaryMax.String()
		}
		sep := ","
		if i == len(brackets)-1 {
			sep = ";"
		}
		fmt.Fprintf(w, "('%s', '%s', %d, %s, %s, %s, %s, %s, %s, %s, '%s', NOW(), NOW())%s\n",
			uuid.New().String(), b.insuranceType, b.gradeLevel,
			b.salaryMin, max, b.premiumBase, b.rate,
			b.employeeRatio, b.employerRatio, b.govRatio,
			b.effectiveDate, sep,
		)
	}
}

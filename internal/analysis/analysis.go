// Package analysis provides the local CSV helpers exposed to the
// summarization agent as tools. All failures are reported as strings in
// tool-result form so the agent loop never has to handle an error value.
package analysis

import (
	"encoding/csv"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// column holds the parsed values of one CSV column
type column struct {
	name    string
	numeric []float64
}

// Analyze inspects CSV data and produces statistics or insights based on
// the query ("summary", a column name, or "correlation").
func Analyze(csvText, query string) string {
	if strings.TrimSpace(csvText) == "" {
		return "Error: CSV data is empty."
	}

	headers, rows, err := parseCSV(csvText)
	if err != nil || len(rows) == 0 || len(headers) == 0 {
		return "Error: Invalid or empty CSV data."
	}

	numericColumns := collectNumericColumns(headers, rows)
	queryLower := strings.ToLower(strings.TrimSpace(query))

	if queryLower == "" || strings.Contains(queryLower, "summary") || strings.Contains(queryLower, "overview") {
		return summarize(headers, rows, numericColumns)
	}

	for i, h := range headers {
		if !strings.Contains(queryLower, strings.ToLower(h)) {
			continue
		}
		for _, col := range numericColumns {
			if col.name == h {
				return describeNumericColumn(col)
			}
		}
		return describeCategoricalColumn(h, i, rows)
	}

	if strings.Contains(queryLower, "correlation") || strings.Contains(queryLower, "trend") {
		return describeCorrelations(numericColumns)
	}

	return fmt.Sprintf(
		"Sorry, I couldn't interpret the query '%s'. Try asking for 'summary', 'describe <column>', or 'correlation'.",
		query,
	)
}

// Filter selects CSV rows matching a condition and returns them as CSV
// including the header row.
func Filter(csvText, columnName, operator, value string) string {
	headers, rows, err := parseCSV(csvText)
	if err != nil || len(headers) == 0 {
		return "Error: CSV data is empty."
	}

	colIndex := -1
	for i, h := range headers {
		if h == columnName {
			colIndex = i
			break
		}
	}
	if colIndex == -1 {
		return fmt.Sprintf("Error: Column '%s' not found. Available columns: %s", columnName, strings.Join(headers, ", "))
	}

	switch operator {
	case "==", "!=", ">", "<", ">=", "<=":
	default:
		return fmt.Sprintf("Error: Invalid operator '%s'. Use one of: ==, !=, >, <, >=, <=", operator)
	}

	compareNumeric, numericTarget := false, 0.0
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		compareNumeric, numericTarget = true, n
	}

	filtered := [][]string{headers}
	for _, row := range rows {
		if len(row) <= colIndex {
			continue
		}
		cell := row[colIndex]

		var match bool
		if compareNumeric {
			cellValue, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				continue
			}
			match = compareFloats(cellValue, numericTarget, operator)
		} else {
			match = compareStrings(cell, value, operator)
		}

		if match {
			filtered = append(filtered, row)
		}
	}

	if len(filtered) == 1 {
		return fmt.Sprintf("Filtered data for %s %s %s: No matching rows found.", columnName, operator, value)
	}

	var buf strings.Builder
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(filtered); err != nil {
		return fmt.Sprintf("Error during filtering: %v", err)
	}
	return strings.TrimSpace(buf.String())
}

func parseCSV(csvText string) ([]string, [][]string, error) {
	r := csv.NewReader(strings.NewReader(csvText))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	return records[0], records[1:], nil
}

func collectNumericColumns(headers []string, rows [][]string) []column {
	var cols []column
	for i, h := range headers {
		var values []float64
		for _, row := range rows {
			if len(row) <= i {
				continue
			}
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64); err == nil {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			cols = append(cols, column{name: h, numeric: values})
		}
	}
	return cols
}

func summarize(headers []string, rows [][]string, numericColumns []column) string {
	lines := []string{
		fmt.Sprintf("CSV contains %d rows and %d columns.", len(rows), len(headers)),
		fmt.Sprintf("Columns: %s.", strings.Join(headers, ", ")),
		"",
		"Numeric column statistics:",
	}
	for _, col := range numericColumns {
		lines = append(lines, fmt.Sprintf(
			"- %s: mean=%.2f, min=%.2f, max=%.2f, std=%.2f",
			col.name, mean(col.numeric), min(col.numeric), max(col.numeric), stddev(col.numeric),
		))
	}
	return strings.Join(lines, "\n")
}

func describeNumericColumn(col column) string {
	return fmt.Sprintf(
		"Column '%s' has %d numeric values.\nMean: %.2f\nMin: %.2f\nMax: %.2f\nStd Dev: %.2f",
		col.name, len(col.numeric), mean(col.numeric), min(col.numeric), max(col.numeric), stddev(col.numeric),
	)
}

func describeCategoricalColumn(name string, index int, rows [][]string) string {
	freq := map[string]int{}
	for _, row := range rows {
		if len(row) <= index {
			continue
		}
		if v := strings.TrimSpace(row[index]); v != "" {
			freq[v]++
		}
	}

	type valueCount struct {
		value string
		count int
	}
	counts := make([]valueCount, 0, len(freq))
	for v, c := range freq {
		counts = append(counts, valueCount{v, c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].value < counts[j].value
	})
	if len(counts) > 5 {
		counts = counts[:5]
	}

	lines := []string{
		fmt.Sprintf("Column '%s' appears to be categorical.", name),
		"Top values:",
	}
	for _, vc := range counts {
		lines = append(lines, fmt.Sprintf("- %s: %d occurrences", vc.value, vc.count))
	}
	return strings.Join(lines, "\n")
}

func describeCorrelations(numericColumns []column) string {
	type pair struct {
		a, b string
		corr float64
	}
	var pairs []pair
	for i := 0; i < len(numericColumns); i++ {
		for j := i + 1; j < len(numericColumns); j++ {
			a, b := numericColumns[i], numericColumns[j]
			n := len(a.numeric)
			if len(b.numeric) < n {
				n = len(b.numeric)
			}
			if n < 2 {
				continue
			}
			pairs = append(pairs, pair{a.name, b.name, pearson(a.numeric[:n], b.numeric[:n])})
		}
	}
	if len(pairs) == 0 {
		return "No numeric correlations found."
	}

	sort.Slice(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].corr) > math.Abs(pairs[j].corr)
	})
	if len(pairs) > 5 {
		pairs = pairs[:5]
	}

	lines := []string{"Top correlations:"}
	for _, p := range pairs {
		lines = append(lines, fmt.Sprintf("- %s / %s: corr=%.2f", p.a, p.b, p.corr))
	}
	return strings.Join(lines, "\n")
}

func compareFloats(a, b float64, operator string) bool {
	switch operator {
	case "==":
		return a == b
	case "!=":
		return a != b
	case ">":
		return a > b
	case "<":
		return a < b
	case ">=":
		return a >= b
	case "<=":
		return a <= b
	}
	return false
}

func compareStrings(a, b, operator string) bool {
	switch operator {
	case "==":
		return a == b
	case "!=":
		return a != b
	case ">":
		return a > b
	case "<":
		return a < b
	case ">=":
		return a >= b
	case "<=":
		return a <= b
	}
	return false
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func min(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func max(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// stddev is the population standard deviation
func stddev(values []float64) float64 {
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

func pearson(a, b []float64) float64 {
	ma, mb := mean(a), mean(b)
	var num, da, db float64
	for i := range a {
		x, y := a[i]-ma, b[i]-mb
		num += x * y
		da += x * x
		db += y * y
	}
	if da == 0 || db == 0 {
		return 0
	}
	return num / math.Sqrt(da*db)
}

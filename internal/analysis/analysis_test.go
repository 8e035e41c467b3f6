package analysis

import (
	"strings"
	"testing"
)

const gradesCSV = `name,midterm,final
anna,80,90
ben,60,70
cara,100,95
`

func TestAnalyze_Empty(t *testing.T) {
	if got := Analyze("", "summary"); got != "Error: CSV data is empty." {
		t.Errorf("Unexpected result for empty input: %q", got)
	}
	if got := Analyze("   \n", "summary"); got != "Error: CSV data is empty." {
		t.Errorf("Unexpected result for whitespace input: %q", got)
	}
}

func TestAnalyze_HeaderOnly(t *testing.T) {
	got := Analyze("a,b,c\n", "summary")
	if got != "Error: Invalid or empty CSV data." {
		t.Errorf("Unexpected result for header-only input: %q", got)
	}
}

func TestAnalyze_Summary(t *testing.T) {
	got := Analyze(gradesCSV, "summary")

	if !strings.Contains(got, "CSV contains 3 rows and 3 columns.") {
		t.Errorf("Expected row/column counts, got: %q", got)
	}
	if !strings.Contains(got, "Columns: name, midterm, final.") {
		t.Errorf("Expected column list, got: %q", got)
	}
	if !strings.Contains(got, "- midterm: mean=80.00, min=60.00, max=100.00") {
		t.Errorf("Expected midterm statistics, got: %q", got)
	}
}

func TestAnalyze_EmptyQueryDefaultsToSummary(t *testing.T) {
	got := Analyze(gradesCSV, "")
	if !strings.Contains(got, "CSV contains 3 rows") {
		t.Errorf("Expected summary for empty query, got: %q", got)
	}
}

func TestAnalyze_NumericColumn(t *testing.T) {
	got := Analyze(gradesCSV, "describe final")

	if !strings.Contains(got, "Column 'final' has 3 numeric values.") {
		t.Errorf("Expected numeric column description, got: %q", got)
	}
	if !strings.Contains(got, "Mean: 85.00") {
		t.Errorf("Expected mean 85.00, got: %q", got)
	}
}

func TestAnalyze_CategoricalColumn(t *testing.T) {
	csvText := "name,grade\nanna,A\nben,B\ncara,A\n"
	got := Analyze(csvText, "describe name")

	if !strings.Contains(got, "Column 'name' appears to be categorical.") {
		t.Errorf("Expected categorical description, got: %q", got)
	}
	if !strings.Contains(got, "- anna: 1 occurrences") {
		t.Errorf("Expected value counts, got: %q", got)
	}
}

func TestAnalyze_Correlation(t *testing.T) {
	csvText := "x,y\n1,2\n2,4\n3,6\n"
	got := Analyze(csvText, "correlation")

	if !strings.Contains(got, "Top correlations:") {
		t.Errorf("Expected correlations, got: %q", got)
	}
	if !strings.Contains(got, "- x / y: corr=1.00") {
		t.Errorf("Expected perfect correlation, got: %q", got)
	}
}

func TestAnalyze_UnknownQuery(t *testing.T) {
	got := Analyze(gradesCSV, "make me a sandwich")
	if !strings.Contains(got, "couldn't interpret the query") {
		t.Errorf("Expected fallback message, got: %q", got)
	}
}

func TestFilter_Numeric(t *testing.T) {
	got := Filter(gradesCSV, "midterm", ">=", "80")

	if !strings.Contains(got, "name,midterm,final") {
		t.Errorf("Expected header row, got: %q", got)
	}
	if !strings.Contains(got, "anna,80,90") || !strings.Contains(got, "cara,100,95") {
		t.Errorf("Expected matching rows, got: %q", got)
	}
	if strings.Contains(got, "ben") {
		t.Errorf("Did not expect ben in output: %q", got)
	}
}

func TestFilter_String(t *testing.T) {
	got := Filter(gradesCSV, "name", "==", "ben")

	if !strings.Contains(got, "ben,60,70") {
		t.Errorf("Expected ben's row, got: %q", got)
	}
	if strings.Contains(got, "anna") {
		t.Errorf("Did not expect anna in output: %q", got)
	}
}

func TestFilter_NoMatches(t *testing.T) {
	got := Filter(gradesCSV, "midterm", ">", "1000")
	if got != "Filtered data for midterm > 1000: No matching rows found." {
		t.Errorf("Unexpected no-match result: %q", got)
	}
}

func TestFilter_UnknownColumn(t *testing.T) {
	got := Filter(gradesCSV, "bogus", "==", "1")
	if !strings.Contains(got, "Column 'bogus' not found") {
		t.Errorf("Expected unknown column error, got: %q", got)
	}
	if !strings.Contains(got, "name, midterm, final") {
		t.Errorf("Expected available columns list, got: %q", got)
	}
}

func TestFilter_InvalidOperator(t *testing.T) {
	got := Filter(gradesCSV, "midterm", "~=", "80")
	if !strings.Contains(got, "Invalid operator '~='") {
		t.Errorf("Expected invalid operator error, got: %q", got)
	}
}

func TestFilter_Empty(t *testing.T) {
	got := Filter("", "a", "==", "1")
	if got != "Error: CSV data is empty." {
		t.Errorf("Unexpected result for empty input: %q", got)
	}
}

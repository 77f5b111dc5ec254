package ui

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/mattn/go-isatty"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = oldStdout

	buf := make([]byte, 4096)
	n, _ := r.Read(buf)
	return string(buf[:n])
}

func TestColorFunc(t *testing.T) {
	// Save original state
	originalSupportsColor := supportsColor
	defer func() {
		supportsColor = originalSupportsColor
	}()

	tests := []struct {
		name          string
		supportsColor bool
		input         string
		expectColored bool
	}{
		{
			name:          "with color support",
			supportsColor: true,
			input:         "test text",
			expectColored: true,
		},
		{
			name:          "without color support",
			supportsColor: false,
			input:         "test text",
			expectColored: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			supportsColor = tt.supportsColor

			funcs := []func(string) string{
				ColorSuccess,
				ColorError,
				ColorWarning,
				ColorInfo,
				ColorProgress,
				ColorBold,
				ColorDim,
			}

			for _, colorFunc := range funcs {
				result := colorFunc(tt.input)

				if tt.expectColored && result == tt.input {
					t.Error("Expected colored output, got plain text")
				}

				if !tt.expectColored && result != tt.input {
					t.Error("Expected plain text, got colored output")
				}
			}
		})
	}
}

func TestShowHeader(t *testing.T) {
	output := captureStdout(t, func() {
		ShowHeader("Test Title")
	})

	if !strings.Contains(output, "+") {
		t.Error("Header missing border")
	}
	if !strings.Contains(output, "Test Title") {
		t.Error("Header missing title")
	}
}

func TestShowError(t *testing.T) {
	tests := []struct {
		name              string
		err               error
		expectSuggestion  bool
		suggestionKeyword string
	}{
		{
			name:              "login failure",
			err:               errors.New("Login failed for user 'warehouse_reader'"),
			expectSuggestion:  true,
			suggestionKeyword: "username and password",
		},
		{
			name:              "connection error",
			err:               errors.New("connection refused"),
			expectSuggestion:  true,
			suggestionKeyword: "network connectivity",
		},
		{
			name:              "syntax error",
			err:               errors.New("SQL syntax error at line 5"),
			expectSuggestion:  true,
			suggestionKeyword: "SQL syntax",
		},
		{
			name:              "permission error",
			err:               errors.New("permission denied for table patients"),
			expectSuggestion:  true,
			suggestionKeyword: "privileges",
		},
		{
			name:              "missing table",
			err:               errors.New("Invalid object name 'dbo.patients'"),
			expectSuggestion:  true,
			suggestionKeyword: "table exists",
		},
		{
			name:              "corrupt baseline",
			err:               errors.New("failed to decode baseline for table patients"),
			expectSuggestion:  true,
			suggestionKeyword: "baseline reset",
		},
		{
			name:             "generic error",
			err:              errors.New("unknown error occurred"),
			expectSuggestion: false,
		},
		{
			name:             "multiline error",
			err:              errors.New("error occurred\ndetailed message\nadditional info"),
			expectSuggestion: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureStdout(t, func() {
				ShowError(tt.err)
			})

			// For multiline errors, only check the first line
			errorLines := strings.Split(tt.err.Error(), "\n")
			if !strings.Contains(output, errorLines[0]) {
				t.Errorf("Error message not found in output. Expected: %s, Got: %s", errorLines[0], output)
			}

			if tt.expectSuggestion && !strings.Contains(output, tt.suggestionKeyword) {
				t.Errorf("Expected suggestion containing '%s' not found", tt.suggestionKeyword)
			}
		})
	}
}

func TestShowSuccess(t *testing.T) {
	output := captureStdout(t, func() {
		ShowSuccess("Operation completed successfully")
	})

	if !strings.Contains(output, "SUCCESS:") {
		t.Error("Success prefix not found")
	}
	if !strings.Contains(output, "Operation completed successfully") {
		t.Error("Success message not found")
	}
}

func TestShowWarning(t *testing.T) {
	output := captureStdout(t, func() {
		ShowWarning("This is a warning")
	})

	if !strings.Contains(output, "WARNING:") {
		t.Error("Warning prefix not found")
	}
	if !strings.Contains(output, "This is a warning") {
		t.Error("Warning message not found")
	}
}

func TestShowInfo(t *testing.T) {
	output := captureStdout(t, func() {
		ShowInfo("Information message")
	})

	if !strings.Contains(output, "INFO:") {
		t.Error("Info prefix not found")
	}
	if !strings.Contains(output, "Information message") {
		t.Error("Info message not found")
	}
}

func TestTable(t *testing.T) {
	output := captureStdout(t, func() {
		table := NewTable()
		table.AddHeader("Table", "Changes", "Status")
		table.AddRow("patients", "12", "ok")
		table.AddRow("hospital_episodes", "0", "ok")
		table.Render()
	})

	for _, want := range []string{"Table", "Changes", "Status", "patients", "12", "hospital_episodes"} {
		if !strings.Contains(output, want) {
			t.Errorf("Table output missing %q", want)
		}
	}
}

func TestFormatChangeCounts(t *testing.T) {
	originalSupportsColor := supportsColor
	supportsColor = false
	defer func() {
		supportsColor = originalSupportsColor
	}()

	tests := []struct {
		name                      string
		inserts, updates, deletes int
		expected                  string
	}{
		{"all types", 3, 2, 1, "+3 ~2 -1"},
		{"inserts only", 5, 0, 0, "+5"},
		{"deletes only", 0, 0, 2, "-2"},
		{"no changes", 0, 0, 0, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatChangeCounts(tt.inserts, tt.updates, tt.deletes)
			if result != tt.expected {
				t.Errorf("FormatChangeCounts() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestGetSuggestion(t *testing.T) {
	tests := []struct {
		name       string
		error      string
		suggestion string
	}{
		{
			name:       "login failure",
			error:      "Login failed for user 'reader'",
			suggestion: "Check your username and password in the configuration",
		},
		{
			name:       "connection error",
			error:      "Connection refused to warehouse.internal",
			suggestion: "Verify the SQL Server host, port and network connectivity",
		},
		{
			name:       "syntax error",
			error:      "SQL syntax error near 'SELCT'",
			suggestion: "Review the SQL syntax in the affected statement",
		},
		{
			name:       "permission error",
			error:      "Permission denied: insufficient privileges",
			suggestion: "Ensure your login has the necessary privileges",
		},
		{
			name:       "missing object",
			error:      "Invalid object name 'dbo.patients'",
			suggestion: "Verify the table exists or check your database/schema context",
		},
		{
			name:       "baseline problem",
			error:      "failed to decode baseline for table patients",
			suggestion: "Run 'driftcap baseline reset' to rebuild the baseline from the current data",
		},
		{
			name:       "unknown error",
			error:      "Some random error",
			suggestion: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := getSuggestion(tt.error)
			if result != tt.suggestion {
				t.Errorf("getSuggestion() = %v, want %v", result, tt.suggestion)
			}
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		defaultValue bool
		expected     bool
	}{
		{
			name:         "empty input with default true",
			input:        "\n",
			defaultValue: true,
			expected:     true,
		},
		{
			name:         "empty input with default false",
			input:        "\n",
			defaultValue: false,
			expected:     false,
		},
		{
			name:         "yes input",
			input:        "yes\n",
			defaultValue: false,
			expected:     true,
		},
		{
			name:         "y input",
			input:        "y\n",
			defaultValue: false,
			expected:     true,
		},
		{
			name:         "no input",
			input:        "n\n",
			defaultValue: true,
			expected:     false,
		},
		{
			name:         "invalid input",
			input:        "maybe\n",
			defaultValue: true,
			expected:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Mock stdin
			oldStdin := os.Stdin
			r, w, _ := os.Pipe()
			os.Stdin = r

			go func() {
				_, _ = w.Write([]byte(tt.input))
				w.Close()
			}()

			result, err := Confirm("Continue?", tt.defaultValue)

			os.Stdin = oldStdin

			if err != nil && err.Error() != "unexpected newline" {
				t.Errorf("Unexpected error: %v", err)
			}

			if result != tt.expected {
				t.Errorf("Confirm() = %v, want %v", result, tt.expected)
			}
		})
	}
}

// BenchmarkColorFunc benchmarks the color function performance
func BenchmarkColorFunc(b *testing.B) {
	text := "Sample text for coloring"

	b.Run("with color", func(b *testing.B) {
		supportsColor = true
		for i := 0; i < b.N; i++ {
			_ = ColorSuccess(text)
		}
	})

	b.Run("without color", func(b *testing.B) {
		supportsColor = false
		for i := 0; i < b.N; i++ {
			_ = ColorSuccess(text)
		}
	})
}

// TestColorDetection tests the terminal color detection
func TestColorDetection(t *testing.T) {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		if supportsColor {
			t.Error("Color support should be false in non-terminal environment")
		}
	}
}

package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// UI represents the main UI interface
type UI struct {
	Verbose bool
	Quiet   bool
	spinner *Spinner
}

// NewUI creates a new UI instance
func NewUI(verbose, quiet bool) *UI {
	return &UI{
		Verbose: verbose,
		Quiet:   quiet,
	}
}

// IsVerbose returns true if verbose mode is enabled
func (u *UI) IsVerbose() bool {
	return u.Verbose
}

// IsQuiet returns true if quiet mode is enabled
func (u *UI) IsQuiet() bool {
	return u.Quiet
}

// Printf prints formatted output if not in quiet mode
func (u *UI) Printf(format string, args ...interface{}) {
	if !u.Quiet {
		fmt.Printf(format, args...)
	}
}

// Println prints a line if not in quiet mode
func (u *UI) Println(args ...interface{}) {
	if !u.Quiet {
		fmt.Println(args...)
	}
}

// VerbosePrintf prints formatted output only in verbose mode
func (u *UI) VerbosePrintf(format string, args ...interface{}) {
	if u.Verbose && !u.Quiet {
		fmt.Printf(format, args...)
	}
}

// StartProgress starts a progress indicator with a message
func (u *UI) StartProgress(message string) {
	if !u.Quiet {
		u.spinner = NewSpinner(message)
		u.spinner.Start()
	}
}

// StopProgress stops the progress indicator
func (u *UI) StopProgress() {
	if u.spinner != nil && !u.Quiet {
		u.spinner.Stop(true, "Done")
		u.spinner = nil
	}
}

// Warning prints a warning message
func (u *UI) Warning(message string) {
	if !u.Quiet {
		fmt.Printf("%s %s\n", ColorWarning("⚠"), message)
	}
}

// Error prints an error message
func (u *UI) Error(message string) {
	if !u.Quiet {
		fmt.Printf("%s %s\n", ColorError("✗"), message)
	}
}

// Info prints an information message
func (u *UI) Info(message string) {
	if !u.Quiet {
		ShowInfo(message)
	}
}

// Success prints a success message
func (u *UI) Success(message string) {
	if !u.Quiet {
		ShowSuccess(message)
	}
}

// PrintSuccess prints a success message (global function for compatibility)
func PrintSuccess(message string) {
	ShowSuccess(message)
}

// PrintError prints an error message (global function for compatibility)
func PrintError(err error) {
	ShowError(err)
}

// PrintWarning prints a warning message (global function for compatibility)
func PrintWarning(message string) {
	ShowWarning(message)
}

// PrintInfo prints an information message (global function for compatibility)
func PrintInfo(message string) {
	ShowInfo(message)
}

// PrintSection prints a section header
func PrintSection(title string) {
	fmt.Printf("\n%s %s\n", ColorBold("▶"), ColorBold(title))
	fmt.Println(strings.Repeat("─", 50))
}

// PrintKeyValue prints a key-value pair in a formatted way
func PrintKeyValue(key, value string) {
	fmt.Printf("  %-20s %s\n", ColorDim(key+":"), value)
}

// MultiSelect displays a multi-select prompt
func MultiSelect(message string, options []string) ([]string, error) {
	selected := []string{}
	prompt := &survey.MultiSelect{
		Message:  message,
		Options:  options,
		PageSize: 10,
	}

	err := survey.AskOne(prompt, &selected)
	return selected, err
}

// Input displays a text input prompt
func Input(message, defaultValue, help string) (string, error) {
	var result string
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
		Help:    help,
	}

	err := survey.AskOne(prompt, &result)
	return result, err
}

// Password displays a password input prompt
func Password(message, help string) (string, error) {
	var result string
	prompt := &survey.Password{
		Message: message,
		Help:    help,
	}

	err := survey.AskOne(prompt, &result)
	return result, err
}

// ShowRunSummary displays the per-table outcome of a capture run.
// Values are either change counts or error strings.
func ShowRunSummary(runID string, changes map[string]interface{}) {
	ShowHeader("Capture Summary")

	fmt.Printf("\n%s %s\n\n", ColorBold("Run:"), runID)

	tables := make([]string, 0, len(changes))
	for table := range changes {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	for _, table := range tables {
		switch v := changes[table].(type) {
		case string:
			fmt.Printf("  %s %-30s %s\n", ColorError("✗"), table, ColorError(v))
		case int:
			if v == 0 {
				fmt.Printf("  %s %-30s %s\n", ColorSuccess("✓"), table, ColorDim("no changes"))
			} else {
				fmt.Printf("  %s %-30s %d changes\n", ColorSuccess("✓"), table, v)
			}
		default:
			fmt.Printf("  %s %-30s %v\n", ColorSuccess("✓"), table, v)
		}
	}
	fmt.Println()
}

// ShowTableExecution displays the table currently being captured
func ShowTableExecution(table string, current, total int) {
	fmt.Printf("\n%s Capturing [%d/%d]: %s\n",
		ColorProgress("►"),
		current,
		total,
		ColorBold(table),
	)
}

// ClearScreen clears the terminal screen
func ClearScreen() {
	fmt.Print("\033[H\033[2J")
}

// ShowLogo displays the application logo
func ShowLogo() {
	logo := `
       _      _  __ _
    __| |_ __(_)/ _| |_ ___ __ _ _ __
   / _` + "`" + ` | '__| | |_| __/ __/ _` + "`" + ` | '_ \
  | (_| | |  | |  _| || (_| (_| | |_) |
   \__,_|_|  |_|_|  \__\___\__,_| .__/
                                |_|
        Change data capture for SQL Server
`
	fmt.Println(ColorInfo(logo))
}

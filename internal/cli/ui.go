package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/cximage/pkg/jobclient"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success, complete tasks
	colorYellow = lipgloss.Color("220") // warnings, running tasks
	colorRed    = lipgloss.Color("167") // errors, failed tasks
	colorBlue   = lipgloss.Color("75")  // links
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // labels
	colorDim    = lipgloss.Color("240") // muted text
)

var (
	// StyleTitle for headings and list bullets.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for names the user typed or chose.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for service URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleElapsed     = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	separator   = " · "
)

// =============================================================================
// Status lines
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the path of a written file.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labelled value in a fixed-width key column.
func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Networks and tasks
// =============================================================================

// printStats prints network and artifact statistics on one line, skipping
// zero values:
//
//	12 nodes · 30 edges · 48.2 KiB · 1.25s
func printStats(nodeCount, edgeCount int, size int64, elapsed time.Duration) {
	var parts []string
	if nodeCount > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d nodes", nodeCount)))
	}
	if edgeCount > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d edges", edgeCount)))
	}
	if size > 0 {
		parts = append(parts, StyleDim.Render(formatBytes(size)))
	}
	if elapsed > 0 {
		parts = append(parts, styleElapsed.Render(elapsed.Round(10*time.Millisecond).String()))
	}
	if len(parts) == 0 {
		return
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(separator)))
}

// taskStateStyle colors a task status reported by the rendering service.
func taskStateStyle(status string) lipgloss.Style {
	switch status {
	case jobclient.StatusComplete:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case jobclient.StatusFailed:
		return lipgloss.NewStyle().Foreground(colorRed)
	case jobclient.StatusProcessing, jobclient.StatusSubmitted:
		return lipgloss.NewStyle().Foreground(colorYellow)
	default:
		return StyleValue
	}
}

// printTaskStatus prints a task's status report as key/value lines.
func printTaskStatus(st *jobclient.Status) {
	printKeyValue("Task id", st.ID)
	fmt.Println(styleKey.Render("Status") + " " + taskStateStyle(st.Status).Render(st.Status))
	printKeyValue("Progress", fmt.Sprintf("%d%%", st.Progress))
	if st.StartTime > 0 {
		printKeyValue("Started", time.UnixMilli(st.StartTime).Format(time.RFC3339))
	}
	if st.WallTime > 0 {
		printKeyValue("Wall time", (time.Duration(st.WallTime) * time.Millisecond).String())
	}
	if st.Message != "" {
		printKeyValue("Message", st.Message)
	}
}

// formatBytes renders a byte count with binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

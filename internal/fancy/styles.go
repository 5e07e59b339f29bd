package fancy

import (
	"github.com/charmbracelet/lipgloss"
)

// Common styles that can be used across the application
var (
	RootStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true)

	BranchStyle = lipgloss.NewStyle().
			Foreground(ColorDarkGray)

	ComponentStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	FieldStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	FunctionStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	ConstructorStyle = lipgloss.NewStyle().
				Foreground(ColorMagenta)

	MIMEStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)
)

// FieldText styles a field member name
func FieldText(text string) string {
	return FieldStyle.Render(text)
}

// FunctionText styles a function member name
func FunctionText(text string) string {
	return FunctionStyle.Render(text)
}

// ConstructorText styles a constructor signature
func ConstructorText(text string) string {
	return ConstructorStyle.Render(text)
}

// MIMEText styles a MIME type
func MIMEText(text string) string {
	return MIMEStyle.Render(text)
}

// ErrorText styles error text (red)
func ErrorText(text string) string {
	return ErrorStyle.Render(text)
}

// SummaryText styles summary information (dark gray)
func SummaryText(text string) string {
	return BranchStyle.Render(text)
}

// CountText styles count numbers (cyan)
func CountText(text string) string {
	return ComponentStyle.Render(text)
}

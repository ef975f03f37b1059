package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Bold(true).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	statusStyles = map[string]lipgloss.Style{
		"idle":   lipgloss.NewStyle().Foreground(lipgloss.Color("#25A065")).Bold(true),
		"record": lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true),
		"busy":   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")).Bold(true),
	}

	reactionsHeading = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")).Bold(true)
	followupsHeading = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF")).Bold(true)
)

func panelStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(color)).
		Padding(0, 1)
}

var (
	summaryPanel     = panelStyle("#5555FF")
	transcriptPanel  = panelStyle("#25A065")
	responsePanel    = panelStyle("#FF55FF")
	suggestionsPanel = panelStyle("#FFFF00")
)

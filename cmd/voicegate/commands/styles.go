package commands

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/echoos/voicegate/pkg/voicegate"
)

var (
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff5f5f"))
	labelStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
)

// printAnnouncer renders spoken prompts as dimmed terminal lines.
func printAnnouncer() voicegate.Announcer {
	return voicegate.AnnouncerFunc(func(text string) {
		fmt.Println(dimStyle.Render("» " + text))
	})
}

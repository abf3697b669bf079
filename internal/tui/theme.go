package tui

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"
	"github.com/zulandar/ensemble/internal/models"
)

type theme struct {
	header    lipgloss.Style
	panel     lipgloss.Style
	input     lipgloss.Style
	footer    lipgloss.Style
	status    lipgloss.Style
	errStatus lipgloss.Style
	indicator lipgloss.Style
	user      lipgloss.Style
	system    lipgloss.Style
	body      lipgloss.Style
	muted     lipgloss.Style
	agents    []lipgloss.Style
}

func newTheme() theme {
	blue := lipgloss.Color("#01cdfe")
	mint := lipgloss.Color("#05ffa1")
	pink := lipgloss.Color("#ff71ce")
	muted := lipgloss.Color("#9ca3d8")

	agent := func(c string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Bold(true)
	}
	return theme{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(blue).
			Padding(0, 1),
		panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),
		input: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		footer:    lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		status:    lipgloss.NewStyle().Foreground(blue).Bold(true),
		errStatus: lipgloss.NewStyle().Foreground(pink).Bold(true),
		indicator: lipgloss.NewStyle().Foreground(mint).Italic(true),
		user:      lipgloss.NewStyle().Foreground(mint).Bold(true),
		system:    lipgloss.NewStyle().Foreground(muted).Bold(true),
		body:      lipgloss.NewStyle(),
		muted:     lipgloss.NewStyle().Foreground(muted),
		agents: []lipgloss.Style{
			agent("#ff71ce"), agent("#ffd166"), agent("#b967ff"),
			agent("#fffb96"), agent("#f78c6b"), agent("#7bdff2"),
		},
	}
}

// authorStyle picks a stable color per author id.
func (t theme) authorStyle(a models.MessageAuthor) lipgloss.Style {
	switch {
	case a.ID == models.UserAuthorID:
		return t.user
	case a.ID == models.SystemAuthorID:
		return t.system
	}
	h := fnv.New32a()
	h.Write([]byte(a.ID))
	return t.agents[int(h.Sum32()%uint32(len(t.agents)))]
}

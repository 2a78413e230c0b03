// Package cli provides a styled local chat loop against the conversation
// engine, for development without a Discord token.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#F2C14E")
	// SuccessColor indicates committed actions.
	SuccessColor = lipgloss.Color("#4ECDC4")
	// ErrorColor indicates rejected input.
	ErrorColor = lipgloss.Color("#FF6B6B")
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for the REPL banner.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	// PromptStyle marks steps awaiting input.
	PromptStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	// SuccessStyle formats confirmations.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// ErrorStyle formats validation failures.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// OptionStyle formats numbered menu entries.
	OptionStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)
)

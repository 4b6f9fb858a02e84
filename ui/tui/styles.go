// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorSubtle    = lipgloss.Color("240") // Muted gray
	colorHighlight = lipgloss.Color("81")  // Teal
	colorSpecial   = lipgloss.Color("208") // Orange
)

var (
	docStyle          = lipgloss.NewStyle().Margin(1, 2)
	titleStyle        = lipgloss.NewStyle().Foreground(colorHighlight).Bold(true).MarginBottom(1)
	helpStyle         = lipgloss.NewStyle().Foreground(colorSubtle).MarginTop(1)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(2)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(0).Foreground(colorHighlight)
	detailStyle       = lipgloss.NewStyle().Foreground(colorSubtle)
	typeStyle         = lipgloss.NewStyle().Foreground(colorSpecial)
)

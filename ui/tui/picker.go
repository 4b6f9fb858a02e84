// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package tui holds the interactive terminal pieces of gitident. The identity
// picker lets the user choose an identity with a type-to-filter list.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/toeirei/gitident/internal/i18n"
	"github.com/toeirei/gitident/internal/model"
)

// ErrCancelled is returned by Pick when the user leaves without choosing.
var ErrCancelled = errors.New("selection cancelled")

type pickerModel struct {
	title     string
	all       []model.Identity
	shown     []model.Identity
	cursor    int
	filter    textinput.Model
	chosen    *model.Identity
	cancelled bool
}

func newPicker(title string, ids []model.Identity) pickerModel {
	ti := textinput.New()
	ti.Prompt = i18n.T("tui.filter")
	ti.CharLimit = 64
	ti.Focus()
	m := pickerModel{title: title, all: ids, filter: ti}
	m.applyFilter()
	return m
}

func (m pickerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			if len(m.shown) == 0 {
				return m, nil
			}
			chosen := m.shown[m.cursor]
			m.chosen = &chosen
			return m, tea.Quit
		case tea.KeyUp, tea.KeyCtrlP:
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case tea.KeyDown, tea.KeyCtrlN:
			if m.cursor < len(m.shown)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	before := m.filter.Value()
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.applyFilter()
	}
	return m, cmd
}

// applyFilter keeps identities whose name, email or type contain the filter
// text, case-insensitively.
func (m *pickerModel) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.shown = make([]model.Identity, 0, len(m.all))
	for _, id := range m.all {
		if q == "" ||
			strings.Contains(strings.ToLower(id.Name), q) ||
			strings.Contains(strings.ToLower(id.Email), q) ||
			strings.Contains(string(id.AccountType), q) {
			m.shown = append(m.shown, id)
		}
	}
	if m.cursor >= len(m.shown) {
		m.cursor = len(m.shown) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m pickerModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")
	if len(m.shown) == 0 {
		b.WriteString(detailStyle.Render(i18n.T("tui.empty")))
		b.WriteString("\n")
	}
	for i, id := range m.shown {
		line := fmt.Sprintf("%s %s %s", id.Name, typeStyle.Render("["+string(id.AccountType)+"]"), detailStyle.Render(id.Email))
		if i == m.cursor {
			b.WriteString(selectedItemStyle.Render("> " + line))
		} else {
			b.WriteString(itemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(i18n.T("tui.help")))
	return docStyle.Render(b.String())
}

// Pick shows ids and returns the chosen one. It returns ErrCancelled when
// the user presses Esc or Ctrl+C.
func Pick(title string, ids []model.Identity, opts ...tea.ProgramOption) (model.Identity, error) {
	if len(ids) == 0 {
		return model.Identity{}, errors.New("no identities registered")
	}
	final, err := tea.NewProgram(newPicker(title, ids), opts...).Run()
	if err != nil {
		return model.Identity{}, err
	}
	m := final.(pickerModel)
	if m.cancelled || m.chosen == nil {
		return model.Identity{}, ErrCancelled
	}
	return *m.chosen, nil
}

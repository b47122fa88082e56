package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/adventure-engine/pkg/engine"
)

const saveSlot = "quicksave"

// PlayerUI is the BubbleTea model that runs the player.
// https://github.com/charmbracelet/bubbletea
type PlayerUI struct {
	engine        *engine.Engine
	sceneViewport viewport.Model
	metaViewport  viewport.Model
	ready         bool
	width         int
	height        int

	selected int
	notices  []string
	status   string

	showQuitModal bool
}

var (
	scenePanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	sceneTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	contentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	selectedChoiceStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

var titleCaser = cases.Title(language.English)

func NewPlayerUI(eng *engine.Engine) *PlayerUI {
	sceneVp := viewport.New(50, 20)
	sceneVp.MouseWheelEnabled = true
	metaVp := viewport.New(20, 20)

	m := &PlayerUI{
		engine:        eng,
		sceneViewport: sceneVp,
		metaViewport:  metaVp,
	}

	// Handlers run on the engine's call path, inside the Update loop, so
	// appending here never races with rendering.
	eng.On(engine.EventInventoryChanged, func(any) { m.addNotice("Inventory updated") })
	eng.On(engine.EventGameSaved, func(payload any) {
		m.addNotice(fmt.Sprintf("Game saved (%v)", payload))
	})
	eng.On(engine.EventGameLoaded, func(payload any) {
		m.addNotice(fmt.Sprintf("Game loaded (%v)", payload))
	})
	eng.On(engine.EventGameReset, func(any) { m.addNotice("Game reset") })
	eng.On(engine.EventSceneChanged, func(any) { m.selected = 0 })

	return m
}

func (m *PlayerUI) addNotice(s string) {
	m.notices = append(m.notices, s)
	if len(m.notices) > 5 {
		m.notices = m.notices[len(m.notices)-5:]
	}
}

func (m *PlayerUI) Init() tea.Cmd {
	return nil
}

func (m *PlayerUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var vpCmd, mvCmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		sceneWidth := int(float64(m.width)*0.70) - 4
		metaWidth := m.width - sceneWidth - 6

		m.sceneViewport.Width = sceneWidth - 2
		m.sceneViewport.Height = m.height - 5
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4

		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil

		case tea.KeyUp:
			if m.selected > 0 {
				m.selected--
			}
			m.refresh()

		case tea.KeyDown:
			if m.selected < len(m.engine.AvailableChoices())-1 {
				m.selected++
			}
			m.refresh()

		case tea.KeyEnter:
			if !m.engine.MakeChoice(m.selected) {
				m.status = errorStyle.Render("That choice is not available")
			} else {
				m.status = ""
			}
			m.refresh()

		default:
			switch msg.String() {
			case "b":
				if !m.engine.GoBack() {
					m.status = errorStyle.Render("No previous scene")
				} else {
					m.status = ""
				}
				m.refresh()

			case "r":
				m.engine.Reset()
				m.status = ""
				m.refresh()

			case "ctrl+s":
				if !m.engine.SaveGame(context.Background(), saveSlot) {
					m.status = errorStyle.Render("Save failed")
				}
				m.refresh()

			case "ctrl+l":
				if !m.engine.LoadGame(context.Background(), saveSlot) {
					m.status = errorStyle.Render("Nothing to load")
				}
				m.refresh()

			case "ctrl+e":
				data, err := m.engine.ExportJSON()
				if err == nil {
					err = clipboard.WriteAll(string(data))
				}
				if err != nil {
					m.status = errorStyle.Render("Export failed: " + err.Error())
				} else {
					m.addNotice("Game data copied to clipboard")
				}
				m.refresh()
			}
		}
	}

	m.sceneViewport, vpCmd = m.sceneViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)
	return m, tea.Batch(vpCmd, mvCmd)
}

// refresh rebuilds both panels from engine state.
func (m *PlayerUI) refresh() {
	m.sceneViewport.SetContent(m.writeScene())
	m.metaViewport.SetContent(m.writeMetadata())
}

func (m *PlayerUI) writeScene() string {
	sceneWidth := m.sceneViewport.Width - 6
	if sceneWidth < 10 {
		sceneWidth = 10
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(m.engine.Story().Title) + "\n\n")

	scene := m.engine.CurrentScene()
	if scene == nil {
		content.WriteString("The story has not started.\n")
		return content.String()
	}

	if scene.Title != "" {
		content.WriteString(sceneTitleStyle.Render(scene.Title) + "\n\n")
	}
	content.WriteString(contentStyle.Render(wordwrap.String(scene.Content, sceneWidth)) + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", sceneWidth)) + "\n\n")

	choices := m.engine.AvailableChoices()
	if len(choices) == 0 {
		content.WriteString(promptStyle.Render("The End") + "\n")
	}
	for i, c := range choices {
		line := fmt.Sprintf("%d. %s", i+1, c.Text)
		if i == m.selected {
			content.WriteString(selectedChoiceStyle.Render("▶ "+line) + "\n")
		} else {
			content.WriteString(choiceStyle.Render("  "+line) + "\n")
		}
	}

	for _, n := range m.notices {
		content.WriteString("\n" + noticeStyle.Render("• "+n))
	}
	if m.status != "" {
		content.WriteString("\n\n" + m.status)
	}

	return content.String()
}

func (m *PlayerUI) writeMetadata() string {
	gs := m.engine.Snapshot()

	var content strings.Builder
	content.WriteString(titleStyle.Render("GAME STATE") + "\n\n")

	content.WriteString("Scene:\n")
	content.WriteString(gs.CurrentScene + "\n\n")

	content.WriteString("Inventory:\n")
	if len(gs.Inventory) == 0 {
		content.WriteString("Empty\n")
	}
	for _, item := range gs.Inventory {
		content.WriteString(fmt.Sprintf("• %s x%d\n", item.ID, item.Quantity))
	}
	content.WriteString("\n")

	if len(gs.Attributes) > 0 {
		content.WriteString("Attributes:\n")
		for name, v := range gs.Attributes {
			content.WriteString(fmt.Sprintf("• %s: %d\n", titleCaser.String(name), v))
		}
		content.WriteString("\n")
	}

	visible := 0
	for name, v := range gs.Flags {
		if strings.HasPrefix(name, "__") {
			continue // engine-internal bookkeeping
		}
		if visible == 0 {
			content.WriteString("Flags:\n")
		}
		visible++
		content.WriteString(fmt.Sprintf("• %s: %v\n", name, v))
	}
	if visible > 0 {
		content.WriteString("\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• ↑/↓: Select\n")
	content.WriteString("• Enter: Choose\n")
	content.WriteString("• b: Back\n")
	content.WriteString("• r: Restart\n")
	content.WriteString("• Ctrl+S: Save\n")
	content.WriteString("• Ctrl+L: Load\n")
	content.WriteString("• Ctrl+E: Export\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}

func (m *PlayerUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				return m, nil
			}
		}
	}

	return m, nil
}

func (m *PlayerUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to quit your adventure?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m *PlayerUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	sceneWidth := int(float64(m.width)*0.70) - 4
	metaWidth := m.width - sceneWidth - 6

	scenePanel := scenePanelStyle.Width(sceneWidth).Height(m.height - 3).Render(
		m.sceneViewport.View(),
	)
	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, scenePanel, metaPanel)
}

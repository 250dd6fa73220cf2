package main

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/reflow/wordwrap"

	"github.com/azurepeak/cultivation-engine/pkg/game"
)

const (
	AgentName       = "Narrator"
	PlaceHolderText = "What does your cultivator do?"
)

// startPhase tracks the startup modal flow.
type startPhase int

const (
	startMenu startPhase = iota
	startNameEntry
	startLoadEntry
	startCreating
	startDone
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	gameState    *game.FullGameState
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Startup modal state
	phase        startPhase
	menuSelected int

	// Quit confirmation state
	showQuitModal bool

	// Turn progress state
	progressTick int
	statusLine   string

	notice string
}

type turnResultMsg struct {
	gameState *game.FullGameState
	err       error
}

type gameReadyMsg struct {
	gameState *game.FullGameState
	err       error
}

type statusMsg struct {
	status *statusResponse
	err    error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
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

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

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

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	// Narrative markup spans mapped onto terminal colors
	techniqueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220")) // yellow
	dangerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red
	spiritualStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))  // blue
)

var spanRe = regexp.MustCompile(`<span class="text-(yellow-400|red-500|blue-400)">(.*?)</span>`)

// renderMarkup converts the narrative span conventions to lipgloss colors.
func renderMarkup(text string) string {
	return spanRe.ReplaceAllStringFunc(text, func(match string) string {
		parts := spanRe.FindStringSubmatch(match)
		switch parts[1] {
		case "yellow-400":
			return techniqueStyle.Render(parts[2])
		case "red-500":
			return dangerStyle.Render(parts[2])
		case "blue-400":
			return spiritualStyle.Render(parts[2])
		}
		return parts[2]
	})
}

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:       cfg,
		client:       client,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
		ready:        false,
		phase:        startMenu,
	}
}

func writeMetadata(gs *game.FullGameState) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("CULTIVATOR") + "\n\n")

	player := gs.Player()
	if player != nil {
		content.WriteString(player.Name + "\n")
		content.WriteString(fmt.Sprintf("%s (Lv %d)\n\n", game.StageName(player.Cultivation.Level), player.Cultivation.Level))
		content.WriteString(fmt.Sprintf("Health:       %d/%d\n", player.Health, player.MaxHealth))
		content.WriteString(fmt.Sprintf("Energy:       %d/%d\n", player.Energy, player.MaxEnergy))
		content.WriteString(fmt.Sprintf("Satisfaction: %d\n\n", player.Satisfaction))
	}

	content.WriteString(fmt.Sprintf("Year %d, Month %d, Day %d\n\n", gs.WorldData.Year, gs.WorldData.Month, gs.WorldData.Day))

	content.WriteString("Act:\n")
	content.WriteString(gs.CurrentAct.Name + "\n\n")

	if gs.GameID != nil {
		content.WriteString("Save ID:\n")
		content.WriteString(gs.GameID.String()[:8] + "...\n\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /copy: Copy save ID\n")

	return content.String()
}

// writeChatContent rebuilds the chat content for the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6

	var content strings.Builder
	content.WriteString(titleStyle.Render("CULTIVATION ENGINE") + "\n\n")
	content.WriteString("Describe your actions below to shape your path to immortality.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 10))) + "\n\n")

	if m.gameState != nil {
		if len(m.gameState.NarrativeHistory) == 0 {
			content.WriteString(formatNarratorText(m.gameState.CurrentScene.Text, chatWidth) + "\n\n")
		}
		for _, entry := range m.gameState.NarrativeHistory {
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(entry.PlayerInput, chatWidth-6) + "\n\n")
			content.WriteString(formatNarratorText(entry.Text, chatWidth) + "\n\n")
		}
	}

	if m.notice != "" {
		content.WriteString(loadingStyle.Render(m.notice) + "\n\n")
	}
	if m.err != nil {
		content.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
	}
	if m.loading {
		content.WriteString(m.renderProgressBar())
		if m.statusLine != "" {
			content.WriteString("\n" + loadingStyle.Render(m.statusLine))
		}
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func formatNarratorText(text string, width int) string {
	rendered := renderMarkup(strings.TrimSpace(text))
	wrapped := wordwrap.String(rendered, width-len(AgentName)-2)
	return narratorStyle.Render(AgentName+": ") + wrapped
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.phase != startDone {
		return m.updateStartModal(msg)
	}

	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.writeChatContent()
		if m.gameState != nil {
			m.metaViewport.SetContent(writeMetadata(m.gameState))
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.loading = true
			m.err = nil
			m.notice = ""
			m.progressTick = 0
			m.statusLine = ""
			m.writeChatContent()

			return m, tea.Batch(m.sendTurn(input), progressTick(), m.pollStatus())
		}

	case turnResultMsg:
		m.loading = false
		m.statusLine = ""
		if msg.err != nil {
			switch msg.err.(type) {
			case errTurnBusy, errModelLoading:
				m.notice = msg.err.Error()
			default:
				m.err = msg.err
			}
		} else {
			m.gameState = msg.gameState
			m.metaViewport.SetContent(writeMetadata(m.gameState))
		}
		m.writeChatContent()
		return m, nil

	case statusMsg:
		if m.loading && msg.err == nil && msg.status != nil {
			m.statusLine = describeStatus(msg.status)
			m.writeChatContent()
			return m, m.pollStatusAfter(500 * time.Millisecond)
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func describeStatus(s *statusResponse) string {
	switch s.Status {
	case "parsing":
		return "Interpreting your action..."
	case "generating-act":
		return "A new chapter begins..."
	case "generating-scene":
		return "The story unfolds..."
	case "saving":
		return "Recording your progress..."
	default:
		if s.ModelProgress < 1 {
			return fmt.Sprintf("%s (%.0f%%)", s.ModelMessage, s.ModelProgress*100)
		}
		return ""
	}
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
	m.ready = true
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /help - Show this help
• /copy - Copy the save ID to the clipboard
• Ctrl+C - Quit game

How to play:
• Type your actions and press Enter
• The narrator will respond with the next scene
• Meditate to recover energy and advance your cultivation
`
		currentContent := m.chatViewport.View()
		m.chatViewport.SetContent(currentContent + titleStyle.Render("Help:") + helpText + "\n")
		m.chatViewport.GotoBottom()

	case "/copy":
		if m.gameState != nil && m.gameState.GameID != nil {
			if err := clipboard.WriteAll(m.gameState.GameID.String()); err != nil {
				m.err = fmt.Errorf("failed to copy save ID: %w", err)
			} else {
				m.notice = "Save ID copied to clipboard."
			}
			m.writeChatContent()
		}
	}

	m.textarea.Reset()
	return m, nil
}

func (m ConsoleUI) sendTurn(input string) tea.Cmd {
	return func() tea.Msg {
		gs, err := postTurn(m.client, m.config.APIBaseURL, *m.gameState.GameID, input)
		return turnResultMsg{gs, err}
	}
}

func (m ConsoleUI) pollStatus() tea.Cmd {
	return func() tea.Msg {
		status, err := getStatus(m.client, m.config.APIBaseURL, *m.gameState.GameID)
		return statusMsg{status, err}
	}
}

func (m ConsoleUI) pollStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		status, err := getStatus(m.client, m.config.APIBaseURL, *m.gameState.GameID)
		return statusMsg{status, err}
	})
}

func (m ConsoleUI) updateStartModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case gameReadyMsg:
		if msg.err != nil {
			m.err = msg.err
			m.phase = startMenu
			return m, nil
		}
		m.gameState = msg.gameState
		m.phase = startDone
		m.err = nil
		if m.width > 0 && m.height > 0 {
			m.resize()
		}
		m.textarea.Reset()
		m.textarea.Placeholder = PlaceHolderText
		m.textarea.Focus()
		m.writeChatContent()
		m.metaViewport.SetContent(writeMetadata(m.gameState))
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.phase == startCreating {
			if msg.Type == tea.KeyCtrlC {
				return m, tea.Quit
			}
			return m, nil
		}

		switch m.phase {
		case startMenu:
			switch msg.Type {
			case tea.KeyCtrlC, tea.KeyEsc:
				return m, tea.Quit
			case tea.KeyUp:
				if m.menuSelected > 0 {
					m.menuSelected--
				}
			case tea.KeyDown:
				if m.menuSelected < 1 {
					m.menuSelected++
				}
			case tea.KeyEnter:
				m.err = nil
				if m.menuSelected == 0 {
					m.phase = startNameEntry
					m.textarea.Placeholder = "Cultivator name (blank for Li Wei)"
				} else {
					m.phase = startLoadEntry
					m.textarea.Placeholder = "Paste your save ID"
				}
				m.textarea.Reset()
				m.textarea.Focus()
				return m, textarea.Blink
			}

		case startNameEntry, startLoadEntry:
			switch msg.Type {
			case tea.KeyCtrlC:
				return m, tea.Quit
			case tea.KeyEsc:
				m.phase = startMenu
				return m, nil
			case tea.KeyEnter:
				value := strings.TrimSpace(m.textarea.Value())
				if m.phase == startNameEntry {
					m.phase = startCreating
					return m, m.createNewGame(value)
				}
				id, err := uuid.Parse(value)
				if err != nil {
					m.err = fmt.Errorf("invalid save ID")
					return m, nil
				}
				m.phase = startCreating
				return m, m.loadExistingGame(id)
			}
		}
	}

	if m.phase == startNameEntry || m.phase == startLoadEntry {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m ConsoleUI) createNewGame(playerName string) tea.Cmd {
	return func() tea.Msg {
		gs, err := createGame(m.client, m.config.APIBaseURL, playerName)
		return gameReadyMsg{gs, err}
	}
}

func (m ConsoleUI) loadExistingGame(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		gs, err := loadGame(m.client, m.config.APIBaseURL, id)
		return gameReadyMsg{gs, err}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
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
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the Mortal Realm?"))
	content.WriteString("\n\n")
	content.WriteString("Your progress is saved. The save ID lets you return.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(56).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderStartModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch m.phase {
	case startCreating:
		content.WriteString(modalTitleStyle.Render("Preparing Your Journey..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Awakening your spiritual roots..."))
	case startNameEntry, startLoadEntry:
		if m.phase == startNameEntry {
			content.WriteString(modalTitleStyle.Render("Name Your Cultivator"))
		} else {
			content.WriteString(modalTitleStyle.Render("Load a Saved Game"))
		}
		content.WriteString("\n\n")
		content.WriteString(m.textarea.View())
		content.WriteString("\n\n")
		if m.err != nil {
			content.WriteString(errorStyle.Render(m.err.Error()) + "\n\n")
		}
		content.WriteString(promptStyle.Render("Enter to confirm, Esc to go back"))
	default:
		content.WriteString(modalTitleStyle.Render("CULTIVATION ENGINE"))
		content.WriteString("\n\n")
		options := []string{"Begin a new journey", "Load a saved game"}
		for i, option := range options {
			if i == m.menuSelected {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", option)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", option)))
			}
			content.WriteString("\n")
		}
		content.WriteString("\n")
		if m.err != nil {
			content.WriteString(errorStyle.Render(m.err.Error()) + "\n\n")
		}
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.phase != startDone {
		return m.renderStartModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 10))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar draws an animated bar while a turn is in flight.
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		switch {
		case i < filled:
			bar.WriteString("█")
		case i == filled && frame%4 < 2:
			bar.WriteString("▓")
		default:
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}

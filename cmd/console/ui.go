package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/sologm/engine/pkg/narrative"
)

const (
	PlaceHolderText = "Log an event, or type /help for commands..."

	newGameEntry = "[ start a new game ]"
)

// entryKind drives per-kind styling when the transcript is re-rendered
// for a new width.
type entryKind int

const (
	entryInfo entryKind = iota
	entryEvent
	entryRoll
	entryOracle
	entryError
)

type transcriptEntry struct {
	kind entryKind
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config     *ConsoleConfig
	client     *apiClient
	ctx        *activeContext
	currentSet *narrative.InterpretationSet
	entries    []transcriptEntry

	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Game selection state
	showGameModal bool
	namingGame    bool
	gameName      string
	games         []narrative.Game
	selectedGame  int
	loadingGames  bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type gamesLoadedMsg struct {
	games []narrative.Game
	err   error
}

type gameReadyMsg struct {
	ctx    *activeContext
	events []narrative.Event
	err    error
}

type eventAddedMsg struct {
	event *narrative.Event
	err   error
}

type rollMsg struct {
	roll *narrative.DiceRoll
	err  error
}

type oracleMsg struct {
	set *narrative.InterpretationSet
	err error
}

type selectionMsg struct {
	result *selectResult
	err    error
}

type sceneChangedMsg struct {
	ctx *activeContext
	err error
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

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	oracleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	rollStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")) // purple

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
)

func NewConsoleUI(cfg *ConsoleConfig, client *apiClient) ConsoleUI {
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
		config:        cfg,
		client:        client,
		textarea:      ta,
		chatViewport:  chatVp,
		metaViewport:  metaVp,
		ready:         false,
		showGameModal: true,
		loadingGames:  true,
		selectedGame:  0,
	}
}

func (m *ConsoleUI) appendEntry(kind entryKind, text string) {
	m.entries = append(m.entries, transcriptEntry{kind: kind, text: text})
}

// writeChatContent rebuilds the transcript for the current viewport
// width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6

	var content strings.Builder
	content.WriteString(titleStyle.Render("SOLO GM") + "\n\n")
	content.WriteString("Log events, roll dice, and consult the oracle.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	for _, e := range m.entries {
		wrapped := wordwrap.String(e.text, max(chatWidth-6, 10))
		switch e.kind {
		case entryEvent:
			content.WriteString(eventStyle.Render(wrapped))
		case entryRoll:
			content.WriteString(rollStyle.Render(wrapped))
		case entryOracle:
			content.WriteString(oracleStyle.Render(wrapped))
		case entryError:
			content.WriteString(errorStyle.Render(wrapped))
		default:
			content.WriteString(wrapped)
		}
		content.WriteString("\n\n")
	}

	if m.loading {
		content.WriteString(loadingStyle.Render("Consulting the oracle...") + "\n")
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) writeMetadata() {
	if m.ctx == nil {
		return
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("ACTIVE CONTEXT") + "\n\n")

	content.WriteString("Game:\n")
	content.WriteString(m.ctx.Game.Name + "\n\n")

	content.WriteString("Act:\n")
	content.WriteString(fmt.Sprintf("%d - %s\n\n", m.ctx.Act.Sequence, m.ctx.Act.DisplayTitle()))

	content.WriteString("Scene:\n")
	content.WriteString(fmt.Sprintf("%d - %s (%s)\n\n", m.ctx.Scene.Sequence, m.ctx.Scene.Title, m.ctx.Scene.Status))

	if m.currentSet != nil {
		content.WriteString("Oracle:\n")
		content.WriteString(fmt.Sprintf("%d interpretations\n\n", len(m.currentSet.Interpretations)))
	}

	content.WriteString("Commands:\n")
	content.WriteString("• <text>: Log event\n")
	content.WriteString("• /roll 2d6+1 [why]\n")
	content.WriteString("• /oracle q | result\n")
	content.WriteString("• /select N\n")
	content.WriteString("• /retry\n")
	content.WriteString("• /scene title\n")
	content.WriteString("• /complete\n")
	content.WriteString("• /copy\n")
	content.WriteString("• /help\n")
	content.WriteString("• Ctrl+C: Quit\n")

	m.metaViewport.SetContent(content.String())
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showGameModal {
		return m.loadGames()
	}
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showGameModal {
		return m.updateGameModal(msg)
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
		m.resizePanels()
		m.writeChatContent()
		m.writeMetadata()
		m.ready = true

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
			m.textarea.Reset()

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			// Plain text is a manual event
			return m, m.addEvent(input)
		}

	case eventAddedMsg:
		if msg.err != nil {
			m.appendEntry(entryError, "Error: "+msg.err.Error())
		} else {
			m.appendEntry(entryEvent, "Event: "+msg.event.Description)
		}
		m.writeChatContent()

	case rollMsg:
		if msg.err != nil {
			m.appendEntry(entryError, "Error: "+msg.err.Error())
		} else {
			text := fmt.Sprintf("Roll %s: %v", msg.roll.Notation, msg.roll.Results)
			if msg.roll.Modifier != 0 {
				text += fmt.Sprintf(" %+d", msg.roll.Modifier)
			}
			text += fmt.Sprintf(" = %d", msg.roll.Total)
			if msg.roll.Reason != "" {
				text += " (" + msg.roll.Reason + ")"
			}
			m.appendEntry(entryRoll, text)
		}
		m.writeChatContent()

	case oracleMsg:
		m.loading = false
		if msg.err != nil {
			m.appendEntry(entryError, "Error: "+msg.err.Error())
		} else {
			m.currentSet = msg.set
			m.appendEntry(entryOracle, renderSet(msg.set))
			m.writeMetadata()
		}
		m.writeChatContent()

	case selectionMsg:
		if msg.err != nil {
			m.appendEntry(entryError, "Error: "+msg.err.Error())
		} else {
			m.appendEntry(entryOracle, "Selected: "+msg.result.Interpretation.Title)
			m.appendEntry(entryEvent, "Event: "+msg.result.Event.Description)
		}
		m.writeChatContent()

	case sceneChangedMsg:
		if msg.err != nil {
			m.appendEntry(entryError, "Error: "+msg.err.Error())
		} else {
			m.ctx = msg.ctx
			m.currentSet = nil
			m.appendEntry(entryInfo, fmt.Sprintf("Scene %d: %s", msg.ctx.Scene.Sequence, msg.ctx.Scene.Title))
			m.writeMetadata()
		}
		m.writeChatContent()

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

func (m *ConsoleUI) resizePanels() {
	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

// renderSet renders an interpretation set as numbered options.
func renderSet(set *narrative.InterpretationSet) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Oracle: %s — %s\n", set.Context, set.OracleResults))
	for i, interp := range set.Interpretations {
		sb.WriteString(fmt.Sprintf("\n%d. %s\n%s\n", i+1, interp.Title, interp.Description))
	}
	sb.WriteString("\nUse /select N to choose, or /retry for different interpretations.")
	return sb.String()
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.SplitN(input, " ", 2)
	cmd := strings.ToLower(parts[0])
	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	switch cmd {
	case "/help":
		m.appendEntry(entryInfo, `Commands:
/roll <XdY+Z> [reason] - Roll dice
/oracle <question> | <oracle result> - Interpret an oracle result
/select <N> - Choose interpretation N from the current set
/retry - Ask for different interpretations
/scene <title> [| description] - Start a new scene
/complete - Mark the current scene completed
/copy - Copy the current interpretations to the clipboard
Plain text logs a manual event.`)
		m.writeChatContent()
		return m, nil

	case "/roll":
		if args == "" {
			m.appendEntry(entryError, "Usage: /roll 2d6+1 [reason]")
			m.writeChatContent()
			return m, nil
		}
		fields := strings.SplitN(args, " ", 2)
		notation := fields[0]
		reason := ""
		if len(fields) > 1 {
			reason = strings.TrimSpace(fields[1])
		}
		return m, m.rollDice(notation, reason)

	case "/oracle":
		question, results, ok := strings.Cut(args, "|")
		if !ok || strings.TrimSpace(question) == "" || strings.TrimSpace(results) == "" {
			m.appendEntry(entryError, "Usage: /oracle <question> | <oracle result>")
			m.writeChatContent()
			return m, nil
		}
		m.loading = true
		m.progressTick = 0
		m.writeChatContent()
		return m, tea.Batch(m.interpret(strings.TrimSpace(question), strings.TrimSpace(results)), progressTick())

	case "/retry":
		if m.currentSet == nil {
			m.appendEntry(entryError, "No interpretation set to retry. Use /oracle first.")
			m.writeChatContent()
			return m, nil
		}
		m.loading = true
		m.progressTick = 0
		m.writeChatContent()
		return m, tea.Batch(m.retry(), progressTick())

	case "/select":
		if m.currentSet == nil {
			m.appendEntry(entryError, "No interpretation set. Use /oracle first.")
			m.writeChatContent()
			return m, nil
		}
		var n int
		if _, err := fmt.Sscanf(args, "%d", &n); err != nil || n < 1 || n > len(m.currentSet.Interpretations) {
			m.appendEntry(entryError, fmt.Sprintf("Usage: /select N (1-%d)", len(m.currentSet.Interpretations)))
			m.writeChatContent()
			return m, nil
		}
		interp := m.currentSet.Interpretations[n-1]
		return m, m.selectInterpretation(m.currentSet.ID, interp.ID)

	case "/scene":
		if args == "" {
			m.appendEntry(entryError, "Usage: /scene <title> [| description]")
			m.writeChatContent()
			return m, nil
		}
		title, description, _ := strings.Cut(args, "|")
		return m, m.newScene(strings.TrimSpace(title), strings.TrimSpace(description))

	case "/complete":
		return m, m.complete()

	case "/copy":
		if m.currentSet == nil {
			m.appendEntry(entryError, "Nothing to copy.")
		} else if err := clipboard.WriteAll(renderSet(m.currentSet)); err != nil {
			m.appendEntry(entryError, "Clipboard error: "+err.Error())
		} else {
			m.appendEntry(entryInfo, "Interpretations copied to clipboard.")
		}
		m.writeChatContent()
		return m, nil

	default:
		m.appendEntry(entryError, "Unknown command. Type /help for a list.")
		m.writeChatContent()
		return m, nil
	}
}

func (m ConsoleUI) addEvent(description string) tea.Cmd {
	sceneID := m.ctx.Scene.ID
	return func() tea.Msg {
		event, err := m.client.addEvent(sceneID, description)
		return eventAddedMsg{event, err}
	}
}

func (m ConsoleUI) rollDice(notation, reason string) tea.Cmd {
	sceneID := m.ctx.Scene.ID
	return func() tea.Msg {
		roll, err := m.client.rollDice(sceneID, notation, reason)
		return rollMsg{roll, err}
	}
}

func (m ConsoleUI) interpret(question, results string) tea.Cmd {
	sceneID := m.ctx.Scene.ID
	return func() tea.Msg {
		set, err := m.client.interpret(sceneID, question, results)
		return oracleMsg{set, err}
	}
}

func (m ConsoleUI) retry() tea.Cmd {
	sceneID := m.ctx.Scene.ID
	return func() tea.Msg {
		set, err := m.client.retryInterpretations(sceneID)
		return oracleMsg{set, err}
	}
}

func (m ConsoleUI) selectInterpretation(setID, interpretationID string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.client.selectInterpretation(setID, interpretationID)
		return selectionMsg{result, err}
	}
}

func (m ConsoleUI) newScene(title, description string) tea.Cmd {
	actID := m.ctx.Act.ID
	client := m.client
	return func() tea.Msg {
		if _, err := client.createScene(actID, title, description); err != nil {
			return sceneChangedMsg{nil, err}
		}
		ctx, err := client.getContext()
		return sceneChangedMsg{ctx, err}
	}
}

func (m ConsoleUI) complete() tea.Cmd {
	sceneID := m.ctx.Scene.ID
	client := m.client
	return func() tea.Msg {
		if _, err := client.completeScene(sceneID); err != nil {
			return sceneChangedMsg{nil, err}
		}
		ctx, err := client.getContext()
		return sceneChangedMsg{ctx, err}
	}
}

func (m ConsoleUI) loadGames() tea.Cmd {
	return func() tea.Msg {
		games, err := m.client.listGames()
		return gamesLoadedMsg{games, err}
	}
}

// setupGame activates the chosen game and makes sure it has an active
// act and scene, creating them on first play.
func (m ConsoleUI) setupGame(gameID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		if _, err := client.activateGame(gameID); err != nil {
			return gameReadyMsg{err: err}
		}

		ctx, err := client.getContext()
		if err != nil {
			// Fresh game: build the first act and scene
			act, actErr := client.createAct(gameID, nil)
			if actErr != nil {
				return gameReadyMsg{err: actErr}
			}
			if _, sceneErr := client.createScene(act.ID, "Opening Scene", ""); sceneErr != nil {
				return gameReadyMsg{err: sceneErr}
			}
			ctx, err = client.getContext()
			if err != nil {
				return gameReadyMsg{err: err}
			}
		}

		events, err := client.listEvents(ctx.Scene.ID, 20)
		if err != nil {
			return gameReadyMsg{err: err}
		}
		return gameReadyMsg{ctx: ctx, events: events}
	}
}

func (m ConsoleUI) createNewGame(name string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		game, err := client.createGame(name, "")
		if err != nil {
			return gameReadyMsg{err: err}
		}
		return m.setupGame(game.ID)()
	}
}

func (m ConsoleUI) updateGameModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case gamesLoadedMsg:
		m.loadingGames = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.games = msg.games
		}

	case gameReadyMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.ctx = msg.ctx
		m.showGameModal = false
		m.namingGame = false

		// Seed the transcript with the scene's recent events, oldest
		// first.
		for i := len(msg.events) - 1; i >= 0; i-- {
			m.entries = append(m.entries, transcriptEntry{kind: entryEvent, text: "Event: " + msg.events[i].Description})
		}

		if m.width > 0 && m.height > 0 {
			m.resizePanels()
		}
		m.writeChatContent()
		m.writeMetadata()
		m.textarea.Focus()
		m.ready = true
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.loadingGames || m.loading {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		if m.namingGame {
			switch msg.Type {
			case tea.KeyCtrlC, tea.KeyEsc:
				m.namingGame = false
				m.gameName = ""
				return m, nil
			case tea.KeyEnter:
				name := strings.TrimSpace(m.gameName)
				if name == "" {
					return m, nil
				}
				m.loading = true
				m.err = nil
				return m, m.createNewGame(name)
			case tea.KeyBackspace:
				if len(m.gameName) > 0 {
					m.gameName = m.gameName[:len(m.gameName)-1]
				}
			case tea.KeySpace:
				m.gameName += " "
			case tea.KeyRunes:
				m.gameName += string(msg.Runes)
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.selectedGame > 0 {
				m.selectedGame--
			}
		case tea.KeyDown:
			if m.selectedGame < len(m.games) {
				m.selectedGame++
			}
		case tea.KeyEnter:
			if m.selectedGame == len(m.games) {
				m.namingGame = true
				m.gameName = ""
				m.err = nil
				return m, nil
			}
			m.loading = true
			m.err = nil
			return m, m.setupGame(m.games[m.selectedGame].ID)
		}
	}

	return m, nil
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
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Your game is saved. Leave the table?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderGameModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.loadingGames:
		content.WriteString(modalTitleStyle.Render("Loading Games..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Fetching your games..."))
	case m.loading:
		content.WriteString(modalTitleStyle.Render("Setting Up..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Preparing the table..."))
	case m.namingGame:
		content.WriteString(modalTitleStyle.Render("New Game"))
		content.WriteString("\n\n")
		content.WriteString("Name: " + m.gameName + "▌")
		content.WriteString("\n\n")
		content.WriteString(promptStyle.Render("Enter to create, Esc to go back"))
		if m.err != nil {
			content.WriteString("\n\n" + errorStyle.Render(m.err.Error()))
		}
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(m.err.Error()))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	default:
		content.WriteString(modalTitleStyle.Render("Select a Game"))
		content.WriteString("\n\n")

		for i, game := range m.games {
			label := game.Name
			if game.IsActive {
				label += " (active)"
			}
			if i == m.selectedGame {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + label))
			} else {
				content.WriteString(modalItemStyle.Render("  " + label))
			}
			content.WriteString("\n")
		}
		if m.selectedGame == len(m.games) {
			content.WriteString(modalSelectedItemStyle.Render("▶ " + newGameEntry))
		} else {
			content.WriteString(modalItemStyle.Render("  " + newGameEntry))
		}
		content.WriteString("\n\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showGameModal {
		return m.renderGameModal()
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
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
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
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}

package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// TUIModel represents the Bubble Tea model for the game client
type TUIModel struct {
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog      []string
	actionResult chan ActionResult
	quitSignal   chan bool
	quitting     bool
	focusedPane  int // 0 = log, 1 = input

	// Display state (event-driven, all of it arrives over the wire)
	currentPool   int64
	minBid        int64
	claimBidder   string
	claimDigit    int
	claimQuantity int
	isMyTurn      bool
	pendingReveal bool

	// Room info for sidebar
	roomID       string
	serialNumber int
	mySecret     int
	showSecret   bool
	players      []PlayerInfo

	// Dimensions
	width       int
	height      int
	initialized bool // Track if viewport has been properly sized

	// Test mode
	testMode      bool
	capturedLog   []string               // For test assertions
	eventCallback func(eventType string) // Callback for test event synchronization
}

// ActionResult represents the result of a user action
type ActionResult struct {
	Action   string
	Args     []string
	Continue bool
	Error    error
}

// QuitMsg is a custom message to signal quit
type QuitMsg struct{}

// PlayerInfo holds basic player information for the sidebar
type PlayerInfo struct {
	Name     string
	Staked   int64
	Revealed bool
}

// NewTUIModel creates a new TUI model for network mode
func NewTUIModel(logger *log.Logger) *TUIModel {
	return NewTUIModelWithOptions(logger, false)
}

// NewTUIModelWithOptions creates a new TUI model with test mode option
func NewTUIModelWithOptions(logger *log.Logger, testMode bool) *TUIModel {
	// Create viewport for game log with minimal initial size
	// Will be properly sized when WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	// Create textinput for action input
	ti := textinput.New()
	ti.Placeholder = "Enter a command (/rooms, /join <room>, /start, etc.)"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &TUIModel{
		logger:       logger.WithPrefix("tui"),
		logViewport:  vp,
		actionInput:  ti,
		gameLog:      []string{},
		actionResult: make(chan ActionResult, 1),
		quitSignal:   make(chan bool, 1),
		focusedPane:  1, // Start with input focused
		showSecret:   true,
		testMode:     testMode,
		capturedLog:  []string{},
	}
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listenForQuit())
}

// listenForQuit returns a command that listens for quit signals
func (m *TUIModel) listenForQuit() tea.Cmd {
	return func() tea.Msg {
		<-m.quitSignal
		return QuitMsg{}
	}
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case QuitMsg:
		m.quitting = true
		return m, tea.Sequence(tea.ClearScreen, tea.Quit)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			m.actionResult <- ActionResult{Action: "quit", Continue: false}
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			// Switch focus between log and input
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 { // Only process enter in input pane
				action := strings.TrimSpace(m.actionInput.Value())
				// Process both empty and non-empty actions
				m.processAction(action)
				m.actionInput.SetValue("")
			}
		case "up", "k":
			if m.focusedPane == 0 { // Log pane focused
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 { // Log pane focused
				m.logViewport.ScrollDown(1)
			}
		case "pgup", "b":
			if m.focusedPane == 0 { // Log pane focused
				m.logViewport.HalfPageUp()
			}
		case "pgdown", "f":
			if m.focusedPane == 0 { // Log pane focused
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == 0 { // Log pane focused
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 { // Log pane focused
				m.logViewport.GotoBottom()
			}
		}
	}

	// Update components
	var cmd tea.Cmd

	// Only update input if it's focused
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Always update viewport (for scrolling)
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}

	// Don't render until we have valid dimensions
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// Action pane (bottom, full width)
	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	calculatedActionWidth := m.width - 2       // Full width minus border
	calculatedActionHeight := actionHeight - 2 // Content height minus border

	// Ensure action pane dimensions are valid (minimum 1x1)
	if calculatedActionWidth < 1 {
		calculatedActionWidth = 1
	}
	if calculatedActionHeight < 1 {
		calculatedActionHeight = 1
	}

	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(calculatedActionWidth).
		Height(calculatedActionHeight)

	if m.focusedPane == 1 {
		actionStyle = actionStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	actionPane := actionStyle.Render(actionContent)

	// Sidebar pane (right side of log pane, same height as log pane)
	sidebarContent := m.renderSidebarPane()
	sidebarWidth := lipgloss.Width(sidebarContent)

	calculatedSidebarWidth := 25
	if sidebarWidth > calculatedSidebarWidth {
		calculatedSidebarWidth = sidebarWidth
	}

	calculatedSidebarHeight := m.height - actionHeight - 4 // Account for border x 2 and action pane

	// Ensure sidebar dimensions are valid (minimum 1x1)
	if calculatedSidebarWidth < 1 {
		calculatedSidebarWidth = 1
	}
	if calculatedSidebarHeight < 1 {
		calculatedSidebarHeight = 1
	}

	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(calculatedSidebarWidth).
		Height(calculatedSidebarHeight)

	sidebarPane := sidebarStyle.Render(sidebarContent)

	// Log pane (top, fills height minus action pane)
	logContent := m.renderLogPane()
	m.logViewport.SetContent(logContent)

	calculatedLogWidth := m.width - calculatedSidebarWidth - 4 // Account for border x 2 and sidebar
	calculatedLogHeight := m.height - actionHeight - 4         // Account for border x 2 and action pane

	// Ensure viewport dimensions are valid (minimum 1x1)
	if calculatedLogWidth < 1 {
		calculatedLogWidth = 1
	}
	if calculatedLogHeight < 1 {
		calculatedLogHeight = 1
	}

	m.logViewport.Width = calculatedLogWidth
	m.logViewport.Height = calculatedLogHeight

	// On first proper sizing, reset to top to avoid starting scrolled down
	if !m.initialized && calculatedLogWidth > 1 && calculatedLogHeight > 1 {
		m.logViewport.GotoTop()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(calculatedLogWidth).
		Height(calculatedLogHeight)

	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	// Top row (log pane + sidebar pane)
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)

	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderLogPane renders the game log pane content
func (m *TUIModel) renderLogPane() string {
	return strings.Join(m.gameLog, "\n")
}

// renderSidebarPane creates the sidebar content
func (m *TUIModel) renderSidebarPane() string {
	var content strings.Builder

	// Show pool and minimum bid info at top
	content.WriteString(WarningStyle.Render(fmt.Sprintf("Pool: $%d", m.currentPool)))
	if m.minBid > 0 {
		content.WriteString(" | ")
		content.WriteString(WarningStyle.Render(fmt.Sprintf("Min: $%d", m.minBid)))
	}
	content.WriteString("\n")
	if m.claimBidder != "" {
		content.WriteString(WarningStyle.Render(
			fmt.Sprintf("Claim: %d x %d (%s)", m.claimQuantity, m.claimDigit, m.claimBidder)))
		content.WriteString("\n")
	}
	content.WriteString("\n")

	// Show players list if we have room info
	if m.roomID != "" && len(m.players) > 0 {
		content.WriteString(InfoStyle.Render("Players in " + m.roomID + ":"))
		content.WriteString("\n")
		for _, player := range m.players {
			marker := ""
			if player.Revealed {
				marker = " (revealed)"
			}
			content.WriteString(fmt.Sprintf("  %s: $%d%s", player.Name, player.Staked, marker))
			content.WriteString("\n")
		}
	}

	// Show own secret once dealt
	if m.showSecret && m.mySecret != 0 {
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render("Your secret: "))
		content.WriteString(m.formatSecret(m.mySecret))
		content.WriteString("\n")
	}

	return content.String()
}

// renderActionPane renders the action input pane
func (m *TUIModel) renderActionPane() string {
	var content strings.Builder

	// Show current turn info
	if m.isMyTurn || m.pendingReveal {
		content.WriteString(m.renderTurnInfo())
		content.WriteString("\n")

		// Show available actions
		actions := m.renderAvailableActions()
		content.WriteString(actions)
		content.WriteString("\n")
	} else {
		// In the lobby or waiting for other players
		content.WriteString(TurnInfoStyle.Render("Waiting..."))
		content.WriteString("\n")
	}

	// Update input placeholder based on game state and show input field
	if m.pendingReveal {
		m.actionInput.Placeholder = "Enter 'reveal' to show your secret"
	} else if m.isMyTurn {
		m.actionInput.Placeholder = "Enter your action (bid 6 3, bid 6 3 25, liar, etc.)"
	} else {
		m.actionInput.Placeholder = "Enter a command (/rooms, /join <room>, /start, etc.)"
	}

	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	// Show help text
	if m.focusedPane == 0 {
		content.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Render(
			"Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		// Different help text based on game state
		if !m.isMyTurn && !m.pendingReveal {
			// In the lobby or waiting - minimal help
			content.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Render(
				"Tab to scroll log • Ctrl+C to quit"))
		} else {
			// During a game - player's turn
			content.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Render(
				"Tab to scroll log • Enter to submit • Ctrl+C to quit"))
		}
	}

	// Return content without styling - let the parent handle sizing and focus
	return content.String()
}

// renderTurnInfo renders the player's secret and the pool when they must act
func (m *TUIModel) renderTurnInfo() string {
	pool := fmt.Sprintf("$%d", m.currentPool)
	if m.showSecret && m.mySecret != 0 {
		return TurnInfoStyle.Render(
			fmt.Sprintf("Secret: %s  Pool: %s", m.formatSecret(m.mySecret), pool))
	}
	return TurnInfoStyle.Render(fmt.Sprintf("Pool: %s", pool))
}

// renderAvailableActions renders the actions the current state allows
func (m *TUIModel) renderAvailableActions() string {
	var actions []string

	if m.isMyTurn {
		actions = append(actions, WarningStyle.Render("[bid <digit> <quantity> [stake]]"))
		if m.claimBidder != "" {
			actions = append(actions, ErrorStyle.Render("[liar]"))
		}
	}
	if m.pendingReveal {
		actions = append(actions, SuccessStyle.Render("[reveal]"))
	}

	// Fallback if no valid actions (shouldn't happen)
	if len(actions) == 0 {
		actions = append(actions, ErrorStyle.Render("[no actions available]"))
	}

	return ActionsStyle.Render("Actions: " + strings.Join(actions, " "))
}

// formatSecret renders a secret, highlighting digits the standing claim names
func (m *TUIModel) formatSecret(secret int) string {
	digits := strconv.Itoa(secret)
	if m.claimBidder == "" {
		return SecretStyle.Render(digits)
	}

	claimed := byte('0' + byte(m.claimDigit))
	var formatted []string
	for i := 0; i < len(digits); i++ {
		ch := string(digits[i])
		if digits[i] == claimed {
			formatted = append(formatted, MatchedDigitStyle.Render(ch))
		} else {
			formatted = append(formatted, SecretStyle.Render(ch))
		}
	}

	return strings.Join(formatted, "")
}

// AddLogEntry adds an entry to the game log
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	// In test mode, also capture the log entry
	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return // Skip UI updates in test mode
	}

	// Update content and auto-scroll to bottom
	content := strings.Join(m.gameLog, "\n")
	m.logViewport.SetContent(content)

	// Only call GotoBottom if viewport has valid dimensions
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// AddLogEntryAndScrollToShow adds an entry and scrolls to show it at the top
func (m *TUIModel) AddLogEntryAndScrollToShow(entry string) {
	m.gameLog = append(m.gameLog, entry)

	// In test mode, also capture the log entry
	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return // Skip UI updates in test mode
	}

	content := strings.Join(m.gameLog, "\n")
	m.logViewport.SetContent(content)

	// Scroll to show the new entry at the top of the viewport
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		// Calculate line position (number of previous lines)
		targetLine := len(m.gameLog) - 1
		// Set the viewport position to show this line at the top
		m.logViewport.SetYOffset(targetLine)
	}
}

// AddBoldLogEntry adds a bold entry to the top of the game log
func (m *TUIModel) AddBoldLogEntry(entry string) {
	// Let termenv degrade the styling on dumb terminals
	boldEntry := termenv.String(entry).Bold().String()

	// In test mode, capture without ANSI codes
	if m.testMode {
		m.capturedLog = append([]string{entry}, m.capturedLog...)
		m.gameLog = append([]string{boldEntry}, m.gameLog...)
		return // Skip UI updates in test mode
	}

	// Insert at the beginning of the log
	m.gameLog = append([]string{boldEntry}, m.gameLog...)
	content := strings.Join(m.gameLog, "\n")
	m.logViewport.SetContent(content)
	m.logViewport.GotoTop()
}

// ClearLog clears the game log
func (m *TUIModel) ClearLog() {
	m.gameLog = []string{}
	m.logViewport.SetContent("")
}

// SetRoomInfo sets the room information for the sidebar
func (m *TUIModel) SetRoomInfo(roomID string, serialNumber int, players []PlayerInfo) {
	m.roomID = roomID
	m.serialNumber = serialNumber
	m.players = players
}

// AddPlayer appends a player to the sidebar list if not already present
func (m *TUIModel) AddPlayer(name string) {
	for _, p := range m.players {
		if p.Name == name {
			return
		}
	}
	m.players = append(m.players, PlayerInfo{Name: name})
}

// AddPlayerStake adds a staked amount to a player's sidebar entry
func (m *TUIModel) AddPlayerStake(name string, amount int64) {
	for i := range m.players {
		if m.players[i].Name == name {
			m.players[i].Staked += amount
			return
		}
	}
}

// SetPlayerRevealed marks a player's sidebar entry as revealed
func (m *TUIModel) SetPlayerRevealed(name string) {
	for i := range m.players {
		if m.players[i].Name == name {
			m.players[i].Revealed = true
			return
		}
	}
}

// ResetPlayerStakes zeroes sidebar stakes after a refund
func (m *TUIModel) ResetPlayerStakes() {
	for i := range m.players {
		m.players[i].Staked = 0
	}
}

// SetSecret sets the player's own secret once the room deals it
func (m *TUIModel) SetSecret(secret int) {
	m.mySecret = secret
}

// SetShowSecret controls whether the player's own secret is displayed
func (m *TUIModel) SetShowSecret(show bool) {
	m.showSecret = show
}

// UpdatePool updates the prize pool display value
func (m *TUIModel) UpdatePool(pool int64) {
	m.currentPool = pool
}

// UpdateMinBid updates the room's minimum stake display value
func (m *TUIModel) UpdateMinBid(minBid int64) {
	m.minBid = minBid
}

// UpdateClaim updates the standing claim display
func (m *TUIModel) UpdateClaim(bidder string, digit, quantity int) {
	m.claimBidder = bidder
	m.claimDigit = digit
	m.claimQuantity = quantity
}

// ClearClaim clears the standing claim display between games
func (m *TUIModel) ClearClaim() {
	m.claimBidder = ""
	m.claimDigit = 0
	m.claimQuantity = 0
}

// SetMyTurn sets whether it's currently this player's turn to bid
func (m *TUIModel) SetMyTurn(isMyTurn bool) {
	m.isMyTurn = isMyTurn
}

// SetPendingReveal sets whether this player still owes a reveal
func (m *TUIModel) SetPendingReveal(pending bool) {
	m.pendingReveal = pending
}

// processAction processes a user action
func (m *TUIModel) processAction(input string) {
	parts := strings.Fields(strings.ToLower(input))

	var action string
	var args []string

	if len(parts) == 0 {
		// Empty input (Enter pressed with no text)
		action = ""
		args = []string{}
	} else {
		action = parts[0]
		args = parts[1:]
	}

	// Send action result through channel
	m.actionResult <- ActionResult{
		Action:   action,
		Args:     args,
		Continue: true, // Let the command handler decide whether to continue
	}
}

// WaitForAction waits for user input (for use by the command handler loop)
func (m *TUIModel) WaitForAction() (string, []string, bool, error) {
	result := <-m.actionResult
	return result.Action, result.Args, result.Continue, result.Error
}

// SendQuitSignal signals the TUI to quit gracefully
func (m *TUIModel) SendQuitSignal() {
	select {
	case m.quitSignal <- true:
	default:
		// Channel is full, quit signal already sent
	}
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *TUIModel) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	// Return a copy to prevent modification
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// InjectAction programmatically injects an action (test mode only)
func (m *TUIModel) InjectAction(action string, args []string) error {
	if !m.testMode {
		return fmt.Errorf("action injection only available in test mode")
	}

	select {
	case m.actionResult <- ActionResult{
		Action:   action,
		Args:     args,
		Continue: true,
	}:
		return nil
	default:
		return fmt.Errorf("action channel full")
	}
}

// IsTestMode returns whether the TUI is in test mode
func (m *TUIModel) IsTestMode() bool {
	return m.testMode
}

// SetEventCallback sets a callback function for test event synchronization
func (m *TUIModel) SetEventCallback(callback func(eventType string)) {
	if m.testMode {
		m.eventCallback = callback
	}
}

// notifyEventCallback calls the event callback if in test mode
func (m *TUIModel) notifyEventCallback(eventType string) {
	if m.testMode && m.eventCallback != nil {
		m.eventCallback(eventType)
	}
}

// Package tui is the interactive terminal front-end. It owns all prompting
// and rendering; retrieval, stats and chain calls go through the core
// packages and return plain data.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nagendra-sahaj/contracts-rag/internal/domain"
	"github.com/nagendra-sahaj/contracts-rag/internal/ragchain"
	"github.com/nagendra-sahaj/contracts-rag/internal/registry"
	"github.com/nagendra-sahaj/contracts-rag/internal/stats"
)

const snippetLimit = 800

// command is the explicit mode enumeration the menu offers.
type command int

const (
	cmdListCollections command = iota
	cmdShowInfo
	cmdRetrieve
	cmdAskRAG
	cmdQuit
)

var commandLabels = [...]string{
	cmdListCollections: "List collections",
	cmdShowInfo:        "Collection info",
	cmdRetrieve:        "Retrieve",
	cmdAskRAG:          "Ask (RAG)",
	cmdQuit:            "Quit",
}

// state is the interaction step the model is currently in.
type state int

const (
	stateMenu state = iota
	stateCollection
	statePrompt
	stateView
)

// Options carries the configuration values the views display or pass on.
type Options struct {
	PersistPath string
	EmbedModel  string
	TopK        int
	GroqAPIKey  string
	GroqModel   string
}

// Model is the Bubble Tea model for the application.
type Model struct {
	registry  *registry.Registry
	store     domain.Store
	retriever domain.Retriever
	stats     *stats.Aggregator
	builder   *ragchain.Builder
	opts      Options

	state      state
	command    command
	menuCursor int
	colCursor  int
	collection registry.Entry

	input    textinput.Model
	viewport viewport.Model
	results  []domain.ScoredChunk
	scored   bool
	cursor   int
	status   string
	ready    bool
}

// New creates the TUI model over the assembled core components.
func New(reg *registry.Registry, store domain.Store, retriever domain.Retriever, agg *stats.Aggregator, builder *ragchain.Builder, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		registry:  reg,
		store:     store,
		retriever: retriever,
		stats:     agg,
		builder:   builder,
		opts:      opts,
		input:     ti,
		viewport:  vp,
		status:    "Choose a mode.",
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and drives the
// menu -> collection -> prompt -> view state machine.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, fh := boxStyle.GetFrameSize()
		vh := msg.Height - fh - 6
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-4)
		m.viewport.Height = vh
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch m.state {
		case stateMenu:
			return m.updateMenu(msg)
		case stateCollection:
			return m.updateCollection(msg)
		case statePrompt:
			return m.updatePrompt(msg)
		case stateView:
			return m.updateView(msg)
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up":
		m.menuCursor = (m.menuCursor - 1 + len(commandLabels)) % len(commandLabels)
	case "down":
		m.menuCursor = (m.menuCursor + 1) % len(commandLabels)
	case "enter":
		m.command = command(m.menuCursor)
		switch m.command {
		case cmdQuit:
			return m, tea.Quit
		case cmdListCollections:
			m.showText(m.runList())
			m.state = stateView
		default:
			if m.registry.Len() == 0 {
				m.status = "No collections registered."
				return m, nil
			}
			m.colCursor = 0
			m.state = stateCollection
			m.status = "Select a collection."
		}
	}
	return m, nil
}

func (m Model) updateCollection(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.registry.List()
	switch msg.String() {
	case "esc":
		m.state = stateMenu
		m.status = "Choose a mode."
	case "up":
		m.colCursor = (m.colCursor - 1 + len(entries)) % len(entries)
	case "down":
		m.colCursor = (m.colCursor + 1) % len(entries)
	case "enter":
		m.collection = entries[m.colCursor]
		switch m.command {
		case cmdShowInfo:
			m.showText(m.runInfo())
			m.state = stateView
		case cmdRetrieve:
			m.promptFor("Enter your query")
		case cmdAskRAG:
			m.promptFor("Enter your question")
		}
	}
	return m, nil
}

func (m *Model) promptFor(placeholder string) {
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	m.input.Focus()
	m.state = statePrompt
	m.status = fmt.Sprintf("Collection: %s (%s)", m.collection.Name, m.collection.Document)
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.state = stateMenu
		m.status = "Choose a mode."
		return m, nil
	case "enter":
		q := strings.TrimSpace(m.input.Value())
		m.input.Blur()
		if q == "" {
			m.state = stateMenu
			m.status = "No input provided."
			return m, nil
		}
		if m.command == cmdRetrieve {
			m.runRetrieve(q)
		} else {
			m.showText(m.runAsk(q))
		}
		m.state = stateView
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.results = nil
		m.state = stateMenu
		m.status = "Choose a mode."
		return m, nil
	case "left":
		if len(m.results) > 0 {
			m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
			m.viewport.SetContent(m.renderCurrentResult())
			return m, nil
		}
	case "right":
		if len(m.results) > 0 {
			m.cursor = (m.cursor + 1) % len(m.results)
			m.viewport.SetContent(m.renderCurrentResult())
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the current interaction step.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Contract Documents Analysis")
	var body string
	switch m.state {
	case stateMenu:
		body = m.renderMenu()
	case stateCollection:
		body = m.renderCollections()
	case statePrompt:
		body = boxStyle.Render(m.input.View())
	case stateView:
		body = boxStyle.Render(m.viewport.View())
	}
	status := statusStyle.Render(m.status)
	return header + "\n\n" + body + "\n" + status
}

func (m Model) renderMenu() string {
	var b strings.Builder
	for i, label := range commandLabels {
		b.WriteString(menuLine(label, i == m.menuCursor))
	}
	return b.String()
}

func (m Model) renderCollections() string {
	var b strings.Builder
	for i, e := range m.registry.List() {
		b.WriteString(menuLine(fmt.Sprintf("%s (%s)", e.Name, e.Document), i == m.colCursor))
	}
	return b.String()
}

func menuLine(label string, selected bool) string {
	if selected {
		return selectedStyle.Render("> "+label) + "\n"
	}
	return "  " + label + "\n"
}

func (m *Model) showText(text string) {
	m.results = nil
	m.cursor = 0
	m.viewport.SetContent(text)
	m.viewport.GotoTop()
}

func (m *Model) runList() string {
	all, err := m.stats.ListAll(context.Background(), m.store)
	if err != nil {
		m.status = "Error: " + err.Error()
		return ""
	}
	if len(all) == 0 {
		m.status = "No collections found in the store."
		return "No collections found."
	}
	m.status = fmt.Sprintf("%d collection(s). Esc to return.", len(all))
	var b strings.Builder
	for _, s := range all {
		fmt.Fprintf(&b, "- %s\n", s.Name)
		if s.Degraded {
			fmt.Fprintf(&b, "  unavailable: %s\n", s.Reason)
			continue
		}
		fmt.Fprintf(&b, "  Items: %d\n", s.Count)
		fmt.Fprintf(&b, "  Sample sources: %s\n", strings.Join(s.SampleSources, ", "))
	}
	return b.String()
}

func (m *Model) runInfo() string {
	doc, err := m.registry.Resolve(m.collection.Name)
	if err != nil {
		m.status = "Error: " + err.Error()
		return ""
	}
	h, err := m.store.Open(m.collection.Name)
	if err != nil {
		m.status = "Error: " + err.Error()
		return ""
	}
	count, err := h.Count(context.Background())
	if err != nil {
		m.status = "Error: " + err.Error()
		return ""
	}
	m.status = "Esc to return."
	var b strings.Builder
	fmt.Fprintf(&b, "Collection: %s\n", m.collection.Name)
	fmt.Fprintf(&b, "Document: %s\n", doc)
	fmt.Fprintf(&b, "Number of chunks: %d\n", count)
	fmt.Fprintf(&b, "Embedding model: %s\n", m.opts.EmbedModel)
	if m.opts.PersistPath != "" {
		fmt.Fprintf(&b, "Persist directory: %s\n", m.opts.PersistPath)
		fmt.Fprintf(&b, "Database size: %s (shared across all collections)\n", dirSize(m.opts.PersistPath))
	}
	return b.String()
}

func (m *Model) runRetrieve(query string) {
	h, err := m.store.Open(m.collection.Name)
	if err != nil {
		m.showText("")
		m.status = "Error: " + err.Error()
		return
	}
	res, err := m.retriever.Retrieve(context.Background(), h, domain.Query{Text: query, TopK: m.opts.TopK})
	if err != nil {
		m.showText("")
		m.status = "Error: " + err.Error()
		return
	}
	if len(res.Results) == 0 {
		m.showText("No results.")
		m.status = fmt.Sprintf("No results for %q.", query)
		return
	}
	m.results = res.Results
	m.scored = res.Scored
	m.cursor = 0
	m.viewport.SetContent(m.renderCurrentResult())
	m.viewport.GotoTop()
	m.status = fmt.Sprintf("Results for %q. Left/right to browse, esc to return.", query)
}

func (m *Model) runAsk(question string) string {
	if m.opts.GroqAPIKey == "" {
		m.status = "GROQ_API_KEY not set. Set it in your environment to use RAG."
		return ""
	}
	h, err := m.store.Open(m.collection.Name)
	if err != nil {
		m.status = "Error: " + err.Error()
		return ""
	}
	chain, err := m.builder.Build(h, m.opts.TopK, m.opts.GroqAPIKey, m.opts.GroqModel)
	if err != nil {
		m.status = "Error: " + err.Error()
		return ""
	}
	answer, err := chain.Ask(context.Background(), question)
	if err != nil {
		m.status = "Error: " + err.Error()
		return ""
	}
	m.status = "Esc to return."
	return fmt.Sprintf("Q: %s\n\nAnswer:\n%s", answer.Question, answer.Answer)
}

func (m Model) renderCurrentResult() string {
	if len(m.results) == 0 {
		return "No results yet."
	}
	r := m.results[m.cursor]
	var b strings.Builder
	fmt.Fprintf(&b, "Result %d/%d", m.cursor+1, len(m.results))
	if m.scored {
		fmt.Fprintf(&b, "  score=%.4f", r.Score)
	}
	b.WriteString("\n")
	if src := r.Chunk.Source(); src != "" {
		fmt.Fprintf(&b, "Source: %s\n", src)
	}
	b.WriteString("\n")
	b.WriteString(snippet(r.Chunk.Content))
	return b.String()
}

func snippet(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= snippetLimit {
		return text
	}
	return text[:snippetLimit] + "..."
}

// dirSize reports the total on-disk size of the persist directory in KB or MB.
func dirSize(path string) string {
	var total int64
	_ = filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	if total < 1024*1024 {
		return fmt.Sprintf("%.2f KB", float64(total)/1024)
	}
	return fmt.Sprintf("%.2f MB", float64(total)/(1024*1024))
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

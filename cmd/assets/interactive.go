package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	assetengine "github.com/wippyai/asset-engine"
	"github.com/wippyai/asset-engine/assets"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	readyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// uiObserver accumulates notifications for display on the next refresh.
type uiObserver struct {
	mu     sync.Mutex
	key    assetengine.AssetKey
	loaded assetengine.LoadedAsset
	errMsg string
	done   bool
}

func (o *uiObserver) OnLoad(asset assetengine.Asset, loaded assetengine.LoadedAsset, errMsg string) {
	o.mu.Lock()
	o.loaded = loaded
	o.errMsg = errMsg
	o.done = true
	o.mu.Unlock()
}

func (o *uiObserver) snapshot() (assetengine.LoadedAsset, string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loaded, o.errMsg, o.done
}

type interactiveModel struct {
	eng       *engine
	input     textinput.Model
	infos     []assets.AssetInfo
	observers []*uiObserver
	status    string
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func newInteractiveModel(eng *engine) *interactiveModel {
	input := textinput.New()
	input.Placeholder = "bundle:path or URL"
	input.Focus()
	input.CharLimit = 200
	input.Width = 60

	return &interactiveModel{
		eng:   eng,
		input: input,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			for _, obs := range m.observers {
				m.eng.mgr.RemoveAssetLoadObserver(obs.key, obs)
			}
			return m, tea.Quit

		case "enter":
			m.startLoad(strings.TrimSpace(m.input.Value()))
			m.input.SetValue("")
			return m, nil
		}

	case tickMsg:
		m.infos = m.eng.mgr.Snapshot()
		return m, tick()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) startLoad(value string) {
	if value == "" {
		return
	}

	key, err := parseKey(value)
	if err != nil {
		m.status = err.Error()
		return
	}

	obs := &uiObserver{key: key}
	m.observers = append(m.observers, obs)
	m.eng.mgr.AddAssetLoadObserver(context.Background(), key, obs, assetengine.OutputBytes, 0, 0, nil)
	m.status = fmt.Sprintf("loading %s", key)
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Asset Engine Monitor"))
	b.WriteString("\n\n")

	b.WriteString("Load asset: ")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(helpStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.infos) == 0 {
		b.WriteString(helpStyle.Render("no managed assets yet"))
		b.WriteString("\n")
	} else {
		b.WriteString("Managed assets:\n")
		for _, info := range m.infos {
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(info.Key.String()))
			b.WriteString("  ")
			b.WriteString(renderState(info.State))
			b.WriteString(fmt.Sprintf("  consumers=%d", info.Consumers))
			if info.HasLocation {
				b.WriteString(helpStyle.Render("  " + info.Location.URL))
			}
			if info.Err != nil {
				b.WriteString("\n    ")
				b.WriteString(errorStyle.Render(info.Err.Error()))
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	for _, obs := range m.observers {
		loaded, errMsg, done := obs.snapshot()
		if !done {
			continue
		}
		b.WriteString("  ")
		b.WriteString(keyStyle.Render(obs.key.String()))
		b.WriteString(" ")
		switch {
		case errMsg != "":
			b.WriteString(errorStyle.Render("failed: " + errMsg))
		case loaded != nil:
			b.WriteString(readyStyle.Render("loaded " + describeShort(loaded)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: load asset • esc: quit"))
	b.WriteString("\n")

	return b.String()
}

func renderState(state assets.AssetState) string {
	s := state.String()
	switch state {
	case assets.AssetStateReady:
		return readyStyle.Render(s)
	case assets.AssetStateFailedRetryable, assets.AssetStateFailedPermanently:
		return errorStyle.Render(s)
	default:
		return pendingStyle.Render(s)
	}
}

func describeShort(loaded assetengine.LoadedAsset) string {
	if a, ok := loaded.(*assetengine.BytesAsset); ok {
		return fmt.Sprintf("%d bytes", len(a.Bytes))
	}
	return loaded.Output().String()
}

func runInteractive(eng *engine) error {
	p := tea.NewProgram(newInteractiveModel(eng), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

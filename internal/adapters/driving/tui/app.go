package tui

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/tiffheif/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/tiffheif/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/tiffheif/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/tiffheif/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/tiffheif/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tiffheif/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tiffheif/internal/core/domain"
)

// qualityStep is how far +/- move the lossy quality.
const qualityStep = 0.05

// chromeHeight is the number of lines used around the queue list.
const chromeHeight = 12

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the parent of every conversion context.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	queue       *list.QueueList
	addInput    *input.PathInput
	outputInput *input.PathInput
	statusBar   *status.Bar
	progress    progress.Model

	// settings is the last loaded configuration. Each run takes a snapshot.
	settings domain.AppSettings

	// initialPaths are queued when the program starts.
	initialPaths []string

	currentView messages.ViewType

	// converting is set while a batch runs; cancel stops it.
	converting bool
	cancel     context.CancelFunc
	sub        chan tea.Msg

	// lastSummary is the result of the most recent run.
	lastSummary *domain.BatchSummary

	// notes are the failure or skip lines shown under the queue.
	notes []string

	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	theme := s.Theme()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		queue:       list.NewQueueList(s),
		addInput:    input.NewPathInput(s, "Add", "file or folder"),
		outputInput: input.NewPathInput(s, "Output directory", "existing folder"),
		statusBar:   status.NewBar(s, km),
		progress:    progress.New(progress.WithGradient(string(theme.Primary), string(theme.Secondary))),
		settings:    domain.DefaultAppSettings(),
		currentView: messages.ViewQueue,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// WithPaths queues paths when the program starts.
func (a *App) WithPaths(paths []string) *App {
	a.initialPaths = paths
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.SetWindowTitle("tiffheif"),
		a.loadSettings(),
	}
	if len(a.initialPaths) > 0 {
		cmds = append(cmds, a.addPaths(a.initialPaths...))
	} else {
		a.refreshQueue()
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, nil
		}
		a.settings = *msg.Settings
		return a, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, nil
		}
		return a, a.loadSettings()

	case messages.FilesAdded:
		a.handleFilesAdded(msg)
		return a, nil

	case messages.ConversionProgress:
		return a, a.handleProgress(msg.Event)

	case messages.ConversionFinished:
		a.handleFinished(msg)
		return a, nil

	case progress.FrameMsg:
		model, cmd := a.progress.Update(msg)
		if pm, ok := model.(progress.Model); ok {
			a.progress = pm
		}
		return a, cmd

	case messages.ErrorOccurred:
		a.setError(msg.Err)
		return a, nil

	case messages.Quit:
		a.stop()
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	keyStr := msg.String()

	// Global quit with ctrl+c
	if keyStr == "ctrl+c" {
		a.stop()
		return tea.Quit
	}

	switch a.currentView {
	case messages.ViewHelp:
		if keymap.Matches(keyStr, a.keymap.Back) || keymap.Matches(keyStr, a.keymap.Help) ||
			keymap.Matches(keyStr, a.keymap.Quit) {
			a.currentView = messages.ViewQueue
		}
		return nil

	case messages.ViewAddPath:
		return a.handleInputKey(msg, a.addInput, func(value string) tea.Cmd {
			return a.addPaths(value)
		})

	case messages.ViewOutput:
		return a.handleInputKey(msg, a.outputInput, func(value string) tea.Cmd {
			return a.saveSetting(func() error { return a.ports.Settings.SetOutputDirectory(value) })
		})

	case messages.ViewQueue:
		return a.handleQueueKey(msg)
	}
	return nil
}

// handleInputKey submits or dismisses a prompt and forwards other keys to it.
func (a *App) handleInputKey(msg tea.KeyMsg, in *input.PathInput, submit func(string) tea.Cmd) tea.Cmd {
	switch {
	case keymap.Matches(msg.String(), a.keymap.Back):
		a.closeInput(in)
		return nil
	case keymap.Matches(msg.String(), a.keymap.Submit):
		value := strings.TrimSpace(in.Value())
		a.closeInput(in)
		if value == "" {
			return nil
		}
		return submit(value)
	}
	var cmd tea.Cmd
	_, cmd = in.Update(msg)
	return cmd
}

func (a *App) openInput(view messages.ViewType, in *input.PathInput, value string) tea.Cmd {
	a.currentView = view
	in.Reset()
	if value != "" {
		in.SetValue(value)
	}
	a.statusBar.SetState(status.StateInput)
	a.statusBar.SetMessage(in.Label())
	return in.Focus()
}

func (a *App) closeInput(in *input.PathInput) {
	in.Blur()
	in.Reset()
	a.currentView = messages.ViewQueue
	a.statusBar.Clear()
}

//nolint:gocyclo // one branch per binding
func (a *App) handleQueueKey(msg tea.KeyMsg) tea.Cmd {
	keyStr := msg.String()

	if a.converting {
		switch {
		case keymap.Matches(keyStr, a.keymap.Cancel):
			a.cancelRun()
		case keymap.Matches(keyStr, a.keymap.Quit):
			a.stop()
			return tea.Quit
		case keymap.Matches(keyStr, a.keymap.Up), keymap.Matches(keyStr, a.keymap.Down):
			a.queue.Update(msg)
		}
		return nil
	}

	switch {
	case keymap.Matches(keyStr, a.keymap.Quit):
		return tea.Quit
	case keymap.Matches(keyStr, a.keymap.Help):
		a.currentView = messages.ViewHelp
	case keymap.Matches(keyStr, a.keymap.Add):
		return a.openInput(messages.ViewAddPath, a.addInput, "")
	case keymap.Matches(keyStr, a.keymap.Output):
		return a.openInput(messages.ViewOutput, a.outputInput, a.settings.Convert.OutputDirectory)
	case keymap.Matches(keyStr, a.keymap.Remove):
		if path, ok := a.queue.SelectedItem(); ok {
			a.ports.Queue.Remove(path)
			a.refreshQueue()
		}
	case keymap.Matches(keyStr, a.keymap.Clear):
		a.ports.Queue.Clear()
		a.notes = nil
		a.refreshQueue()
	case keymap.Matches(keyStr, a.keymap.Convert):
		return a.startConversion()
	case keymap.Matches(keyStr, a.keymap.QualityUp):
		return a.stepQuality(qualityStep)
	case keymap.Matches(keyStr, a.keymap.QualityDown):
		return a.stepQuality(-qualityStep)
	case keymap.Matches(keyStr, a.keymap.Lossless):
		lossless := !a.settings.Convert.Lossless
		return a.saveSetting(func() error { return a.ports.Settings.SetLossless(lossless) })
	case keymap.Matches(keyStr, a.keymap.Up), keymap.Matches(keyStr, a.keymap.Down):
		a.queue.Update(msg)
	}
	return nil
}

func (a *App) stepQuality(delta float64) tea.Cmd {
	if a.settings.Convert.Lossless {
		return nil
	}
	quality := math.Round((a.settings.Convert.Quality+delta)*100) / 100
	quality = max(0, min(1, quality))
	return a.saveSetting(func() error { return a.ports.Settings.SetQuality(quality) })
}

// startConversion runs the queue in the background. Events flow back
// through a.sub, one message per file, then a ConversionFinished.
func (a *App) startConversion() tea.Cmd {
	if a.converting {
		return nil
	}

	sources := a.ports.Queue.Items()
	if len(sources) == 0 {
		a.setError(errEmptyQueue)
		return nil
	}
	opts := a.settings.ConversionOptions()
	if err := opts.Validate(); err != nil {
		a.setError(err)
		return nil
	}

	ctx, cancel := context.WithCancel(a.ctx)
	a.cancel = cancel
	a.converting = true
	a.err = nil
	a.notes = nil
	a.lastSummary = nil
	a.queue.ClearMarks()
	a.statusBar.SetState(status.StateConverting)
	a.statusBar.SetMessage(fmt.Sprintf("0/%d", len(sources)))

	// Buffered so the run never blocks on a UI that has quit.
	sub := make(chan tea.Msg, len(sources)+1)
	a.sub = sub

	req := domain.BatchRequest{
		Sources: sources,
		Options: opts,
		Policy:  a.settings.Batch.Policy,
		Workers: a.settings.Batch.Workers,
	}
	batch := a.ports.Batch
	go func() {
		defer close(sub)
		summary, err := batch.Run(ctx, req, func(e domain.BatchEvent) {
			sub <- messages.ConversionProgress{Event: e}
		})
		sub <- messages.ConversionFinished{Summary: summary, Err: err}
	}()

	return tea.Batch(a.progress.SetPercent(0), waitForActivity(sub))
}

func (a *App) handleProgress(e domain.BatchEvent) tea.Cmd {
	mark := list.MarkConverted
	if !e.Outcome.Succeeded() {
		mark = list.MarkFailed
		a.notes = append(a.notes, e.Outcome.Err.Message())
	}
	a.queue.SetMark(e.Outcome.Source, mark)

	if a.statusBar.State() == status.StateConverting {
		a.statusBar.SetMessage(fmt.Sprintf("%d/%d", e.Progress.Completed, e.Progress.Total))
	}
	return tea.Batch(a.progress.SetPercent(e.Progress.Fraction()), waitForActivity(a.sub))
}

func (a *App) handleFinished(msg messages.ConversionFinished) {
	a.converting = false
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}

	if msg.Err != nil {
		a.setError(msg.Err)
		return
	}

	summary := msg.Summary
	a.lastSummary = summary
	a.notes = summary.Messages()
	a.ports.Queue.Settle(summary)
	a.refreshQueue()

	text := fmt.Sprintf("converted %d of %d", summary.Succeeded, summary.Total)
	if summary.Cancelled {
		text += ", cancelled"
	}
	a.statusBar.SetState(status.StateDone)
	a.statusBar.SetMessage(text)
}

func (a *App) handleFilesAdded(msg messages.FilesAdded) {
	if msg.Err != nil {
		a.setError(msg.Err)
		return
	}
	a.notes = nil
	for _, r := range msg.Result.Rejected {
		a.notes = append(a.notes, fmt.Sprintf("skipped %v", r.Reason))
	}
	a.err = nil
	a.statusBar.Clear()
	a.refreshQueue()
}

// cancelRun stops new files from starting. Files in progress finish.
func (a *App) cancelRun() {
	if a.cancel != nil {
		a.cancel()
	}
	a.statusBar.SetState(status.StateCancelling)
}

// stop cancels any run before the program exits.
func (a *App) stop() {
	if a.converting && a.cancel != nil {
		a.cancel()
	}
}

func (a *App) refreshQueue() {
	a.queue.SetItems(a.ports.Queue.Items())
	a.statusBar.SetQueued(a.queue.Count())
}

func (a *App) setError(err error) {
	a.err = err
	a.statusBar.SetState(status.StateError)
	a.statusBar.SetMessage(err.Error())
}

func (a *App) loadSettings() tea.Cmd {
	settings := a.ports.Settings
	return func() tea.Msg {
		s, err := settings.Get()
		return messages.SettingsLoaded{Settings: s, Err: err}
	}
}

func (a *App) saveSetting(save func() error) tea.Cmd {
	return func() tea.Msg {
		return messages.SettingsSaved{Err: save()}
	}
}

func (a *App) addPaths(paths ...string) tea.Cmd {
	ctx := a.ctx
	queue := a.ports.Queue
	return func() tea.Msg {
		result, err := queue.Add(ctx, paths...)
		return messages.FilesAdded{Result: result, Err: err}
	}
}

// waitForActivity delivers the next message of a running batch.
func waitForActivity(sub <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-sub
		if !ok {
			return nil
		}
		return msg
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	if a.currentView == messages.ViewHelp {
		return a.viewHelp()
	}

	sections := []string{
		a.styles.Title.Render("tiffheif") + a.styles.Muted.Render("  TIFF → HEIC/HEIF"),
		a.viewOptions(),
		a.queue.View(),
	}
	if a.converting || a.lastSummary != nil {
		sections = append(sections, a.progress.View())
	}
	if len(a.notes) > 0 {
		sections = append(sections, a.viewNotes())
	}
	switch a.currentView {
	case messages.ViewAddPath:
		sections = append(sections, a.addInput.View())
	case messages.ViewOutput:
		sections = append(sections, a.outputInput.View())
	case messages.ViewQueue, messages.ViewHelp:
	}
	sections = append(sections, a.statusBar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) viewOptions() string {
	c := a.settings.Convert

	format := fmt.Sprintf("HEIC  quality %.2f", c.Quality)
	if c.Lossless {
		format = "HEIF  lossless 10-bit"
	}
	dir := c.OutputDirectory
	if dir == "" {
		dir = a.styles.Warning.Render("(not set, press o)")
	}
	policy := string(a.settings.Batch.Policy)
	if a.settings.Batch.Policy == domain.PolicyParallel && a.settings.Batch.Workers > 0 {
		policy = fmt.Sprintf("%s x%d", policy, a.settings.Batch.Workers)
	}

	return a.styles.Panel.Render(strings.Join([]string{
		a.styles.Normal.Render("Format: ") + format,
		a.styles.Normal.Render("Output: ") + dir,
		a.styles.Normal.Render("Policy: ") + policy,
	}, "\n"))
}

func (a *App) viewNotes() string {
	lines := make([]string, 0, len(a.notes))
	for _, n := range a.notes {
		lines = append(lines, a.styles.Error.Render(n))
	}
	return a.styles.Panel.Render(strings.Join(lines, "\n"))
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-8s %s\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Help.Render("[esc] back to queue"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Converting returns whether a batch is running.
func (a *App) Converting() bool {
	return a.converting
}

// Settings returns the last loaded settings.
func (a *App) Settings() domain.AppSettings {
	return a.settings
}

// LastSummary returns the result of the most recent run.
func (a *App) LastSummary() *domain.BatchSummary {
	return a.lastSummary
}

// Notes returns the failure or skip lines shown under the queue.
func (a *App) Notes() []string {
	return a.notes
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.queue.SetDimensions(width, max(3, height-chromeHeight))
	a.addInput.SetWidth(width)
	a.outputInput.SetWidth(width)
	a.statusBar.SetWidth(width)
	a.progress.Width = max(10, min(80, width-4))
}

// Package tui implements the interactive restore wizard.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/stocktrack/stockkeeper/internal/client/restore"
	"github.com/stocktrack/stockkeeper/internal/models"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// modeChoices is the selectable restore mode list, in display order.
var modeChoices = []struct {
	mode  models.RestoreMode
	label string
	desc  string
}{
	{models.ModePreview, "Preview", "show what would change without writing anything"},
	{models.ModeMerge, "Merge", "apply records that are newer than the current data"},
	{models.ModeFull, "Full replace", "replace all data after taking a safety backup"},
}

// stepMsg carries one scripted progress step from the running restore.
type stepMsg restore.Step

// finishedMsg carries the final outcome of the restore request.
type finishedMsg struct {
	result *models.RestoreResult
	err    error
}

// Wizard is the bubbletea model for the restore flow. It wraps a
// restore.Workflow: the workflow owns the state machine and gating, the
// wizard owns rendering and key handling.
type Wizard struct {
	ctx      context.Context
	workflow *restore.Workflow

	modeCursor    int
	password      textinput.Model
	adminPassword textinput.Model
	bar           progress.Model

	steps  chan restore.Step
	step   restore.Step
	result *models.RestoreResult
}

// NewWizard builds a wizard for the given backup. The restorer is the API
// client that will carry out the restore.
func NewWizard(ctx context.Context, backup models.Backup, restorer restore.Restorer) *Wizard {
	password := textinput.New()
	password.Placeholder = "backup password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 128

	adminPassword := textinput.New()
	adminPassword.Placeholder = "admin password"
	adminPassword.EchoMode = textinput.EchoPassword
	adminPassword.CharLimit = 128

	w := &Wizard{
		ctx:           ctx,
		workflow:      restore.NewWorkflow(backup, restorer),
		modeCursor:    1, // merge is the default mode
		password:      password,
		adminPassword: adminPassword,
		bar:           progress.New(progress.WithDefaultGradient()),
		steps:         make(chan restore.Step, len(restore.Script)),
	}
	w.workflow.OnStep = func(s restore.Step) { w.steps <- s }
	return w
}

// Result returns the restore outcome once the wizard has completed.
func (w *Wizard) Result() *models.RestoreResult { return w.result }

// Cancelled reports whether the user backed out before confirming.
func (w *Wizard) Cancelled() bool { return w.workflow.State() == restore.StateCancelled }

func (w *Wizard) Init() tea.Cmd {
	return textinput.Blink
}

// confirmCmd runs the blocking restore submission. Scripted steps arrive on
// the steps channel while it runs.
func (w *Wizard) confirmCmd() tea.Cmd {
	return func() tea.Msg {
		result, err := w.workflow.Confirm(w.ctx)
		close(w.steps)
		return finishedMsg{result: result, err: err}
	}
}

// waitForStep delivers the next scripted step, if any.
func (w *Wizard) waitForStep() tea.Cmd {
	return func() tea.Msg {
		s, ok := <-w.steps
		if !ok {
			return nil
		}
		return stepMsg(s)
	}
}

func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return w.handleKey(msg)

	case stepMsg:
		w.step = restore.Step(msg)
		cmd := w.bar.SetPercent(float64(msg.Progress) / 100)
		return w, tea.Batch(cmd, w.waitForStep())

	case finishedMsg:
		if msg.err != nil {
			// The workflow is back at the confirmation step; reopen
			// the channel for a retry.
			w.steps = make(chan restore.Step, len(restore.Script))
			return w, nil
		}
		w.result = msg.result
		return w, tea.Quit

	case progress.FrameMsg:
		bar, cmd := w.bar.Update(msg)
		w.bar = bar.(progress.Model)
		return w, cmd
	}

	return w, w.updateInputs(msg)
}

func (w *Wizard) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch w.workflow.State() {
	case restore.StateMode:
		return w.handleModeKey(msg)
	case restore.StateConfirm:
		return w.handleConfirmKey(msg)
	case restore.StateCompleted, restore.StateCancelled:
		return w, tea.Quit
	}
	// Submission and progress ignore input.
	return w, nil
}

func (w *Wizard) handleModeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		w.workflow.Cancel()
		return w, tea.Quit
	case "up", "k":
		if !w.password.Focused() && w.modeCursor > 0 {
			w.modeCursor--
		}
	case "down", "j":
		if !w.password.Focused() && w.modeCursor < len(modeChoices)-1 {
			w.modeCursor++
		}
	case "tab":
		if w.workflow.NeedsPassword() {
			if w.password.Focused() {
				w.password.Blur()
			} else {
				return w, w.password.Focus()
			}
		}
	case "enter":
		w.workflow.SetMode(modeChoices[w.modeCursor].mode)
		w.workflow.SetPassword(w.password.Value())
		w.workflow.Next()
		w.password.Blur()
		return w, w.adminPassword.Focus()
	}
	return w, w.updateInputs(msg)
}

func (w *Wizard) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		w.workflow.Back()
		w.adminPassword.Blur()
		return w, nil
	case "ctrl+c":
		w.workflow.Cancel()
		return w, tea.Quit
	case "enter":
		w.workflow.SetAdminPassword(w.adminPassword.Value())
		if !w.workflow.CanConfirm() {
			return w, nil
		}
		return w, tea.Batch(w.confirmCmd(), w.waitForStep())
	}
	return w, w.updateInputs(msg)
}

func (w *Wizard) updateInputs(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	w.password, cmd = w.password.Update(msg)
	cmds = append(cmds, cmd)
	w.adminPassword, cmd = w.adminPassword.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

func (w *Wizard) View() string {
	var b strings.Builder
	backup := w.workflow.Backup()

	b.WriteString(titleStyle.Render("Restore backup"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("%s (%s, %s)",
		backup.Filename, backup.Format, humanize.Bytes(uint64(backup.FileSize)))))
	b.WriteString("\n\n")

	switch w.workflow.State() {
	case restore.StateMode:
		w.viewMode(&b)
	case restore.StateConfirm:
		w.viewConfirm(&b)
	case restore.StateSubmitting, restore.StateProgress:
		w.viewProgress(&b)
	case restore.StateCompleted:
		w.viewCompleted(&b)
	case restore.StateCancelled:
		b.WriteString(labelStyle.Render("Restore cancelled."))
		b.WriteString("\n")
	}

	return b.String()
}

func (w *Wizard) viewMode(b *strings.Builder) {
	b.WriteString("Select restore mode:\n\n")
	for i, c := range modeChoices {
		cursor := "  "
		line := fmt.Sprintf("%s  %s", c.label, labelStyle.Render(c.desc))
		if i == w.modeCursor {
			cursor = cursorStyle.Render("> ")
		}
		b.WriteString(cursor + line + "\n")
	}

	if w.workflow.NeedsPassword() {
		b.WriteString("\n")
		b.WriteString("This backup is encrypted.\n")
		b.WriteString(w.password.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("up/down select · tab password · enter continue · esc cancel"))
	b.WriteString("\n")
}

func (w *Wizard) viewConfirm(b *strings.Builder) {
	mode := w.workflow.Options().Mode
	b.WriteString(fmt.Sprintf("Mode: %s\n\n", mode))

	switch mode {
	case models.ModeFull:
		b.WriteString(warnStyle.Render("All current data will be replaced. A safety backup is taken first."))
		b.WriteString("\n\n")
	case models.ModeMerge:
		b.WriteString("Records newer than the current data will be applied.\n\n")
	case models.ModePreview:
		b.WriteString("No data will be changed.\n\n")
	}

	b.WriteString("Enter your admin password to confirm:\n")
	b.WriteString(w.adminPassword.View())
	b.WriteString("\n")

	if err := w.workflow.Err(); err != nil {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter confirm · esc back · ctrl+c cancel"))
	b.WriteString("\n")
}

func (w *Wizard) viewProgress(b *strings.Builder) {
	label := w.step.Label
	if label == "" {
		label = "Submitting restore request"
	}
	b.WriteString(label + "\n\n")
	b.WriteString(w.bar.View())
	b.WriteString("\n")
}

func (w *Wizard) viewCompleted(b *strings.Builder) {
	b.WriteString(successStyle.Render("Restore complete."))
	b.WriteString("\n\n")
	if r := w.result; r != nil {
		if r.Preview {
			b.WriteString("Preview only, nothing was written.\n")
		}
		b.WriteString(fmt.Sprintf("Restored:  %d\n", r.Restored))
		b.WriteString(fmt.Sprintf("Skipped:   %d\n", r.Skipped))
		b.WriteString(fmt.Sprintf("Unchanged: %d\n", r.Unchanged))
		if r.PreRestoreBackupID != "" {
			b.WriteString(fmt.Sprintf("Safety backup: %s\n", r.PreRestoreBackupID))
		}
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("press any key to exit"))
	b.WriteString("\n")
}

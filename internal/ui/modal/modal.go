// Package modal provides a small dialog for confirmations and short
// prompts, such as the link URL prompt and the unsaved changes check.
package modal

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/usekona/kona/internal/ui/overlay"
	"github.com/usekona/kona/internal/ui/styles"
)

// ButtonVariant controls the styling of the confirm button.
type ButtonVariant int

const (
	ButtonPrimary ButtonVariant = iota
	ButtonDanger                // Destructive actions
)

// InputConfig defines a single input field.
type InputConfig struct {
	Key         string // Identifier in SubmitMsg.Values
	Label       string
	Placeholder string
	Value       string // Initial value
	MaxLength   int    // 0 = unlimited
	// Validate rejects a value; the error is shown and the modal stays open.
	Validate func(string) error
}

// Config controls modal appearance and behavior.
type Config struct {
	Title          string
	Message        string
	Inputs         []InputConfig // Empty means confirmation mode
	ConfirmVariant ButtonVariant
	ConfirmLabel   string // Default "Save" with inputs, "Confirm" without
	MinWidth       int    // Default 40
	// Zones enables clicking the buttons and inputs. The host must pass its
	// final view through Zones.Scan.
	Zones *zone.Manager
}

const (
	zoneConfirm = "modal-confirm"
	zoneCancel  = "modal-cancel"
	zoneInput   = "modal-input-"
)

// SubmitMsg is sent when the user confirms. Values holds input values by
// InputConfig.Key.
type SubmitMsg struct {
	Values map[string]string
}

// CancelMsg is sent when the user cancels.
type CancelMsg struct{}

// Field identifies which button is focused.
type Field int

const (
	FieldSave Field = iota
	FieldCancel
)

// Model is the modal component state.
type Model struct {
	config       Config
	inputs       []textinput.Model
	focusedInput int   // -1 when a button is focused
	focusedField Field // Meaningful when focusedInput == -1
	err          string
	width        int
	height       int
}

// New creates a modal. The first input, or the confirm button, is focused.
func New(cfg Config) Model {
	m := Model{config: cfg, focusedInput: -1, focusedField: FieldSave}
	for i, in := range cfg.Inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = in.Placeholder
		ti.Width = max(cfg.MinWidth, 40) - 4
		if in.MaxLength > 0 {
			ti.CharLimit = in.MaxLength
		}
		if in.Value != "" {
			ti.SetValue(in.Value)
		}
		if i == 0 {
			ti.Focus()
			m.focusedInput = 0
		}
		m.inputs = append(m.inputs, ti)
	}
	return m
}

// Init starts the cursor blink in input mode.
func (m Model) Init() tea.Cmd {
	if len(m.inputs) > 0 {
		return textinput.Blink
	}
	return nil
}

// Update handles messages for the modal.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			return m.moveFocus(1), nil
		case "shift+tab", "up":
			return m.moveFocus(-1), nil
		case "left", "right":
			if m.focusedInput == -1 {
				m.focusedField = 1 - m.focusedField
				return m, nil
			}
		case "enter":
			if m.focusedInput >= 0 && m.focusedInput < len(m.inputs)-1 {
				return m.moveFocus(1), nil
			}
			if m.focusedInput == -1 && m.focusedField == FieldCancel {
				return m, cancel
			}
			return m.submit()
		case "esc":
			return m, cancel
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease {
			return m.click(msg)
		}
		return m, nil
	}

	if m.focusedInput >= 0 {
		var cmd tea.Cmd
		m.inputs[m.focusedInput], cmd = m.inputs[m.focusedInput].Update(msg)
		if _, ok := msg.(tea.KeyMsg); ok {
			m.err = ""
		}
		return m, cmd
	}
	return m, nil
}

func cancel() tea.Msg { return CancelMsg{} }

// click presses a button or focuses an input under the mouse.
func (m Model) click(msg tea.MouseMsg) (Model, tea.Cmd) {
	zones := m.config.Zones
	if zones == nil {
		return m, nil
	}
	if z := zones.Get(zoneConfirm); z != nil && z.InBounds(msg) {
		m = m.focus(-1)
		m.focusedField = FieldSave
		return m.submit()
	}
	if z := zones.Get(zoneCancel); z != nil && z.InBounds(msg) {
		m = m.focus(-1)
		m.focusedField = FieldCancel
		return m, cancel
	}
	for i := range m.inputs {
		if z := zones.Get(zoneInput + strconv.Itoa(i)); z != nil && z.InBounds(msg) {
			return m.focus(i), nil
		}
	}
	return m, nil
}

func (m Model) mark(id, v string) string {
	if m.config.Zones == nil {
		return v
	}
	return m.config.Zones.Mark(id, v)
}

// submit validates every input and sends SubmitMsg. Empty inputs and
// validation errors keep the modal open.
func (m Model) submit() (Model, tea.Cmd) {
	values := make(map[string]string, len(m.inputs))
	for i, in := range m.config.Inputs {
		v := strings.TrimSpace(m.inputs[i].Value())
		if v == "" {
			m.err = label(in) + " is required"
			return m.focus(i), nil
		}
		if in.Validate != nil {
			if err := in.Validate(v); err != nil {
				m.err = err.Error()
				return m.focus(i), nil
			}
		}
		values[in.Key] = v
	}
	return m, func() tea.Msg { return SubmitMsg{Values: values} }
}

// moveFocus steps through inputs, then confirm, then cancel, wrapping.
func (m Model) moveFocus(delta int) Model {
	stops := len(m.inputs) + 2
	cur := m.focusedInput
	if cur == -1 {
		cur = len(m.inputs) + int(m.focusedField)
	}
	next := ((cur+delta)%stops + stops) % stops
	if next < len(m.inputs) {
		return m.focus(next)
	}
	m = m.focus(-1)
	m.focusedField = Field(next - len(m.inputs))
	return m
}

func (m Model) focus(i int) Model {
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	m.focusedInput = i
	return m
}

func label(in InputConfig) string {
	if in.Label != "" {
		return in.Label
	}
	return "Input"
}

// View renders the modal content (without overlay).
func (m Model) View() string {
	contentWidth := max(m.config.MinWidth, 40, lipgloss.Width(m.config.Title))
	boxWidth := contentWidth + 2

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.OverlayTitleColor).PaddingLeft(1)
	divider := lipgloss.NewStyle().Foreground(styles.OverlayBorderColor).Render(strings.Repeat("─", boxWidth))

	var content strings.Builder
	if m.config.Message != "" {
		content.WriteString(lipgloss.NewStyle().Foreground(styles.TextPrimaryColor).Width(contentWidth).Render(m.config.Message))
		content.WriteString("\n\n")
	}
	for i, in := range m.config.Inputs {
		field := styles.RenderWithTitleBorder(m.inputs[i].View(), label(in), contentWidth, 3, m.focusedInput == i)
		content.WriteString(m.mark(zoneInput+strconv.Itoa(i), field))
		content.WriteString("\n")
	}
	if m.err != "" {
		content.WriteString(lipgloss.NewStyle().Foreground(styles.StatusErrorColor).Width(contentWidth).Render(m.err))
		content.WriteString("\n")
	}
	if len(m.inputs) > 0 || m.err != "" {
		content.WriteString("\n")
	}
	content.WriteString(m.renderButtons())

	var result strings.Builder
	result.WriteString(titleStyle.Render(m.config.Title))
	result.WriteString("\n")
	result.WriteString(divider)
	result.WriteString("\n")
	result.WriteString(lipgloss.NewStyle().Padding(1, 1).Render(content.String()))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(boxWidth).
		Render(result.String())
}

func (m Model) renderButtons() string {
	onButtons := m.focusedInput == -1
	saveFocused := onButtons && m.focusedField == FieldSave
	cancelFocused := onButtons && m.focusedField == FieldCancel

	saveStyle := styles.PrimaryButtonStyle
	switch {
	case m.config.ConfirmVariant == ButtonDanger && saveFocused:
		saveStyle = styles.DangerButtonFocusedStyle
	case m.config.ConfirmVariant == ButtonDanger:
		saveStyle = styles.DangerButtonStyle
	case saveFocused:
		saveStyle = styles.PrimaryButtonFocusedStyle
	}
	cancelStyle := styles.SecondaryButtonStyle
	if cancelFocused {
		cancelStyle = styles.SecondaryButtonFocusedStyle
	}

	confirm := m.config.ConfirmLabel
	if confirm == "" {
		confirm = "Confirm"
		if len(m.inputs) > 0 {
			confirm = "Save"
		}
	}
	return m.mark(zoneConfirm, saveStyle.Render(confirm)) + "  " + m.mark(zoneCancel, cancelStyle.Render("Cancel"))
}

// Overlay renders the modal centered on bg.
func (m Model) Overlay(bg string) string {
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.View(), bg)
}

// SetSize updates the size used for centering.
func (m Model) SetSize(width, height int) Model {
	m.width, m.height = width, height
	return m
}

// FocusedInput returns the focused input index, -1 when on the buttons.
func (m Model) FocusedInput() int { return m.focusedInput }

// FocusedField returns the focused button.
func (m Model) FocusedField() Field { return m.focusedField }

// Err returns the message shown for the last rejected submit.
func (m Model) Err() string { return m.err }

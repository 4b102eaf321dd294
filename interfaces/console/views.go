// Package console renders the editor in a terminal and turns typed lines
// into editor calls.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/ckiev5/family-chart/application/forms"
	"github.com/ckiev5/family-chart/application/ports"
	apperrors "github.com/ckiev5/family-chart/pkg/errors"
)

// TextForm is a form rendered as plain text lines.
type TextForm struct {
	Descriptor ports.FormDescriptor
	Lines      []string
}

func (f *TextForm) String() string {
	return strings.Join(f.Lines, "\n")
}

// FormBuilder renders descriptors as TextForms.
type FormBuilder struct{}

func (FormBuilder) BuildEditForm(d ports.FormDescriptor) (ports.Form, error) {
	return render(d), nil
}

func (FormBuilder) BuildNewForm(d ports.FormDescriptor) (ports.Form, error) {
	return render(d), nil
}

func render(d ports.FormDescriptor) *TextForm {
	header := fmt.Sprintf("== %s (%s)", d.Title, d.Person.ID)
	if d.Mode != ports.ModeNone {
		header += " [" + string(d.Mode) + "]"
	}
	lines := []string{header}
	for _, f := range d.Fields {
		line := fmt.Sprintf("  %s: %s", f.Label, f.Value)
		if len(f.Options) > 0 {
			line += " (" + strings.Join(f.Options, "|") + ")"
		}
		lines = append(lines, line)
	}
	if d.LinkExisting != nil && len(d.Candidates) > 0 {
		lines = append(lines, "  "+d.LinkExisting.LinkRelLabel+":")
		for _, c := range d.Candidates {
			lines = append(lines, fmt.Sprintf("    %s  %s", c.ID, c.Label))
		}
	}

	var actions []string
	if d.Editable {
		actions = append(actions, "submit", "cancel")
	}
	if d.CanDelete {
		actions = append(actions, "delete")
	}
	if d.CanAddRelative {
		actions = append(actions, "add")
	}
	if d.CanRemoveRelative {
		actions = append(actions, "remove")
	}
	if d.Mode == ports.ModeRemoveRelative {
		lines = append(lines, "  open a relative to remove the link")
	}
	if len(actions) > 0 {
		lines = append(lines, "  actions: "+strings.Join(actions, ", "))
	}
	return &TextForm{Descriptor: d, Lines: lines}
}

// Container prints each form it is given and keeps the latest one.
type Container struct {
	out     io.Writer
	current *TextForm
}

func NewContainer(out io.Writer) *Container {
	return &Container{out: out}
}

func (c *Container) Populate(f ports.Form) {
	tf, ok := f.(*TextForm)
	if !ok {
		fmt.Fprintf(c.out, "%v\n", f)
		return
	}
	c.current = tf
	fmt.Fprintln(c.out, tf)
}

func (c *Container) Close() {
	if c.current != nil {
		fmt.Fprintln(c.out, "(form closed)")
	}
	c.current = nil
}

func (c *Container) Destroy() {
	c.current = nil
}

// Current returns the form on screen.
func (c *Container) Current() (*TextForm, bool) {
	return c.current, c.current != nil
}

// Modal asks yes/no questions; the answer arrives later through Answer.
type Modal struct {
	out    io.Writer
	accept func()
	reject func()
}

func NewModal(out io.Writer) *Modal {
	return &Modal{out: out}
}

func (m *Modal) Confirm(prompt ports.ConfirmPrompt, onAccept, onReject func()) {
	m.accept, m.reject = onAccept, onReject
	fmt.Fprintf(m.out, "? %s: %s [yes/no]\n", prompt.Title, prompt.Message)
}

// Pending reports whether a question is waiting.
func (m *Modal) Pending() bool {
	return m.accept != nil
}

// Answer resolves the pending question.
func (m *Modal) Answer(yes bool) error {
	if !m.Pending() {
		return apperrors.NewConflictError("nothing to confirm")
	}
	fn := m.reject
	if yes {
		fn = m.accept
	}
	m.accept, m.reject = nil, nil
	if fn != nil {
		fn()
	}
	return nil
}

// HistoryButtons prints the undo/redo availability when it changes.
type HistoryButtons struct {
	out   io.Writer
	state ports.ButtonState
	shown bool
}

func NewHistoryButtons(out io.Writer) *HistoryButtons {
	return &HistoryButtons{out: out}
}

func (b *HistoryButtons) UpdateButtons(state ports.ButtonState) {
	if b.shown && state == b.state {
		return
	}
	b.state, b.shown = state, true
	fmt.Fprintf(b.out, "history: %s %s\n", button("undo", state.CanUndo), button("redo", state.CanRedo))
}

func (b *HistoryButtons) Destroy() {
	b.shown = false
}

// State returns the last state shown.
func (b *HistoryButtons) State() ports.ButtonState {
	return b.state
}

func button(name string, enabled bool) string {
	if enabled {
		return "[" + name + "]"
	}
	return "(" + name + ")"
}

// TreeRenderer prints the laid out tree one generation per block.
type TreeRenderer struct {
	out io.Writer
}

func NewTreeRenderer(out io.Writer) *TreeRenderer {
	return &TreeRenderer{out: out}
}

func (r *TreeRenderer) Render(tree []*ports.TreeDatum, opts ports.UpdateOptions) {
	if opts.Initial {
		fmt.Fprintf(r.out, "tree: %d people\n", len(tree))
	}
	depth, first := 0, true
	for _, n := range tree {
		if first || n.Depth != depth {
			depth, first = n.Depth, false
			fmt.Fprintf(r.out, "  generation %+d\n", depth)
		}
		fmt.Fprintf(r.out, "    %s\n", nodeLabel(n))
	}
}

func nodeLabel(n *ports.TreeDatum) string {
	p := n.Data
	switch {
	case p.NewRel != nil:
		return fmt.Sprintf("+ %s (%s)", p.NewRel.Label, p.ID)
	case p.Unknown:
		return fmt.Sprintf("? unknown (%s)", p.ID)
	case p.ToAdd:
		return fmt.Sprintf("~ %s (%s)", forms.DisplayName(p), p.ID)
	}
	return fmt.Sprintf("%s (%s)", forms.DisplayName(p), p.ID)
}

// Package mocks holds testify mocks and small recording fakes for the UI
// collaborators the editor talks to.
package mocks

import (
	"github.com/ckiev5/family-chart/application/ports"
	"github.com/stretchr/testify/mock"
)

// MockRenderer mocks ports.Renderer
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(tree []*ports.TreeDatum, opts ports.UpdateOptions) {
	m.Called(tree, opts)
}

// MockHistoryControls mocks ports.HistoryControls
type MockHistoryControls struct {
	mock.Mock
}

func (m *MockHistoryControls) UpdateButtons(state ports.ButtonState) {
	m.Called(state)
}

func (m *MockHistoryControls) Destroy() {
	m.Called()
}

// MockFormContainer mocks ports.FormContainer
type MockFormContainer struct {
	mock.Mock
}

func (m *MockFormContainer) Populate(f ports.Form) {
	m.Called(f)
}

func (m *MockFormContainer) Close() {
	m.Called()
}

func (m *MockFormContainer) Destroy() {
	m.Called()
}

// StubModal records confirmation requests so a test can answer them.
type StubModal struct {
	Prompts []ports.ConfirmPrompt
	accept  func()
	reject  func()
}

func (m *StubModal) Confirm(prompt ports.ConfirmPrompt, onAccept, onReject func()) {
	m.Prompts = append(m.Prompts, prompt)
	m.accept, m.reject = onAccept, onReject
}

// Pending reports whether a prompt is waiting for an answer.
func (m *StubModal) Pending() bool { return m.accept != nil }

// Accept answers the pending prompt with yes.
func (m *StubModal) Accept() {
	fn := m.accept
	m.accept, m.reject = nil, nil
	if fn != nil {
		fn()
	}
}

// Reject answers the pending prompt with no.
func (m *StubModal) Reject() {
	fn := m.reject
	m.accept, m.reject = nil, nil
	if fn != nil {
		fn()
	}
}

// RecordingFormBuilder returns the descriptor itself as the form and keeps
// every descriptor it was given.
type RecordingFormBuilder struct {
	Built []ports.FormDescriptor
}

func (b *RecordingFormBuilder) BuildEditForm(d ports.FormDescriptor) (ports.Form, error) {
	b.Built = append(b.Built, d)
	return d, nil
}

func (b *RecordingFormBuilder) BuildNewForm(d ports.FormDescriptor) (ports.Form, error) {
	b.Built = append(b.Built, d)
	return d, nil
}

// Last returns the most recent descriptor.
func (b *RecordingFormBuilder) Last() ports.FormDescriptor {
	if len(b.Built) == 0 {
		return ports.FormDescriptor{}
	}
	return b.Built[len(b.Built)-1]
}

// RecordingContainer keeps the populated form and counts closes.
type RecordingContainer struct {
	Current   ports.Form
	Populated int
	Closed    int
	Destroyed int
}

func (c *RecordingContainer) Populate(f ports.Form) {
	c.Current = f
	c.Populated++
}

func (c *RecordingContainer) Close() {
	c.Current = nil
	c.Closed++
}

func (c *RecordingContainer) Destroy() {
	c.Current = nil
	c.Destroyed++
}

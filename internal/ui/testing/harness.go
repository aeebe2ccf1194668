// Package testing drives Bubble Tea models step by step in unit tests.
package testing

import (
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sebdah/goldie/v2"
)

// maxCommandDepth bounds how many command generations a single step follows,
// so self-rescheduling ticks (spinners) terminate.
const maxCommandDepth = 10

// TestHarness feeds messages to a model and asserts on its view and state.
//
//	uitesting.NewTestHarness(t, model).
//		Step(uitesting.TestStep[*DashboardView]{
//			Name: "status_arrives",
//			Msg:  statusMsg{...},
//			ViewAssert: func(t *testing.T, view string) { ... },
//		}).
//		Expect(uitesting.TestStep[*DashboardView]{
//			Name:            "command_result",
//			ExpectedMsgType: commandDoneMsg{},
//		}).
//		Run(t)
//
// Commands returned by Update are executed synchronously and their messages
// fed back into the model. Expect steps intercept those messages in order.
type TestHarness[T tea.Model] struct {
	model    T
	steps    []TestStep[T]
	expected []TestStep[T]
	next     int
	golden   *goldie.Goldie
}

// TestStep is one message plus the assertions to run after it.
type TestStep[T tea.Model] struct {
	Name string

	// Msg is sent to Update. Nil only renders the current state.
	// Expect steps leave it nil; their message comes from a command.
	Msg tea.Msg

	// ExpectedMsgType restricts an Expect step to one message type.
	ExpectedMsgType tea.Msg

	// MessageAssert inspects an intercepted message before Update sees it.
	MessageAssert func(t *testing.T, msg tea.Msg)

	// ViewGolden compares View() to testdata/<ViewGolden>.golden
	ViewGolden string

	ViewAssert  func(t *testing.T, view string)
	ModelAssert func(t *testing.T, m T)
}

// NewTestHarness prepares a harness. Colors are disabled so views are plain text.
func NewTestHarness[T tea.Model](t *testing.T, model T) *TestHarness[T] {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)

	return &TestHarness[T]{
		model: model,
		golden: goldie.New(t,
			goldie.WithFixtureDir("testdata"),
			goldie.WithNameSuffix(".golden"),
		),
	}
}

func (h *TestHarness[T]) Step(step TestStep[T]) *TestHarness[T] {
	h.steps = append(h.steps, step)
	return h
}

// Expect registers a step that receives the next message produced by a command.
func (h *TestHarness[T]) Expect(step TestStep[T]) *TestHarness[T] {
	h.expected = append(h.expected, step)
	return h
}

// Run initializes the model and executes every step in order.
func (h *TestHarness[T]) Run(t *testing.T) {
	t.Helper()
	h.next = 0

	h.follow(t, h.model.Init(), 0)

	for _, step := range h.steps {
		t.Run(step.Name, func(t *testing.T) {
			if step.Msg != nil {
				cmd := h.update(t, step.Msg)
				h.follow(t, cmd, 0)
			}
			h.assert(t, step)
		})
	}

	if h.next < len(h.expected) {
		t.Errorf("expected step %q never received a message", h.expected[h.next].Name)
	}
}

// Model returns the model as it is after the steps run so far.
func (h *TestHarness[T]) Model() T {
	return h.model
}

func (h *TestHarness[T]) update(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	updated, cmd := h.model.Update(msg)
	m, ok := updated.(T)
	if !ok {
		t.Fatalf("Update returned %T, want %T", updated, h.model)
	}
	h.model = m
	return cmd
}

func (h *TestHarness[T]) follow(t *testing.T, cmd tea.Cmd, depth int) {
	t.Helper()
	if cmd == nil {
		return
	}
	if depth >= maxCommandDepth {
		t.Log("max command depth reached")
		return
	}

	msg := cmd()
	if msg == nil {
		return
	}

	// Batches run each of their commands in turn
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			h.follow(t, c, depth+1)
		}
		return
	}

	if h.intercept(t, msg) {
		return
	}
	h.follow(t, h.update(t, msg), depth+1)
}

func (h *TestHarness[T]) intercept(t *testing.T, msg tea.Msg) bool {
	t.Helper()
	if h.next >= len(h.expected) {
		return false
	}

	step := h.expected[h.next]
	if step.ExpectedMsgType != nil && reflect.TypeOf(msg) != reflect.TypeOf(step.ExpectedMsgType) {
		return false
	}
	h.next++

	if step.MessageAssert != nil {
		step.MessageAssert(t, msg)
	}
	h.update(t, msg)

	t.Run(step.Name, func(t *testing.T) {
		h.assert(t, step)
	})
	return true
}

func (h *TestHarness[T]) assert(t *testing.T, step TestStep[T]) {
	t.Helper()

	view := normalizeView(h.model.View())
	if step.ViewGolden != "" {
		h.golden.Assert(t, step.ViewGolden, []byte(view))
	}
	if step.ViewAssert != nil {
		step.ViewAssert(t, view)
	}
	if step.ModelAssert != nil {
		step.ModelAssert(t, h.model)
	}
}

func normalizeView(view string) string {
	return strings.TrimSpace(strings.ReplaceAll(view, "\r\n", "\n"))
}

// AssertContains fails when view lacks substring, printing the whole view.
func AssertContains(t *testing.T, view, substring string) {
	t.Helper()
	if !strings.Contains(view, substring) {
		t.Errorf("view does not contain %q\n%s", substring, view)
	}
}

// AssertNotContains fails when view contains substring.
func AssertNotContains(t *testing.T, view, substring string) {
	t.Helper()
	if strings.Contains(view, substring) {
		t.Errorf("view unexpectedly contains %q\n%s", substring, view)
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashview

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/nutrismart-tui/internal/api"
	"github.com/jeranaias/nutrismart-tui/internal/auth"
	"github.com/jeranaias/nutrismart-tui/internal/bills"
	"github.com/jeranaias/nutrismart-tui/internal/gateway"
	"github.com/jeranaias/nutrismart-tui/internal/model"
	"github.com/jeranaias/nutrismart-tui/internal/realtime"
	"github.com/jeranaias/nutrismart-tui/internal/store"
	"github.com/jeranaias/nutrismart-tui/internal/ui/styles"
)

type recordedWrite struct {
	Path   string
	Fields map[string]any
	Merge  bool
}

// recordStore captures writes so tests can assert on mutation payloads.
type recordStore struct {
	mu     sync.Mutex
	writes []recordedWrite
}

func (s *recordStore) Write(ctx context.Context, path string, fields map[string]any, merge bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, recordedWrite{Path: path, Fields: fields, Merge: merge})
	return nil
}

func (s *recordStore) all() []recordedWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recordedWrite(nil), s.writes...)
}

func (s *recordStore) ListenCollection(ctx context.Context, path string) (<-chan store.Update, error) {
	ch := make(chan store.Update)
	go func() { <-ctx.Done(); close(ch) }()
	return ch, nil
}

func (s *recordStore) ListenDocument(ctx context.Context, path string) (<-chan store.Update, error) {
	ch := make(chan store.Update)
	go func() { <-ctx.Done(); close(ch) }()
	return ch, nil
}

type recordBackend struct {
	mu       sync.Mutex
	profiles []model.Profile
	receipts []json.RawMessage
}

func (b *recordBackend) Chat(ctx context.Context, message, history string) (api.ChatReply, error) {
	return api.ChatReply{Response: "ok"}, nil
}

func (b *recordBackend) SyncProfile(ctx context.Context, profile model.Profile) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.profiles = append(b.profiles, profile)
	return nil
}

func (b *recordBackend) SubmitBill(ctx context.Context, receipt json.RawMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.receipts = append(b.receipts, receipt)
	return nil
}

type fixedSession struct{ sess *auth.Session }

func (f fixedSession) Current() *auth.Session { return f.sess }

func newTestModel(t *testing.T) (*Model, *recordStore, *recordBackend) {
	t.Helper()
	st := &recordStore{}
	backend := &recordBackend{}
	collections := realtime.NewCollections(st, "nutrismart", "", nil)
	t.Cleanup(collections.Close)
	gw := gateway.New(backend, st, fixedSession{&auth.Session{UserID: "u1"}}, collections, "nutrismart", nil)

	m := New(styles.NewTheme("dark"), gw, collections, nil)
	m.SetSize(100, 30)
	return m, st, backend
}

func press(m *Model, key string) tea.Cmd {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func typeInto(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// =============================================================================
// NAVIGATION
// =============================================================================

func TestTabCyclesSections(t *testing.T) {
	m, _, _ := newTestModel(t)

	if m.section != SectionGoals {
		t.Fatalf("initial section = %v", m.section)
	}
	press(m, "tab")
	if m.section != SectionInventory {
		t.Errorf("after one tab section = %v", m.section)
	}
	press(m, "tab")
	press(m, "tab")
	if m.section != SectionGoals {
		t.Errorf("tab should wrap back to goals, got %v", m.section)
	}
}

// =============================================================================
// GOALS
// =============================================================================

func TestGoalLevelsAligned(t *testing.T) {
	m, _, _ := newTestModel(t)

	// The default profile has Iron and Protein; the shorter name gets padded
	// so both levels start in the same column.
	var ironCol, proteinCol int
	for _, line := range strings.Split(m.renderGoals(), "\n") {
		if strings.Contains(line, "Iron:") {
			ironCol = strings.Index(line, "high")
		}
		if strings.Contains(line, "Protein:") {
			proteinCol = strings.Index(line, "low")
		}
	}
	if ironCol <= 0 || proteinCol <= 0 {
		t.Fatal("default goals missing from the goals panel")
	}
	if ironCol != proteinCol {
		t.Errorf("levels start at columns %d and %d, want aligned", ironCol, proteinCol)
	}
}

func TestAddGoalWritesFullProfile(t *testing.T) {
	m, st, backend := newTestModel(t)

	press(m, "a")
	if m.mode != modeAddGoal {
		t.Fatal("a should open the add-goal form")
	}
	press(m, "right") // second nutrient
	press(m, "tab")   // focus level
	press(m, "right") // second level
	cmd := press(m, "enter")
	if cmd == nil {
		t.Fatal("enter should produce a save command")
	}

	res, ok := cmd().(OpResultMsg)
	if !ok || res.Err != nil {
		t.Fatalf("save failed: %+v", res)
	}

	writes := st.all()
	if len(writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(writes))
	}
	w := writes[0]
	if !strings.HasSuffix(w.Path, "profile/nutritional_goals") {
		t.Errorf("wrote to %q", w.Path)
	}
	if w.Merge {
		t.Error("profile write must replace the document")
	}
	// New goal plus the defaults the profile started from.
	nutrient := model.NutrientOptions[1]
	if w.Fields[nutrient] != model.LevelOptions[1] {
		t.Errorf("fields = %v, missing %s", w.Fields, nutrient)
	}
	if len(backend.profiles) != 1 {
		t.Errorf("backend sync calls = %d, want 1", len(backend.profiles))
	}
}

func TestDeleteGoalRequiresConfirmation(t *testing.T) {
	m, st, _ := newTestModel(t)

	press(m, "d")
	if m.mode != modeConfirmDelete {
		t.Fatal("d should ask for confirmation")
	}

	// Declining leaves everything untouched.
	press(m, "n")
	if m.mode != modeBrowse || m.deleteTarget != "" {
		t.Error("n should cancel the delete")
	}
	if len(st.all()) != 0 {
		t.Error("declined delete must not write")
	}

	press(m, "d")
	target := m.deleteTarget
	cmd := press(m, "y")
	if cmd == nil {
		t.Fatal("confirmed delete should produce a command")
	}
	if res := cmd().(OpResultMsg); res.Err != nil {
		t.Fatalf("delete failed: %v", res.Err)
	}

	w := st.all()[0]
	if _, present := w.Fields[target]; present {
		t.Errorf("deleted nutrient %q still in written profile %v", target, w.Fields)
	}
}

// =============================================================================
// INVENTORY
// =============================================================================

func TestAddItemAssemblesQuantity(t *testing.T) {
	m, st, _ := newTestModel(t)

	press(m, "tab") // inventory section
	press(m, "a")
	if m.mode != modeAddItem {
		t.Fatal("a should open the add-item form")
	}

	typeInto(m, "Brown Rice")
	press(m, "tab")
	typeInto(m, "2")
	press(m, "tab") // unit picker
	press(m, "right")
	cmd := press(m, "enter")
	if cmd == nil {
		t.Fatal("enter should produce a save command")
	}
	if res := cmd().(OpResultMsg); res.Err != nil {
		t.Fatalf("add failed: %v", res.Err)
	}

	w := st.all()[0]
	if !strings.HasSuffix(w.Path, "inventory/brown rice") {
		t.Errorf("item written to %q", w.Path)
	}
	want := "2 " + model.QuantityUnits[1]
	if w.Fields["quantity"] != want {
		t.Errorf("quantity = %v, want %q", w.Fields["quantity"], want)
	}
}

func TestAddItemValidation(t *testing.T) {
	m, st, _ := newTestModel(t)

	press(m, "tab")
	press(m, "a")
	if cmd := press(m, "enter"); cmd != nil {
		t.Error("empty form must not save")
	}
	if m.errMsg == "" {
		t.Error("validation error not surfaced")
	}
	if m.mode != modeAddItem {
		t.Error("form should stay open on validation failure")
	}
	if len(st.all()) != 0 {
		t.Error("nothing should be written")
	}

	press(m, "esc")
	if m.mode != modeBrowse {
		t.Error("esc should close the form")
	}
}

// =============================================================================
// RECEIPTS
// =============================================================================

func TestReceiptDeliveryAndSubmit(t *testing.T) {
	m, _, backend := newTestModel(t)

	r := bills.Receipt{Path: "/tmp/r1.json", Name: "r1.json", Content: json.RawMessage(`{"total": 12}`)}
	m.Update(ReceiptMsg{Receipt: r})
	if len(m.receipts) != 1 {
		t.Fatal("receipt not queued")
	}

	press(m, "tab")
	press(m, "tab") // bills section
	cmd := press(m, "enter")
	if cmd == nil {
		t.Fatal("enter should submit the selected receipt")
	}

	res := cmd().(receiptSubmittedMsg)
	if res.Err != nil {
		t.Fatalf("submit failed: %v", res.Err)
	}
	if len(backend.receipts) != 1 || string(backend.receipts[0]) != `{"total": 12}` {
		t.Errorf("backend receipts = %v", backend.receipts)
	}

	m.Update(res)
	if len(m.receipts) != 0 {
		t.Error("submitted receipt should leave the queue")
	}
}

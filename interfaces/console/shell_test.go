package console

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/ckiev5/family-chart/application/editor"
	"github.com/ckiev5/family-chart/domain/core/entities"
	"github.com/ckiev5/family-chart/infrastructure/persistence/dataset"
	"github.com/ckiev5/family-chart/infrastructure/persistence/memory"
	"github.com/ckiev5/family-chart/internal/fixtures"
	apperrors "github.com/ckiev5/family-chart/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	out       *bytes.Buffer
	store     *memory.Store
	container *Container
	buttons   *HistoryButtons
	shell     *Shell
}

func newFixture(t *testing.T, savePath string) *fixture {
	t.Helper()
	g := fixtures.NewFamilyBuilder().
		Person("ann", "Ann", "F").
		Person("bob", "Bob", "M").
		Spouses("ann", "bob").
		MustBuild()

	out := &bytes.Buffer{}
	store := memory.NewStore(g, "ann", memory.WithRenderer(NewTreeRenderer(out)))
	container := NewContainer(out)
	modal := NewModal(out)
	buttons := NewHistoryButtons(out)

	c, err := editor.New(store, container, modal, editor.WithHistoryControls(buttons))
	require.NoError(t, err)
	c.SetFormBuilder(FormBuilder{})

	return &fixture{
		out:       out,
		store:     store,
		container: container,
		buttons:   buttons,
		shell:     NewShell(c, store, modal, out, savePath, zap.NewNop()),
	}
}

func (f *fixture) run(t *testing.T, lines ...string) {
	t.Helper()
	for _, line := range lines {
		quit, err := f.shell.Execute(line)
		require.NoError(t, err, line)
		require.False(t, quit)
	}
}

func TestShell_EditAndUndo(t *testing.T) {
	f := newFixture(t, "")

	f.run(t, "open ann", "submit first name=Anna, last name=Smith")
	ann, _ := f.store.Datum("ann")
	assert.Equal(t, "Anna", ann.Attr(entities.AttrFirstName))
	assert.Equal(t, "Smith", ann.Attr(entities.AttrLastName))
	assert.True(t, f.buttons.State().CanUndo)

	form, ok := f.container.Current()
	require.True(t, ok)
	assert.Contains(t, form.String(), "first name: Anna")

	f.run(t, "undo")
	ann, _ = f.store.Datum("ann")
	assert.Equal(t, "Ann", ann.Attr(entities.AttrFirstName))
	assert.True(t, f.buttons.State().CanRedo)

	f.run(t, "undo")
	assert.Contains(t, f.out.String(), "nothing to undo")
}

func TestShell_RemoveRelationship(t *testing.T) {
	f := newFixture(t, "")

	f.run(t, "remove", "open bob")
	assert.Contains(t, f.out.String(), "? Remove relationship")

	f.run(t, "yes")
	ann, _ := f.store.Datum("ann")
	assert.False(t, ann.RelatedTo("bob"))

	_, err := f.shell.Execute("yes")
	assert.True(t, apperrors.IsConflict(err))
}

func TestShell_AddRelativeRendersPlaceholders(t *testing.T) {
	f := newFixture(t, "")

	f.run(t, "add ann", "state")
	assert.Contains(t, f.out.String(), "+ Add Father")
	assert.Contains(t, f.out.String(), "state: form_open_add_relative")

	f.run(t, "cancel", "state")
	assert.Contains(t, f.out.String(), "state: form_open_plain")
	assert.Equal(t, 2, f.store.Data().Len())
}

func TestShell_ExportAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "family.json")
	f := newFixture(t, path)

	f.run(t, "add", "export")
	assert.Contains(t, f.out.String(), "main: ann")
	assert.NotContains(t, f.out.String(), "_new_rel_data")

	f.run(t, "save")
	doc, err := dataset.Load(path)
	require.NoError(t, err)
	assert.Len(t, doc.People, 2)
}

func TestShell_Errors(t *testing.T) {
	f := newFixture(t, "")

	_, err := f.shell.Execute("frobnicate")
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.shell.Execute("open")
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.shell.Execute("open ghost")
	assert.True(t, apperrors.IsInvariant(err))

	f.run(t, "open ann")
	_, err = f.shell.Execute("submit nonsense")
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.shell.Execute("save")
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.shell.Execute("main ghost")
	assert.True(t, apperrors.IsNotFound(err))

	quit, err := f.shell.Execute("quit")
	assert.NoError(t, err)
	assert.True(t, quit)
}

func TestParseValues(t *testing.T) {
	values, err := parseValues(" first name = Ann , birthday=1990 ")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"first name": "Ann", "birthday": "1990"}, values)

	values, err = parseValues("")
	require.NoError(t, err)
	assert.Empty(t, values)

	_, err = parseValues("=x")
	assert.Error(t, err)
}

package config_test

import (
	"testing"

	"github.com/ckiev5/family-chart/application/editor"
	"github.com/ckiev5/family-chart/application/ports"
	"github.com/ckiev5/family-chart/infrastructure/config"
	"github.com/ckiev5/family-chart/infrastructure/persistence/memory"
	"github.com/ckiev5/family-chart/internal/fixtures"
	"github.com/ckiev5/family-chart/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditorConfig_Apply(t *testing.T) {
	g := fixtures.NewFamilyBuilder().Person("ann", "Ann", "F").MustBuild()
	store := memory.NewStore(g, "ann")
	builder := &mocks.RecordingFormBuilder{}
	c, err := editor.New(store, &mocks.RecordingContainer{}, &mocks.StubModal{})
	require.NoError(t, err)
	c.SetFormBuilder(builder)

	cfg := config.Default(config.Test).Editor
	cfg.Fields = []ports.Field{{ID: "nickname", Type: "text"}}
	cfg.Editable = false
	cfg.LinkExisting = ports.LinkExistingConfig{Enabled: true, Title: "Link", LinkRelLabel: "Pick"}

	assert.Same(t, c, cfg.Apply(c))
	assert.Equal(t, []ports.Field{{ID: "nickname", Label: "nickname", Type: "text"}}, c.Fields())

	require.NoError(t, c.Open(g.People()[0]))
	d := builder.Last()
	assert.False(t, d.Editable)
	require.Len(t, d.Fields, 1)
	assert.Equal(t, "nickname", d.Fields[0].ID)
}

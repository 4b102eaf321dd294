package dataset

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ckiev5/family-chart/domain/core/entities"
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
	"github.com/ckiev5/family-chart/internal/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlDoc = `
main: b
people:
  - id: a
    data: {first name: Ann, gender: F}
    rels: {spouses: [b]}
  - id: b
    data: {first name: Bob, gender: M}
    rels: {spouses: [a]}
`

func TestDecode_YAMLDocument(t *testing.T) {
	doc, err := Decode(strings.NewReader(yamlDoc), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, valueobjects.PersonID("b"), doc.Main)
	require.Len(t, doc.People, 2)
	assert.Equal(t, "Ann", doc.People[0].Attr(entities.AttrFirstName))

	g, err := doc.Graph()
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
}

func TestDecode_BareLists(t *testing.T) {
	doc, err := Decode(strings.NewReader(`[{"id": "a", "data": {"first name": "Ann"}}]`), FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, doc.Main)
	require.Len(t, doc.People, 1)

	doc, err = Decode(strings.NewReader("- id: a\n  data: {first name: Ann}\n"), FormatYAML)
	require.NoError(t, err)
	require.Len(t, doc.People, 1)

	doc, err = Decode(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, doc.People)
}

func TestDecode_InvalidGraph(t *testing.T) {
	doc, err := Decode(strings.NewReader("people:\n  - id: a\n    rels: {spouses: [ghost]}\n"), FormatYAML)
	require.NoError(t, err)
	_, err = doc.Graph()
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	people := fixtures.NewFamilyBuilder().
		Person("a", "Ann", "F").
		Person("c", "Cid", "M").
		Child("a", "c").
		People()

	for _, name := range []string{"family.yaml", "family.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, Save(path, Document{Main: "c", People: people}))

			doc, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, valueobjects.PersonID("c"), doc.Main)
			require.Len(t, doc.People, 2)
			assert.True(t, doc.People[1].Rels.Parents.Contains("a"))
		})
	}
}

func TestEncodeOmitsMarkers(t *testing.T) {
	p := fixtures.NewPersonBuilder("a").WithFirstName("Ann").Build()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatJSON, Document{People: []entities.Person{p.Exported()}}))
	assert.NotContains(t, buf.String(), "to_add")
	assert.NotContains(t, buf.String(), "_new_rel_data")
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFor("x.JSON"))
	assert.Equal(t, FormatYAML, FormatFor("x.yml"))
	assert.Equal(t, FormatYAML, FormatFor("x"))
}

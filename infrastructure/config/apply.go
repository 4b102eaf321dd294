package config

import (
	"github.com/ckiev5/family-chart/application/editor"
)

// Apply pushes the editor section onto c through its setters.
func (e EditorConfig) Apply(c *editor.Controller) *editor.Controller {
	fields := make([]any, len(e.Fields))
	for i, f := range e.Fields {
		fields[i] = f
	}
	return c.
		SetFields(fields).
		SetFixed(e.Fixed).
		SetEditable(e.Editable).
		SetEditFirst(e.EditFirst).
		SetHistoryLimit(e.HistoryLimit).
		SetAddRelLabels(e.AddRelLabels).
		SetLinkExistingRelConfig(e.LinkExisting)
}

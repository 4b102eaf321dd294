package editor

import (
	"fmt"
	"strings"

	"github.com/ckiev5/family-chart/application/forms"
	"github.com/ckiev5/family-chart/application/modes"
	"github.com/ckiev5/family-chart/application/ports"
	"github.com/ckiev5/family-chart/domain/core/entities"
	"github.com/ckiev5/family-chart/pkg/validation"
	"go.uber.org/zap"
)

// SetFields replaces the form fields. Each element may be a field id string,
// a ports.Field, a *ports.Field or a map with id, label, type and options
// keys. Elements that cannot be turned into a valid field are dropped with a
// warning.
func (c *Controller) SetFields(fields []any) *Controller {
	if !c.configurable("SetFields") {
		return c
	}
	out := make([]ports.Field, 0, len(fields))
	for i, raw := range fields {
		f, err := normalizeField(raw)
		if err == nil {
			err = validation.GetValidator().Struct(f)
		}
		if err != nil {
			c.logger.Warn("dropping invalid field",
				zap.Int("index", i),
				zap.Any("value", raw),
				zap.Error(err),
			)
			continue
		}
		out = append(out, f)
	}
	c.settings.Fields = out
	return c
}

// Fields returns the configured form fields.
func (c *Controller) Fields() []ports.Field {
	return append([]ports.Field(nil), c.settings.Fields...)
}

// SetFixed keeps the form open after a submit when true.
func (c *Controller) SetFixed(fixed bool) *Controller {
	if c.configurable("SetFixed") {
		c.settings.Fixed = fixed
	}
	return c
}

// SetEditable turns every form read only when false.
func (c *Controller) SetEditable(editable bool) *Controller {
	if c.configurable("SetEditable") {
		c.settings.Editable = editable
	}
	return c
}

// SetEditFirst opens forms straight in edit mode.
func (c *Controller) SetEditFirst(editFirst bool) *Controller {
	if c.configurable("SetEditFirst") {
		c.settings.EditFirst = editFirst
	}
	return c
}

func (c *Controller) SetOnChange(fn func()) *Controller {
	if c.configurable("SetOnChange") {
		c.settings.Callbacks.OnChange = fn
	}
	return c
}

func (c *Controller) SetOnSubmit(fn func(p entities.Person, sub ports.Submission)) *Controller {
	if c.configurable("SetOnSubmit") {
		c.settings.Callbacks.OnSubmit = fn
	}
	return c
}

func (c *Controller) SetOnDelete(fn func(p entities.Person)) *Controller {
	if c.configurable("SetOnDelete") {
		c.settings.Callbacks.OnDelete = fn
	}
	return c
}

// SetOnError receives invariant violations and other fatal errors.
func (c *Controller) SetOnError(fn func(err error)) *Controller {
	if c.configurable("SetOnError") {
		c.onError = fn
	}
	return c
}

func (c *Controller) SetOnFormCreation(fn func(form ports.Form, d ports.FormDescriptor)) *Controller {
	if c.configurable("SetOnFormCreation") {
		c.settings.Callbacks.OnFormCreation = fn
	}
	return c
}

// SetCanEdit restricts which people can be edited. nil allows everyone.
func (c *Controller) SetCanEdit(fn forms.PersonPredicate) *Controller {
	if c.configurable("SetCanEdit") {
		c.settings.CanEdit = fn
	}
	return c
}

// SetCanDelete restricts which people can be deleted. nil allows everyone.
func (c *Controller) SetCanDelete(fn forms.PersonPredicate) *Controller {
	if c.configurable("SetCanDelete") {
		c.settings.CanDelete = fn
	}
	return c
}

// SetCanAdd restricts which placeholders the add-relative mode drafts. A
// person for whom nothing can be drafted gets no add relative action.
func (c *Controller) SetCanAdd(fn modes.CanAddFunc) *Controller {
	if c.configurable("SetCanAdd") {
		c.add.SetCanAdd(fn)
	}
	return c
}

// SetFormBuilder replaces the form builder. nil is rejected.
func (c *Controller) SetFormBuilder(b ports.FormBuilder) *Controller {
	if !c.configurable("SetFormBuilder") {
		return c
	}
	if b == nil {
		c.logger.Warn("ignoring nil form builder")
		return c
	}
	c.settings.Builder = b
	return c
}

// SetAddRelLabels changes the placeholder captions. Empty captions keep
// their default.
func (c *Controller) SetAddRelLabels(labels ports.AddRelLabels) *Controller {
	if !c.configurable("SetAddRelLabels") {
		return c
	}
	defaults := ports.DefaultAddRelLabels()
	var filled []string
	fill := func(name string, dst *string, def string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = def
			filled = append(filled, name)
		}
	}
	fill("father", &labels.Father, defaults.Father)
	fill("mother", &labels.Mother, defaults.Mother)
	fill("spouse", &labels.Spouse, defaults.Spouse)
	fill("son", &labels.Son, defaults.Son)
	fill("daughter", &labels.Daughter, defaults.Daughter)
	if len(filled) > 0 {
		c.logger.Warn("empty add relative labels replaced by defaults", zap.Strings("labels", filled))
	}
	c.add.SetLabels(labels)
	return c
}

// SetLinkExistingRelConfig configures linking placeholders to existing
// people. An invalid configuration is ignored with a warning.
func (c *Controller) SetLinkExistingRelConfig(cfg ports.LinkExistingConfig) *Controller {
	if !c.configurable("SetLinkExistingRelConfig") {
		return c
	}
	if err := validation.GetValidator().Struct(cfg); err != nil {
		c.logger.Warn("ignoring invalid link existing configuration", zap.Error(err))
		return c
	}
	c.settings.LinkExisting = cfg
	return c
}

// SetHistoryLimit caps the undo history. Zero means unlimited.
func (c *Controller) SetHistoryLimit(n int) *Controller {
	if !c.configurable("SetHistoryLimit") {
		return c
	}
	if n < 0 {
		c.logger.Warn("ignoring negative history limit", zap.Int("limit", n))
		return c
	}
	c.history.SetLimit(n)
	return c
}

func (c *Controller) configurable(setter string) bool {
	if c.destroyed {
		c.logger.Warn("setter called on destroyed editor", zap.String("setter", setter))
		return false
	}
	return true
}

// normalizeField turns one SetFields element into a field. Bare strings
// become text fields labelled by their id.
func normalizeField(raw any) (ports.Field, error) {
	var f ports.Field
	switch v := raw.(type) {
	case string:
		f = ports.Field{ID: v}
	case ports.Field:
		f = v
	case *ports.Field:
		if v == nil {
			return f, fmt.Errorf("nil field")
		}
		f = *v
	case map[string]any:
		var err error
		if f, err = fieldFromMap(v); err != nil {
			return f, err
		}
	case map[string]string:
		f = ports.Field{ID: v["id"], Label: v["label"], Type: v["type"]}
	default:
		return f, fmt.Errorf("unsupported field value of type %T", raw)
	}

	f.ID = strings.TrimSpace(f.ID)
	if f.Label == "" {
		f.Label = f.ID
	}
	if f.Type == "" {
		f.Type = "text"
	}
	return f, nil
}

func fieldFromMap(m map[string]any) (ports.Field, error) {
	var f ports.Field
	str := func(key string) (string, error) {
		v, ok := m[key]
		if !ok || v == nil {
			return "", nil
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("field %s must be a string, got %T", key, v)
		}
		return s, nil
	}

	var err error
	if f.ID, err = str("id"); err != nil {
		return f, err
	}
	if f.Label, err = str("label"); err != nil {
		return f, err
	}
	if f.Type, err = str("type"); err != nil {
		return f, err
	}

	switch opts := m["options"].(type) {
	case nil:
	case []string:
		f.Options = append(f.Options, opts...)
	case []any:
		for _, o := range opts {
			s, ok := o.(string)
			if !ok {
				return f, fmt.Errorf("field options must be strings, got %T", o)
			}
			f.Options = append(f.Options, s)
		}
	default:
		return f, fmt.Errorf("field options must be a list, got %T", opts)
	}
	return f, nil
}

package editor

import (
	"github.com/ckiev5/family-chart/application/ports"
	"github.com/ckiev5/family-chart/domain/core/aggregates"
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
	"go.uber.org/zap"
)

// addListener receives add-relative outcomes. Completion is followed up by
// the form orchestrator, which owns the commit and the next form.
type addListener struct{ c *Controller }

func (l addListener) Changed(id valueobjects.PersonID) {
	l.c.logger.Debug("relative completed", zap.String("person_id", id.String()))
}

func (l addListener) Cancelled(subject valueobjects.PersonID) {
	l.c.logger.Debug("add relative mode ended", zap.String("subject", subject.String()))
}

func (l addListener) Failed(err error) { l.c.fail(err) }

// removeListener receives remove-relative outcomes. Removal is confirmed
// from the modal, outside any controller call, so the listener records the
// history entry itself.
type removeListener struct{ c *Controller }

func (l removeListener) Changed(subject valueobjects.PersonID) {
	l.c.store.UpdateTree(ports.UpdateOptions{})
	l.c.history.Commit()
	l.c.changed()
}

func (l removeListener) Cancelled(subject valueobjects.PersonID) {
	c := l.c
	if c.destroyed {
		return
	}
	s, ok := c.forms.Session()
	if !ok || s.Mode != ports.ModeRemoveRelative {
		return
	}
	if _, exists := c.store.Datum(subject); !exists {
		c.forms.Close()
		return
	}
	c.fail(c.forms.Open(subject, ports.ModeNone))
}

func (l removeListener) Failed(err error) { l.c.fail(err) }

// historySource hands the history a copy of the graph without drafts.
type historySource struct{ c *Controller }

func (s historySource) HistoryGraph() *aggregates.FamilyGraph {
	g := s.c.store.Data().Clone()
	s.c.add.CleanUp(g)
	return g
}

// historyNavigator realigns the editor after undo or redo.
type historyNavigator struct{ c *Controller }

func (n historyNavigator) HistoryNavigated(mainID valueobjects.PersonID) {
	c := n.c
	c.add.Cancel()
	c.remove.Cancel()
	c.store.UpdateTree(ports.UpdateOptions{Initial: false})

	if _, ok := c.store.Datum(mainID); ok {
		c.fail(c.forms.Open(mainID, ports.ModeNone))
	} else {
		c.forms.Close()
	}
	c.changed()
}

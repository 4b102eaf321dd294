package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/ckiev5/family-chart/application/editor"
	"github.com/ckiev5/family-chart/application/ports"
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
	"github.com/ckiev5/family-chart/infrastructure/persistence/dataset"
	apperrors "github.com/ckiev5/family-chart/pkg/errors"
	"go.uber.org/zap"
)

const help = `commands:
  open <id>              open a person (selects the relative in remove mode)
  main <id>              make a person the main person
  add [id]               add relatives around a person (default: main)
  remove [id]            remove a relationship of a person (default: main)
  submit k=v, k=v        submit the open form
  link <id>              resolve the open placeholder onto an existing person
  delete                 delete the person in the open form
  cancel                 cancel the open form or mode
  yes | no               answer a confirmation
  undo | redo            move through the history
  history                list the history entries
  export                 print the dataset
  save                   write the dataset back to disk
  state                  show the editor state
  tree                   redraw the tree
  quit`

// ref is a bare id handed to the editor, which resolves it.
type ref valueobjects.PersonID

func (r ref) PersonID() valueobjects.PersonID { return valueobjects.PersonID(r) }

// Shell interprets one command line at a time.
type Shell struct {
	editor   *editor.Controller
	store    ports.Store
	modal    *Modal
	out      io.Writer
	savePath string
	logger   *zap.Logger
}

// NewShell creates a shell. savePath may be empty to disable save.
func NewShell(c *editor.Controller, store ports.Store, modal *Modal, out io.Writer, savePath string, logger *zap.Logger) *Shell {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Shell{
		editor:   c,
		store:    store,
		modal:    modal,
		out:      out,
		savePath: savePath,
		logger:   logger.Named("shell"),
	}
}

// Execute runs line. quit is true once the user asked to leave.
func (s *Shell) Execute(line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false, nil
	}
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	s.logger.Debug("command", zap.String("verb", verb), zap.String("args", rest))

	switch strings.ToLower(verb) {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprintln(s.out, help)
	case "open":
		if rest == "" {
			return false, apperrors.NewValidationError("open needs a person id")
		}
		err = s.editor.Open(ref(rest))
	case "main":
		err = s.selectMain(rest)
	case "add":
		err = s.editor.AddRelative(s.optional(rest))
	case "remove":
		err = s.editor.RemoveRelative(s.optional(rest))
	case "submit":
		var values map[string]string
		if values, err = parseValues(rest); err == nil {
			err = s.editor.Submit(ports.Submission{Values: values})
		}
	case "link":
		if rest == "" {
			return false, apperrors.NewValidationError("link needs a person id")
		}
		err = s.editor.Submit(ports.Submission{LinkRelID: valueobjects.PersonID(rest)})
	case "delete":
		err = s.editor.Submit(ports.Submission{Delete: true})
	case "cancel":
		err = s.editor.Cancel()
	case "yes", "y":
		err = s.modal.Answer(true)
	case "no", "n":
		err = s.modal.Answer(false)
	case "undo":
		err = s.step(s.editor.Undo, "nothing to undo")
	case "redo":
		err = s.step(s.editor.Redo, "nothing to redo")
	case "history":
		for i, label := range s.editor.HistoryLabels() {
			fmt.Fprintf(s.out, "%3d  %s\n", i, label)
		}
	case "export":
		err = s.export()
	case "save":
		err = s.save()
	case "state":
		s.printState()
	case "tree":
		s.store.UpdateTree(ports.UpdateOptions{})
	default:
		err = apperrors.NewValidationError(fmt.Sprintf("unknown command %q, try help", verb))
	}
	return false, err
}

func (s *Shell) optional(id string) ports.Subject {
	if id == "" {
		return nil
	}
	return ref(id)
}

func (s *Shell) selectMain(id string) error {
	if _, ok := s.store.Datum(valueobjects.PersonID(id)); !ok {
		return apperrors.NewPersonNotFoundError(id)
	}
	s.store.UpdateMainID(valueobjects.PersonID(id))
	s.store.UpdateTree(ports.UpdateOptions{})
	return nil
}

func (s *Shell) step(move func() (bool, error), noop string) error {
	moved, err := move()
	if err != nil {
		return err
	}
	if !moved {
		fmt.Fprintln(s.out, noop)
	}
	return nil
}

func (s *Shell) document() (dataset.Document, error) {
	people, err := s.editor.StoreDataCopy()
	if err != nil {
		return dataset.Document{}, err
	}
	return dataset.Document{Main: s.store.MainID(), People: people}, nil
}

func (s *Shell) export() error {
	doc, err := s.document()
	if err != nil {
		return err
	}
	return dataset.Encode(s.out, dataset.FormatYAML, doc)
}

func (s *Shell) save() error {
	if s.savePath == "" {
		return apperrors.NewValidationError("no output file configured")
	}
	doc, err := s.document()
	if err != nil {
		return err
	}
	if err := dataset.Save(s.savePath, doc); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "saved %d people to %s\n", len(doc.People), s.savePath)
	return nil
}

func (s *Shell) printState() {
	fmt.Fprintf(s.out, "state: %s\n", s.editor.State())
	if session, ok := s.editor.Session(); ok {
		fmt.Fprintf(s.out, "form: %s %s", session.PersonID, session.Kind)
		if session.Mode != ports.ModeNone {
			fmt.Fprintf(s.out, " (%s)", session.Mode)
		}
		fmt.Fprintln(s.out)
	}
	fmt.Fprintf(s.out, "main: %s\n", s.store.MainID())
}

// parseValues reads "key=value, key=value". Keys may contain spaces.
func parseValues(s string) (map[string]string, error) {
	values := make(map[string]string)
	if strings.TrimSpace(s) == "" {
		return values, nil
	}
	for _, pair := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, apperrors.NewValidationError(fmt.Sprintf("expected key=value, got %q", strings.TrimSpace(pair)))
		}
		values[key] = strings.TrimSpace(value)
	}
	return values, nil
}

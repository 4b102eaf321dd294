package main

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/ckiev5/family-chart/application/editor"
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
	"github.com/ckiev5/family-chart/infrastructure/config"
	"github.com/ckiev5/family-chart/infrastructure/observability"
	"github.com/ckiev5/family-chart/infrastructure/persistence/dataset"
	"github.com/ckiev5/family-chart/infrastructure/persistence/memory"
	"github.com/ckiev5/family-chart/interfaces/console"
	apperrors "github.com/ckiev5/family-chart/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type editOptions struct {
	main  string
	out   string
	watch bool
}

func newEditCmd(g *globalOptions) *cobra.Command {
	opts := &editOptions{}

	cmd := &cobra.Command{
		Use:   "edit <dataset>",
		Short: "Open a dataset in the interactive editor",
		Long: `Loads a YAML or JSON dataset and reads editing commands from standard input,
one per line. Type "help" for the command list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd.Context(), g, opts, args[0], cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.main, "main", "", "id of the person to start on (default: dataset main)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "file written by save (default: the dataset itself)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload the editor configuration when config files change")
	return cmd
}

func newCheckCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <dataset>",
		Short: "Validate a dataset without editing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := dataset.Load(args[0])
			if err != nil {
				return err
			}
			graph, err := doc.Graph()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d people, valid\n", args[0], graph.Len())
			g.logger.Debug("dataset checked", zap.String("path", args[0]), zap.Int("people", graph.Len()))
			return nil
		},
	}
}

func runEdit(ctx context.Context, g *globalOptions, opts *editOptions, path string, in io.Reader, out io.Writer) error {
	logger := g.logger
	cfg := g.cfg

	doc, err := dataset.Load(path)
	if err != nil {
		return err
	}
	graph, err := doc.Graph()
	if err != nil {
		return err
	}
	mainID := doc.Main
	if opts.main != "" {
		mainID = valueobjects.PersonID(opts.main)
	}

	var collector *observability.Collector
	editorOpts := []editor.Option{
		editor.WithLogger(logger),
		editor.WithHistoryControls(console.NewHistoryButtons(out)),
		editor.WithHistoryLimit(cfg.Editor.HistoryLimit),
	}
	if cfg.Metrics.Enabled {
		collector = observability.NewCollector(cfg.Metrics.Namespace)
		editorOpts = append(editorOpts, editor.WithMetrics(collector))
	}

	store := memory.NewStore(graph, mainID,
		memory.WithRenderer(console.NewTreeRenderer(out)),
		memory.WithLogger(logger),
	)
	modal := console.NewModal(out)
	ctrl, err := editor.New(store, console.NewContainer(out), modal, editorOpts...)
	if err != nil {
		return err
	}
	defer ctrl.Destroy()

	cfg.Editor.Apply(ctrl).
		SetFormBuilder(console.FormBuilder{}).
		SetOnError(func(err error) {
			fmt.Fprintf(out, "error: %v\n", err)
		}).
		SetOnChange(func() {
			logger.Debug("dataset changed", zap.Int("people", store.Data().Len()))
		})

	savePath := opts.out
	if savePath == "" {
		savePath = path
	}
	shell := console.NewShell(ctrl, store, modal, out, savePath, logger)

	var updates <-chan *config.Config
	if opts.watch {
		watcher, err := config.NewWatcher(g.loader, cfg, logger)
		if err != nil {
			return err
		}
		defer watcher.Stop()
		updates = watcher.Updates()
	}

	if p, ok := store.MainDatum(); ok {
		_ = ctrl.Open(p)
	}

	loopErr := eventLoop(ctx, shell, ctrl, in, out, updates, logger)

	if collector != nil && cfg.Metrics.Textfile != "" {
		if err := collector.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("failed to write metrics textfile", zap.String("path", cfg.Metrics.Textfile), zap.Error(err))
		}
	}
	return loopErr
}

// eventLoop is the only goroutine touching the editor. Input lines and
// configuration reloads are delivered to it over channels.
func eventLoop(ctx context.Context, shell *console.Shell, ctrl *editor.Controller, in io.Reader, out io.Writer, updates <-chan *config.Config, logger *zap.Logger) error {
	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			logger.Warn("failed to read input", zap.Error(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("interrupted, leaving editor")
			return nil

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := shell.Execute(line)
			// fatal errors already went through the editor's error callback
			if err != nil && !apperrors.IsFatal(err) {
				fmt.Fprintf(out, "error: %v\n", err)
			}
			if quit {
				return nil
			}

		case cfg, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			cfg.Editor.Apply(ctrl)
			logger.Info("editor configuration reloaded", zap.Strings("sources", cfg.LoadedFrom))
		}
	}
}

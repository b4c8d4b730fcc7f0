package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"orn/internal/consttable"
	"orn/internal/driver"
	"orn/internal/ui"
)

type updateOutcome struct {
	results []driver.FileResult
	err     error
}

func runUpdateWithUI(ctx context.Context, title string, table *consttable.Table, files []string, opts driver.UpdateOptions) ([]driver.FileResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan updateOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Sink = driver.ChannelSink{Ch: events}
		res, err := driver.UpdateFiles(ctx, table, files, optsCopy)
		outcomeCh <- updateOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// дочитываем события, иначе воркеры встанут на полном канале
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}

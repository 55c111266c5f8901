package main

import (
	"fmt"
	"strings"
)

func (a *App) labelsCommand(opts LabelsOptions, pattern string) error {
	repo, err := a.repository(opts.StoragePath)
	if err != nil {
		return err
	}

	labels, err := repo.Labels(pattern)
	if err != nil {
		return err
	}

	if len(labels) > 0 {
		fmt.Fprintln(a.ui.Out, strings.Join(labels, ", "))
	}

	return nil
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/revelaction/segparse/render"
)

func (a *App) exportCommand(opts ExportOptions, docId int) (err error) {
	repo, err := a.repository(opts.StoragePath)
	if err != nil {
		return err
	}

	doc, err := repo.Read(docId)
	if err != nil {
		return fmt.Errorf("doc %d: %w", docId, err)
	}

	var w io.Writer = a.ui.Out
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	if opts.Format == exportCoNLL {
		return render.WriteCoNLLU(w, doc)
	}

	r := render.NewJSONRenderer(w)
	r.Indent = "  "
	return r.Doc(doc)
}

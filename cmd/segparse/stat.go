package main

import (
	"encoding/json"
	"fmt"

	"github.com/revelaction/segparse/stat"
)

func (a *App) statCommand(opts StatOptions, docIds []int) error {
	repo, err := a.repository(opts.StoragePath)
	if err != nil {
		return err
	}

	if len(docIds) == 0 {
		docs, err := repo.List("")
		if err != nil {
			return err
		}
		for _, d := range docs {
			docIds = append(docIds, d.Id)
		}
	}

	hdl := stat.NewHandler()
	for _, id := range docIds {
		doc, err := repo.Read(id)
		if err != nil {
			return fmt.Errorf("doc %d: %w", id, err)
		}
		hdl.Aggregate(doc)
	}

	stats := hdl.Get()

	if opts.JSON {
		enc := json.NewEncoder(a.ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	w := a.ui.Out
	fmt.Fprintf(w, "Num docs %d, num sentences %d, num tokens %d\n", stats.NumDocs, stats.NumSentences, stats.NumTokens)
	fmt.Fprintf(w, "Num tokens per sentence %.2f\n", stats.TokensPerSentenceMean)
	fmt.Fprintf(w, "Num entities %d\n", stats.NumEntities)
	for _, typ := range stats.Types() {
		fmt.Fprintf(w, "    %-12s %6d mentions %6d ids\n", typ, stats.EntitiesPerType[typ], stats.SourceIdsPerType[typ])
	}

	if len(stats.TokensPerSentenceDis) > 0 {
		fmt.Fprintln(w, "Sentence lengths")
		for _, l := range stats.Lengths() {
			fmt.Fprintf(w, "    %4d tokens %6d\n", l, stats.TokensPerSentenceDis[l])
		}
	}

	return nil
}

package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/roach88/mechanics/internal/condition"
	"github.com/roach88/mechanics/internal/loader"
	"github.com/roach88/mechanics/internal/mechanic"
)

// itemExts are the definition file extensions the loader accepts.
var itemExts = []string{".yaml", ".yml", ".cue"}

// itemSet is every definition loaded from one path.
type itemSet struct {
	Files   []*loader.Result
	Errors  []*loader.LoadError
	Defs    []*mechanic.Definition
	FileErr map[string]error
}

// findItemFiles returns path itself, or every definition file below it
// in lexical order.
func findItemFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && slices.Contains(itemExts, filepath.Ext(p)) {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

// loadItems loads every definition file under path. Unreadable or
// unparseable files are collected in FileErr; the rest still load.
// Condition types are checked against ev, or a default evaluator.
func loadItems(path string, ev *condition.Evaluator) (*itemSet, error) {
	files, err := findItemFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no item files (%v) in %s", itemExts, path)
	}
	if ev == nil {
		ev = condition.New()
	}

	l := loader.New(nil, loader.WithConditionTypes(ev.Known))
	set := &itemSet{FileErr: make(map[string]error)}
	seen := make(map[string]string)
	for _, f := range files {
		res, err := l.LoadFile(f)
		if err != nil {
			set.FileErr[f] = err
			continue
		}
		set.Files = append(set.Files, res)
		set.Errors = append(set.Errors, res.Errors...)
		for _, def := range res.Definitions {
			if prev, dup := seen[def.ID()]; dup {
				set.Errors = append(set.Errors, &loader.LoadError{
					Code:    loader.CodeDefinitionMalformed,
					Item:    def.ID(),
					Pos:     f,
					Message: fmt.Sprintf("item already defined in %s; later definition wins", prev),
				})
			}
			seen[def.ID()] = f
			set.Defs = append(set.Defs, def)
		}
	}
	return set, nil
}

// register puts every definition into reg, later files overriding
// earlier ones.
func (s *itemSet) register(reg *mechanic.Registry) int {
	for _, def := range s.Defs {
		reg.Put(def)
	}
	return reg.Len()
}

// problems is the number of load errors plus unreadable files.
func (s *itemSet) problems() int {
	return len(s.Errors) + len(s.FileErr)
}

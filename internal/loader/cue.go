package loader

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

// LoadCUE loads an item file in CUE form. The file must evaluate to a
// concrete value with the same shape as the YAML form; schema definitions
// such as #Item may sit alongside and are not exported.
//
//	#Item: {material: string, cooldown: int | *0, ...}
//	items: healing_wand: #Item & {material: "BLAZE_ROD"}
func (l *Loader) LoadCUE(data []byte, source string) (*Result, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(source))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(source, err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(source, err)
	}

	positions := make(map[string]string)
	if items := v.LookupPath(cue.ParsePath("items")); items.Exists() {
		iter, err := items.Fields()
		if err != nil {
			return nil, formatCUEError(source, err)
		}
		for iter.Next() {
			if p := iter.Value().Pos(); p.IsValid() {
				positions[iter.Selector().Unquoted()] = p.String()
			}
		}
	}

	// JSON is valid YAML, so the exported value takes the YAML path.
	js, err := v.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(source, err)
	}
	return l.load(js, source, func(id string, _ *yaml.Node) string {
		return positions[id]
	})
}

// formatCUEError keeps the position of the first CUE error.
func formatCUEError(source string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return fmt.Errorf("evaluate %s: %w", source, err)
	}
	first := errs[0]
	le := &LoadError{Code: CodeDefinitionMalformed, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0].String()
	}
	return le
}

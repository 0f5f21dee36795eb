package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/spf13/cobra"
)

// Problem is one validation finding.
type Problem struct {
	Code    string `json:"code"`
	Item    string `json:"item,omitempty"`
	Path    string `json:"path,omitempty"`
	Pos     string `json:"pos,omitempty"`
	Message string `json:"message"`
}

// ValidationResult is the validate command's payload.
type ValidationResult struct {
	Valid    bool      `json:"valid"`
	Files    int       `json:"files"`
	Items    int       `json:"items"`
	Problems []Problem `json:"problems,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [items-path]",
		Short: "Check item definition files",
		Long: `Load item definitions and report every problem without running anything.

The path may be a single .yaml, .yml or .cue file or a directory searched
recursively. Without a path, MECHANICS_ITEMS is used.

Exit codes:
  0 - all definitions valid
  1 - one or more problems found
  2 - path missing or unreadable`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, itemsPath(rootOpts, args), cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	set, err := loadItems(path, nil)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("items path not found: %s", path), nil)
		}
		return f.Fail(ExitCommandError, ErrCodeNoItems, err.Error(), nil)
	}

	result := ValidationResult{Files: len(set.Files) + len(set.FileErr), Items: len(set.Defs)}
	for _, res := range set.Files {
		f.VerboseLog("%s: %d item(s)", res.Source, len(res.Definitions))
	}

	files := make([]string, 0, len(set.FileErr))
	for file := range set.FileErr {
		files = append(files, file)
	}
	sort.Strings(files)
	for _, file := range files {
		result.Problems = append(result.Problems, Problem{
			Code:    "FILE_UNREADABLE",
			Pos:     file,
			Message: set.FileErr[file].Error(),
		})
	}
	for _, le := range set.Errors {
		result.Problems = append(result.Problems, Problem{
			Code:    string(le.Code),
			Item:    le.Item,
			Path:    le.Path,
			Pos:     le.Pos,
			Message: le.Message,
		})
	}
	result.Valid = len(result.Problems) == 0

	if f.JSON() {
		if result.Valid {
			return f.Success(result)
		}
		return f.Fail(ExitFailure, ErrCodeInvalid, fmt.Sprintf("%d problem(s) found", len(result.Problems)), result)
	}

	w := f.Writer
	if result.Valid {
		fmt.Fprintf(w, "✓ %d item(s) valid in %d file(s)\n", result.Items, result.Files)
		return nil
	}
	fmt.Fprintf(w, "✗ %d problem(s) in %d file(s)\n\n", len(result.Problems), result.Files)
	for _, p := range result.Problems {
		if p.Pos != "" {
			fmt.Fprintln(w, p.Pos)
		}
		where := p.Item
		if p.Path != "" {
			where += "." + p.Path
		}
		if where != "" {
			fmt.Fprintf(w, "  %s: %s: %s\n\n", p.Code, where, p.Message)
		} else {
			fmt.Fprintf(w, "  %s: %s\n\n", p.Code, p.Message)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d problem(s)", len(result.Problems)))
}

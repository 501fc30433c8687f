package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog/log"

	"github.com/loog-project/instrux/internal/filter"
	"github.com/loog-project/instrux/pkg/diffmap"
	"github.com/loog-project/instrux/pkg/diffpreview"
	"github.com/loog-project/instrux/pkg/jsonvalue"
)

// Output formats of the diff and compare commands.
const (
	formatPretty = "pretty"
	formatJSON   = "json"
	formatDelta  = "delta"
	formatDump   = "dump"
)

var outputFormats = []string{formatPretty, formatJSON, formatDelta, formatDump}

type outputOptions struct {
	Format  string
	Filter  string
	NoColor bool
	Verify  bool
}

// errVerifyFailed is returned by verifyDiff when replaying a diff onto the
// old document does not reproduce the new one.
var errVerifyFailed = errors.New("diff verification failed")

func (o outputOptions) validate() error {
	for _, f := range outputFormats {
		if o.Format == f {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q, expected one of %v", o.Format, outputFormats)
}

// writeDiff filters result and writes it to w. oldRaw and newRaw are only
// used by the delta format.
func writeDiff(w io.Writer, result *diffmap.Result, oldRaw, newRaw []byte, opts outputOptions) error {
	prog, err := filter.Compile(opts.Filter)
	if err != nil {
		return err
	}
	result, err = prog.Apply(result)
	if err != nil {
		return err
	}

	switch opts.Format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case formatDelta:
		if opts.Filter != "" {
			return fmt.Errorf("the %s format does not support --filter", formatDelta)
		}
		out, err := diffpreview.RenderDelta(oldRaw, newRaw, diffpreview.DeltaOptions{
			Coloring:       !opts.NoColor,
			ShowArrayIndex: true,
		})
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	case formatDump:
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
		for _, e := range result.Entries() {
			cfg.Fprintf(w, "%s (%s): ", e.Path, e.Op())
			cfg.Fdump(w, e.Old.Interface(), e.New.Interface())
		}
		return nil
	default:
		theme := diffpreview.DarkTheme
		if opts.NoColor {
			theme = diffpreview.PlainTheme
		}
		_, err := io.WriteString(w, diffpreview.Render(result, theme, diffpreview.DefaultRenderOptions))
		return err
	}
}

// verifyDiff replays the unfiltered result onto oldValue and checks that it
// reproduces newValue.
func verifyDiff(oldValue, newValue *jsonvalue.Value, result *diffmap.Result) error {
	restored, err := diffmap.Apply(oldValue, result)
	if err != nil {
		return fmt.Errorf("%w: %w", errVerifyFailed, err)
	}
	if !restored.Equal(newValue) {
		return fmt.Errorf("%w: replayed document differs from the new document", errVerifyFailed)
	}
	log.Debug().Int("entries", result.Len()).Msg("Diff verified")
	return nil
}

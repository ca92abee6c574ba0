// Package cli implements tc, a command line timecode calculator.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zsiec/stimecode/pkg/timecode"
	"github.com/zsiec/stimecode/pkg/version"
)

type options struct {
	nonDrop bool
}

// rate parses a frame rate label, clearing drop-frame when --non-drop is set.
func (o *options) rate(label string) (timecode.FrameRate, error) {
	fr, err := timecode.ParseFrameRate(label)
	if err != nil {
		return timecode.FrameRate{}, err
	}
	if o.nonDrop {
		fr = fr.NonDrop()
	}
	return fr, nil
}

// NewRootCmd builds the tc command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "tc",
		Short: "Signed SMPTE timecode calculator",
		Long: `tc converts, compares and does arithmetic on SMPTE timecodes.
Timecodes are signed, so results may be negative, and every rate from 23.976
to 60 is supported, including drop-frame 29.97 and 59.94.

Negative values must follow "--", e.g. tc convert 24 -- -00:00:01:00.`,
		Version:       version.GetInfo().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&opts.nonDrop, "non-drop", false, "count 29.97 and 59.94 without dropping frame numbers")

	root.AddCommand(newConvertCmd(opts))
	root.AddCommand(newCalcCmd(opts))
	root.AddCommand(newCompareCmd(opts))
	root.AddCommand(newRatesCmd())
	root.AddCommand(newReplCmd(opts))

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

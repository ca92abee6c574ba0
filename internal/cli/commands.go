package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/zsiec/stimecode/internal/expr"
	"github.com/zsiec/stimecode/pkg/timecode"
)

func newConvertCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <rate> <timecode|frames>",
		Short: "Convert between a timecode and a frame number",
		Long: `Convert a timecode string to its frame number, or a frame number to its
timecode string, at the given frame rate.`,
		Example: `  tc convert 29.97 01:00:00;00
  tc convert 24 -- -720`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fr, err := opts.rate(args[0])
			if err != nil {
				return err
			}
			tc, err := parseValue(fr, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTimecode(tc))
			return nil
		},
	}
}

func newCalcCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "calc <rate> <expression...>",
		Short: "Evaluate a timecode expression",
		Long: `Evaluate an expression of timecodes and numbers with + - * / and
parentheses. Untagged timecodes are read at <rate>; a timecode may carry its
own rate with @, e.g. 00:00:30:00@24. The left operand's rate wins.`,
		Example: `  tc calc 29.97 "01:00:00;00 - 00:00:10;00 * 2"
  tc calc 29.97 "00:00:19;29 - 00:00:30:00@24"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fr, err := opts.rate(args[0])
			if err != nil {
				return err
			}
			v, err := newEvaluator(fr, opts.nonDrop).Evaluate(strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderValue(v))
			return nil
		},
	}
}

func newCompareCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <rate> <a> <rate> <b>",
		Short: "Order two timecodes by elapsed real time",
		Example: `  tc compare 29.97 00:00:01;00 30 00:00:01:00`,
		Args:    cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseRateValue(opts, args[0], args[1])
			if err != nil {
				return err
			}
			b, err := parseRateValue(opts, args[2], args[3])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderComparison(a, b))
			return nil
		},
	}
}

func newRatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "List supported frame rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), renderRates())
			return nil
		},
	}
}

func newEvaluator(fr timecode.FrameRate, nonDrop bool) *expr.Evaluator {
	if nonDrop {
		return expr.New(fr, expr.WithNonDrop())
	}
	return expr.New(fr)
}

// parseValue reads s as a frame number when it is an integer and as a
// timecode string otherwise.
func parseValue(fr timecode.FrameRate, s string) (timecode.Timecode, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return timecode.FromFrameNumber(fr, n), nil
	}
	return timecode.FromString(fr, s)
}

func parseRateValue(opts *options, label, s string) (timecode.Timecode, error) {
	fr, err := opts.rate(label)
	if err != nil {
		return timecode.Timecode{}, err
	}
	return parseValue(fr, s)
}

func yesNo(b bool) string {
	if b {
		return DropFrameStyle.Render("yes")
	}
	return "no"
}

func renderTimecode(tc timecode.Timecode) string {
	fr := tc.FrameRate()
	return PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		styledTimecode(tc.String(), tc.Sign() < 0),
		"",
		row("frame rate", fmt.Sprintf("%s (%s)", fr.Label(), fr.Rate())),
		row("drop frame", yesNo(tc.IsDropFrame())),
		row("frame number", strconv.FormatInt(tc.FrameNumber(), 10)),
		row("fractional", tc.Fractional()),
		row("elapsed", elapsed(tc)),
	))
}

// elapsed prints a duration while it fits in time.Duration and plain
// seconds past that.
func elapsed(tc timecode.Timecode) string {
	secs := tc.Seconds()
	if math.Abs(secs) < math.MaxInt64/float64(time.Second) {
		return tc.Elapsed().String()
	}
	return strconv.FormatFloat(secs, 'g', -1, 64) + "s"
}

func renderValue(v expr.Value) string {
	if tc, ok := v.Timecode(); ok {
		return renderTimecode(tc)
	}
	return PanelStyle.Render(row("result", v.String()))
}

func renderComparison(a, b timecode.Timecode) string {
	var rel string
	switch a.Compare(b) {
	case -1:
		rel = "is earlier than"
	case 1:
		rel = "is later than"
	default:
		rel = "is the same instant as"
	}

	return PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("%s@%s %s %s@%s",
			styledTimecode(a.String(), a.Sign() < 0), a.FrameRate().Label(),
			SuccessStyle.Render(rel),
			styledTimecode(b.String(), b.Sign() < 0), b.FrameRate().Label()),
		"",
		row("elapsed a", elapsed(a)),
		row("elapsed b", elapsed(b)),
	))
}

func renderRates() string {
	lines := []string{HeaderStyle.Render(fmt.Sprintf("%-8s %-12s %-4s %-5s %s", "LABEL", "RATIONAL", "FPS", "DROP", "DROPPED/MIN"))}
	for _, label := range timecode.Labels() {
		fr := timecode.MustParseFrameRate(label)
		drop := "no"
		if fr.IsDropFrame() {
			drop = "yes"
		}
		lines = append(lines, fmt.Sprintf("%-8s %-12s %-4d %-5s %d",
			fr.Label(), fr.Rate(), fr.RoundedFPS(), drop, fr.DroppedPerMinute()))
	}
	return PanelStyle.Render(strings.Join(lines, "\n"))
}

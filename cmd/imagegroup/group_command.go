package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go-imagegroup"
)

type groupFlags struct {
	hashSize   int
	threshold  int
	onConflict string
	dryRun     bool
}

func (f *groupFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.hashSize, "hash-size", imagegroup.DefaultHashSize, "Average-hash grid side (fingerprint has hash-size^2 bits)")
	cmd.Flags().IntVarP(&f.threshold, "threshold", "t", imagegroup.DefaultThreshold, "Largest Hamming distance that still shares a group")
	cmd.Flags().StringVar(&f.onConflict, "on-conflict", "skip", "When the destination exists: skip or rename")
	cmd.Flags().BoolVarP(&f.dryRun, "dry-run", "n", false, "Report groups without moving files")
}

func newGroupCommand(ctx *commandContext) *cobra.Command {
	var flags groupFlags

	cmd := &cobra.Command{
		Use:   "group",
		Short: "Sort the folder into group_<id> subfolders of similar images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := ctx.groupOpts(cmd, &flags)
			if err != nil {
				return err
			}
			lib, err := ctx.library(cmd)
			if err != nil {
				return err
			}
			return runGroup(cmd.Context(), cmd.OutOrStdout(), lib, opts)
		},
	}

	flags.register(cmd)
	return cmd
}

func runGroup(ctx context.Context, out io.Writer, lib *imagegroup.Config, opts imagegroup.GroupOpts) error {
	report, err := lib.GroupImages(ctx, opts)
	if err != nil {
		return fmt.Errorf("group images: %w", err)
	}
	fmt.Fprint(out, renderGroupReport(report, shouldColorize(out)))
	return nil
}

func renderGroupReport(report *imagegroup.GroupingReport, colorize bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Considered %d images in %s, found %d groups\n",
		report.TotalImagesConsidered, report.Folder, report.GroupCount)
	if report.DryRun {
		b.WriteString("Dry run: no files were moved\n")
	}

	if len(report.Groups) > 0 {
		rows := make([][]string, 0, len(report.Groups))
		for _, g := range report.Groups {
			rows = append(rows, []string{
				g.Dir(),
				strconv.Itoa(len(g.Members)),
				g.Members[0],
				g.Representative.String(),
				strings.Join(g.Members[1:], ", "),
			})
		}
		b.WriteString(renderTable(groupColumns, rows))
		b.WriteString("\n")
	}

	if !report.DryRun {
		fmt.Fprintln(&b, renderStatusLine("Moved", statusOK, strconv.Itoa(report.Moved), colorize))
	}
	if len(report.Skipped) > 0 {
		fmt.Fprintln(&b, renderStatusLine("Left in place", statusWarn,
			fmt.Sprintf("%d (destination exists): %s", len(report.Skipped), strings.Join(report.Skipped, ", ")), colorize))
	}

	if len(report.Warnings) > 0 {
		fmt.Fprintln(&b, renderStatusLine("Warnings", statusWarn, strconv.Itoa(len(report.Warnings)), colorize))
		rows := make([][]string, 0, len(report.Warnings))
		for _, w := range report.Warnings {
			rows = append(rows, []string{w.Name, w.Reason})
		}
		b.WriteString(renderTable(warningColumns, rows))
		b.WriteString("\n")
	}
	return b.String()
}

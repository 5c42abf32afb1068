package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go-imagegroup"
)

var errNoURLs = errors.New("no URLs given")

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var urlList string

	cmd := &cobra.Command{
		Use:   "fetch [url...]",
		Short: "Download images into the folder",
		Long: "Download each URL into the image folder under a content-addressed name.\n" +
			"URLs come from the arguments, --urls, or a prompt on stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			urls, err := collectURLs(cmd, args, urlList)
			if err != nil {
				return err
			}
			lib, err := ctx.library(cmd)
			if err != nil {
				return err
			}
			return runFetch(cmd.Context(), cmd.OutOrStdout(), lib, urls)
		},
	}

	cmd.Flags().StringVarP(&urlList, "urls", "u", "", "Comma-separated image URLs")
	return cmd
}

// collectURLs gathers URLs from args and --urls, prompting on stdin when
// neither supplies any. Each source may itself be comma-separated.
func collectURLs(cmd *cobra.Command, args []string, urlList string) ([]string, error) {
	var urls []string
	for _, a := range args {
		urls = append(urls, imagegroup.ParseURLList(a)...)
	}
	urls = append(urls, imagegroup.ParseURLList(urlList)...)
	if len(urls) > 0 {
		return urls, nil
	}

	fmt.Fprint(cmd.OutOrStdout(), "Enter image URLs separated by commas: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read URLs: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout())

	urls = imagegroup.ParseURLList(line)
	if len(urls) == 0 {
		return nil, errNoURLs
	}
	return urls, nil
}

// runFetch downloads urls, printing one status line per URL. It fails only
// after every URL was attempted, reporting how many failed.
func runFetch(ctx context.Context, out io.Writer, lib *imagegroup.Config, urls []string) error {
	colorize := shouldColorize(out)

	lib.OnFetch = func(o imagegroup.FetchOutcome) {
		fmt.Fprintln(out, fetchStatusLine(o, colorize))
	}
	outcomes := lib.FetchAll(ctx, urls)

	var saved, duplicates, failed int
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			failed++
		case o.Result.Duplicate:
			duplicates++
		default:
			saved++
		}
	}
	fmt.Fprintf(out, "\nFetched %d new, %d already stored, %d failed into %s\n", saved, duplicates, failed, lib.Folder)

	if err := ctx.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, len(outcomes))
	}
	return nil
}

func fetchStatusLine(o imagegroup.FetchOutcome, colorize bool) string {
	if o.Err != nil {
		return renderStatusLine(shortLabel(o.URL), statusError, o.Err.Error(), colorize)
	}

	r := o.Result
	kind := statusOK
	msg := "saved " + humanize.Bytes(uint64(r.Size)) //nolint:gosec // size is a non-negative length
	if r.Duplicate {
		kind = statusInfo
		msg = "already stored at " + r.Path
	}
	if r.ImageURL != r.URL {
		msg += " (via og:image)"
	}
	if a := r.Attribution.String(); a != "" {
		msg += "; " + a
	}
	return renderStatusLine(r.Filename, kind, msg, colorize)
}

// shortLabel trims long URLs so status columns stay readable.
func shortLabel(s string) string {
	return tailLabel(s, statusLabelWidth-1)
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var urlList string
	var flags groupFlags

	cmd := &cobra.Command{
		Use:   "run [url...]",
		Short: "Fetch URLs, then group the folder",
		Long: "Fetch every URL into the image folder and then group the folder.\n" +
			"Grouping runs even when some downloads fail; the command still exits\n" +
			"non-zero afterwards so scripts notice the failures.",
		RunE: func(cmd *cobra.Command, args []string) error {
			urls, err := collectURLs(cmd, args, urlList)
			if err != nil {
				return err
			}
			opts, err := ctx.groupOpts(cmd, &flags)
			if err != nil {
				return err
			}
			lib, err := ctx.library(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fetchErr := runFetch(cmd.Context(), out, lib, urls)
			if err := cmd.Context().Err(); err != nil {
				return err
			}

			fmt.Fprintln(out)
			if err := runGroup(cmd.Context(), out, lib, opts); err != nil {
				return errors.Join(fetchErr, err)
			}
			return fetchErr
		},
	}

	cmd.Flags().StringVarP(&urlList, "urls", "u", "", "Comma-separated image URLs")
	flags.register(cmd)
	return cmd
}

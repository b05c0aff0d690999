package cli

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/five82/aperture/internal/app"
	"github.com/five82/aperture/internal/device"
)

func newFilesCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "List or delete photos stored on the device",
	}
	cmd.AddCommand(newFilesListCmd(g))
	cmd.AddCommand(newFilesRemoveCmd(g))
	return cmd
}

func newFilesListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List photos, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, g, func(ctx context.Context, rt *app.Runtime) error {
				files, err := rt.Client.ListFiles(ctx)
				if err != nil {
					return fmt.Errorf("list files: %w", err)
				}
				if len(files) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No photos on the device.")
					return nil
				}
				sort.SliceStable(files, func(i, j int) bool {
					return files[i].Date.After(files[j].Date)
				})

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tDATE\tSIZE")
				for _, f := range files {
					date := "-"
					if !f.Date.IsZero() {
						date = f.Date.Local().Format("2006-01-02 15:04")
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Name, date, device.SizeLabel(f.Size))
				}
				return tw.Flush()
			})
		},
	}
}

func newFilesRemoveCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "rm NAME...",
		Aliases: []string{"delete"},
		Short:   "Delete photos by name",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, g, func(ctx context.Context, rt *app.Runtime) error {
				if err := rt.Client.DeleteFiles(ctx, args); err != nil {
					return fmt.Errorf("delete files: %w", err)
				}
				rt.Logger.Info("files deleted", "files", len(args))
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d file(s).\n", len(args))
				return nil
			})
		},
	}
}

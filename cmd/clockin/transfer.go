package main

import (
	"context"
	"fmt"
	"os"

	"clockin/internal/adapter/fileformat"
	"clockin/internal/app"
	"clockin/internal/bootstrap"

	"github.com/spf13/cobra"
)

func newImportCmd(g *globalFlags) *cobra.Command {
	var opts app.ImportOptions
	cmd := &cobra.Command{
		Use:   "import <file.json|file.csv>",
		Short: "Import sessions from an export or a CSV sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd, g, func(ctx context.Context, a *bootstrap.App, actor app.Actor) error {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()

				batch, err := fileformat.Parse(args[0], f)
				if err != nil {
					return err
				}
				res, err := a.Transfer.Import(ctx, actor, batch, opts)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "imported %d, overwritten %d, skipped %d, errored %d\n", res.Imported, res.Overwritten, res.Skipped, res.Errored)
				for _, fl := range res.Failures {
					_, _ = fmt.Fprintf(out, "  entry %d: %s\n", fl.Index, fl.Reason)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&opts.SkipDuplicates, "skip-duplicates", true, "skip entries matching an existing session exactly")
	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, "replace sessions with the same clock-in time")
	cmd.Flags().BoolVar(&opts.RecomputeDurations, "recompute", false, "recompute billable durations of closed sessions")
	return cmd
}

func newExportCmd(g *globalFlags) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all sessions to a JSON file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withActor(cmd, g, func(ctx context.Context, a *bootstrap.App, actor app.Actor) error {
				doc, err := a.Transfer.Export(ctx, actor)
				if err != nil {
					return err
				}
				if outPath == "-" {
					return fileformat.WriteExport(cmd.OutOrStdout(), doc)
				}
				if outPath == "" {
					outPath = fileformat.ExportFilename(doc.User.Email, doc.ExportDate)
				}
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				if err := fileformat.WriteExport(f, doc); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d session(s) to %s\n", len(doc.Sessions), outPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", `output file ("-" for stdout)`)
	return cmd
}

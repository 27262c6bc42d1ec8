package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/crossfilter/blobstore"
	"github.com/hupe1980/crossfilter/codec"
	"github.com/hupe1980/crossfilter/dataset"
	"github.com/hupe1980/crossfilter/export"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write, read and manage dataset snapshots in the configured blob store",
	}
	cmd.AddCommand(
		newExportWriteCmd(a),
		newExportLoadCmd(a),
		newExportListCmd(a),
		newExportDeleteCmd(a),
	)
	return cmd
}

func (a *app) store(cmd *cobra.Command) (blobstore.BlobStore, error) {
	settings, err := a.settings()
	if err != nil {
		return nil, err
	}
	return openStore(cmd.Context(), settings.Export)
}

func newExportWriteCmd(a *app) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:     "write",
		Short:   "Snapshot the dataset with its selection status",
		Example: `  xfilter export write -d data.yaml --selection B --id daily`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.session(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			store, err := openStore(cmd.Context(), s.settings.Export)
			if err != nil {
				return err
			}
			compression, err := export.ParseCompression(s.settings.Export.Compression)
			if err != nil {
				return err
			}
			c, ok := codec.ByName(s.settings.Export.Codec)
			if !ok {
				return fmt.Errorf("unknown codec %q", s.settings.Export.Codec)
			}

			snap, err := s.xf.Snapshot()
			if err != nil {
				return err
			}
			m, err := export.NewWriter(store, export.WithCodec(c), export.WithCompression(compression)).Write(cmd.Context(), id, snap)
			if err != nil {
				return err
			}
			s.logger.InfoContext(cmd.Context(), "snapshot written", "id", m.ID, "rows", m.Rows, "backend", s.settings.Export.Backend)
			a.dumpTo(cmd.ErrOrStderr(), "manifest", m)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), m.ID)
			return err
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "snapshot id (default: generated)")
	return cmd
}

func newExportLoadCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "load ID",
		Short: "Load a snapshot and print it as a dataset file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store(cmd)
			if err != nil {
				return err
			}
			snap, m, err := export.Load(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			a.dumpTo(cmd.ErrOrStderr(), "manifest", m)

			ds, err := snap.Dataset()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := dataset.Encode(w, ds.Rows(), ds.Fields()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "generation %d, %d rows, selected: %s\n", m.Generation, m.Rows, keys(snap.Selected()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the dataset file to this path")
	return cmd
}

func newExportListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.store(cmd)
			if err != nil {
				return err
			}
			ids, err := export.List(cmd.Context(), store)
			if err != nil {
				return err
			}

			tw := newTabWriter(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tGENERATION\tROWS\tCOMPRESSION\tCREATED")
			for _, id := range ids {
				m, err := export.ReadManifest(cmd.Context(), store, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", m.ID, m.Generation, m.Rows, m.Compression, m.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}
}

func newExportDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete stored snapshots",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store(cmd)
			if err != nil {
				return err
			}
			for _, id := range args {
				if err := export.Delete(cmd.Context(), store, id); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

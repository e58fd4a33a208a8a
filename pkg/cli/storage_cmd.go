package cli

import (
	"github.com/spf13/cobra"

	"iolib/internal/service/storage"
)

func newStorageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Read CSV objects from GCS, S3 or Azure Blob Storage",
	}
	cmd.AddCommand(newStorageReadCmd(a))
	return cmd
}

func newStorageReadCmd(a *app) *cobra.Command {
	var (
		prefix  bool
		csvOpts csvFlags
	)

	cmd := &cobra.Command{
		Use:   "read URI",
		Short: "Read one object, or every object under a prefix",
		Long: "URI is gs://bucket/key, s3://bucket/key or az://container/key; a bare bucket/key means gs. " +
			"With --prefix the key is a prefix and up to 500 objects are concatenated.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := storage.ParseURI(args[0])
			if err != nil {
				return err
			}
			store, err := a.backends.Store(cmd.Context(), loc.Scheme, a.storeConfig())
			if err != nil {
				return err
			}
			defer closeClient(store)

			req := storage.ReadRequest{Bucket: loc.Bucket, CSV: csvOpts.options()}
			if prefix {
				req.Prefix = loc.Key
			} else {
				req.BlobName = loc.Key
			}
			f, err := storage.NewService(store, a.logger).Read(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printFrame(cmd.OutOrStdout(), f, a.output)
		},
	}
	cmd.Flags().BoolVar(&prefix, "prefix", false, "Treat the key as a prefix")
	csvOpts.register(cmd.Flags())
	return cmd
}

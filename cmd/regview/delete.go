package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/registry-tools/regview"
)

var deleteBestEffort bool

var deleteCmd = &cobra.Command{
	Use:   "delete <repository> [tag]",
	Short: "Delete a tag's manifest, or every manifest in a repository",
	Long: `With a tag, deletes the manifest that tag points at. Without one,
deletes every manifest in the repository. Other tags sharing a deleted
manifest stop resolving too; the registry garbage-collects the blobs
later.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var extra []regview.Option
		if deleteBestEffort {
			extra = append(extra, regview.WithDeletePolicy(regview.DeleteBestEffort))
		}
		reg, err := newRegistry(cmd.Context(), extra...)
		if err != nil {
			return err
		}
		defer reg.Close()

		repo, err := reg.Repository(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if len(args) == 2 {
			tag, err := repo.Tag(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			m, err := tag.Manifest(cmd.Context())
			if err != nil {
				return err
			}
			if err := m.Delete(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("deleted %s (%s)\n", tag, m.Digest())
			return nil
		}

		if err := repo.Delete(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("deleted all manifests in %s\n", repo.Name())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVar(&deleteBestEffort, "best-effort", false, "keep deleting after a failure and report all errors at the end")
}

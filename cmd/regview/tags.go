package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var tagsResolve bool

var tagsCmd = &cobra.Command{
	Use:   "tags <repository>",
	Short: "List the tags of a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry(cmd.Context())
		if err != nil {
			return err
		}
		defer reg.Close()

		repo, err := reg.Repository(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		tags, err := repo.Tags(cmd.Context())
		if err != nil {
			return err
		}

		if !tagsResolve {
			for _, tag := range tags {
				fmt.Println(tag.Name())
			}
			return nil
		}

		// Resolve manifests concurrently; each line still prints in tag
		// order.
		lines := make([]string, len(tags))
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(8)
		for i, tag := range tags {
			g.Go(func() error {
				m, err := tag.Manifest(ctx)
				if err != nil {
					return err
				}
				age, err := m.Age(ctx)
				if err != nil {
					return err
				}
				lines[i] = fmt.Sprintf("%s\t%s\t%s", tag.Name(), m.Digest(), age.Format("2006-01-02 15:04:05"))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tagsCmd)
	tagsCmd.Flags().BoolVar(&tagsResolve, "resolve", false, "also show each tag's digest and image age")
}

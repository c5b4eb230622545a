package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the repositories in the registry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry(cmd.Context())
		if err != nil {
			return err
		}
		defer reg.Close()

		repos, err := reg.Repositories(cmd.Context())
		if err != nil {
			return err
		}
		for _, repo := range repos {
			fmt.Println(repo.Name())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

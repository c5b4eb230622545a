package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/registry-tools/regview"
)

var manifestRaw bool

var manifestCmd = &cobra.Command{
	Use:   "manifest <repository> <tag>",
	Short: "Show a tag's manifest: digest, media type, layers and image age",
	Args:  cobra.ExactArgs(2),
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
		tag, err := repo.Tag(cmd.Context(), args[1])
		if err != nil {
			return err
		}
		m, err := tag.Manifest(cmd.Context())
		if err != nil {
			return err
		}

		if manifestRaw {
			raw, err := m.Raw(cmd.Context())
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(append(raw, '\n'))
			return err
		}

		mediaType, err := m.MediaType(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Digest:     %s\n", m.Digest())
		fmt.Printf("Media type: %s\n", mediaType)

		switch age, err := m.Age(cmd.Context()); {
		case err == nil:
			fmt.Printf("Created:    %s\n", age.Format("2006-01-02 15:04:05 MST"))
		case errors.Is(err, regview.ErrNoCreationTime):
			fmt.Printf("Created:    unknown\n")
		default:
			return err
		}

		layers, err := m.Layers(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Layers:     %d\n", len(layers))
		for _, layer := range layers {
			fmt.Printf("  %s  %10d  %s\n", layer.Digest, layer.Size, layer.MediaType)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(manifestCmd)
	manifestCmd.Flags().BoolVar(&manifestRaw, "raw", false, "print the raw manifest JSON")
}

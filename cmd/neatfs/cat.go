package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ink-feather-org/neat-fs/cmd"
	"github.com/ink-feather-org/neat-fs/pkg/vfs"
)

func catMain(_ *cobra.Command, arguments []string) {
	// Validate arguments.
	if len(arguments) == 0 {
		cmd.Fatal(errors.New("missing path"))
	}

	// Print each file.
	err := withFileSystem(func(ctx context.Context, fileSystem *vfs.FileSystem) error {
		for _, path := range arguments {
			contents, err := fileSystem.ReadFile(ctx, path)
			if err != nil {
				return err
			}
			if _, err := os.Stdout.Write(contents); err != nil {
				return errors.Wrap(err, "unable to write contents")
			}
		}
		return nil
	})
	if err != nil {
		cmd.Fatal(err)
	}
}

var catCommand = &cobra.Command{
	Use:   "cat <path> [<path>...]",
	Short: "Print the contents of one or more files",
	Run:   catMain,
}

package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ink-feather-org/neat-fs/cmd"
	"github.com/ink-feather-org/neat-fs/pkg/vfs"
)

func mkdirMain(_ *cobra.Command, arguments []string) {
	// Validate arguments.
	if len(arguments) == 0 {
		cmd.Fatal(errors.New("missing path"))
	}

	// Create each directory.
	err := withFileSystem(func(ctx context.Context, fileSystem *vfs.FileSystem) error {
		for _, path := range arguments {
			if err := fileSystem.MkDir(ctx, path, mkdirConfiguration.parents); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		cmd.Fatal(err)
	}
}

var mkdirCommand = &cobra.Command{
	Use:   "mkdir <path> [<path>...]",
	Short: "Create one or more directories",
	Run:   mkdirMain,
}

var mkdirConfiguration struct {
	// parents indicates the presence of the -p/--parents flag.
	parents bool
}

func init() {
	flags := mkdirCommand.Flags()
	flags.BoolVarP(&mkdirConfiguration.parents, "parents", "p", false, "Create missing parent directories")
}

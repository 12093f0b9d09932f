package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ink-feather-org/neat-fs/cmd"
	"github.com/ink-feather-org/neat-fs/pkg/vfs"
)

func removeMain(_ *cobra.Command, arguments []string) {
	// Validate arguments.
	if len(arguments) == 0 {
		cmd.Fatal(errors.New("missing path"))
	}

	// Remove each path.
	err := withFileSystem(func(ctx context.Context, fileSystem *vfs.FileSystem) error {
		for _, path := range arguments {
			err := fileSystem.Remove(
				ctx, path,
				removeConfiguration.recursive,
				removeConfiguration.folder,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		cmd.Fatal(err)
	}
}

var removeCommand = &cobra.Command{
	Use:   "rm <path> [<path>...]",
	Short: "Remove files, symbolic links, or directories",
	Run:   removeMain,
}

var removeConfiguration struct {
	// recursive indicates the presence of the -r/--recursive flag.
	recursive bool
	// folder indicates the presence of the -d/--folder flag.
	folder bool
}

func init() {
	flags := removeCommand.Flags()
	flags.BoolVarP(&removeConfiguration.recursive, "recursive", "r", false, "Remove directory contents recursively")
	flags.BoolVarP(&removeConfiguration.folder, "folder", "d", false, "Allow removal of directories")
}

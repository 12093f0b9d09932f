package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ink-feather-org/neat-fs/cmd"
	"github.com/ink-feather-org/neat-fs/pkg/vfs"
)

func wipeMain(_ *cobra.Command, arguments []string) {
	// Validate arguments.
	if len(arguments) != 0 {
		cmd.Fatal(errors.New("unexpected arguments"))
	}

	// Refuse to destroy the namespace without explicit confirmation.
	if !wipeConfiguration.force {
		cmd.Fatal(errors.New("refusing to wipe without --force"))
	}

	// Perform the wipe.
	err := withFileSystem(func(ctx context.Context, fileSystem *vfs.FileSystem) error {
		return fileSystem.Wipe(ctx)
	})
	if err != nil {
		cmd.Fatal(err)
	}
}

var wipeCommand = &cobra.Command{
	Use:   "wipe",
	Short: "Remove every entry in the filesystem",
	Run:   wipeMain,
}

var wipeConfiguration struct {
	// force indicates the presence of the -f/--force flag.
	force bool
}

func init() {
	flags := wipeCommand.Flags()
	flags.BoolVarP(&wipeConfiguration.force, "force", "f", false, "Confirm the wipe")
}

package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ink-feather-org/neat-fs/cmd"
	"github.com/ink-feather-org/neat-fs/pkg/vfs"
)

func copyMain(_ *cobra.Command, arguments []string) {
	// Validate arguments.
	if len(arguments) != 2 {
		cmd.Fatal(errors.New("expected a source and a target"))
	}

	// Perform the copy.
	err := withFileSystem(func(ctx context.Context, fileSystem *vfs.FileSystem) error {
		return fileSystem.Copy(ctx, arguments[0], arguments[1])
	})
	if err != nil {
		cmd.Fatal(err)
	}
}

var copyCommand = &cobra.Command{
	Use:   "cp <source> <target>",
	Short: "Copy an entry recursively",
	Run:   copyMain,
}

func moveMain(_ *cobra.Command, arguments []string) {
	// Validate arguments.
	if len(arguments) != 2 {
		cmd.Fatal(errors.New("expected a source and a target"))
	}

	// Perform the move.
	err := withFileSystem(func(ctx context.Context, fileSystem *vfs.FileSystem) error {
		return fileSystem.Move(ctx, arguments[0], arguments[1])
	})
	if err != nil {
		cmd.Fatal(err)
	}
}

var moveCommand = &cobra.Command{
	Use:   "mv <source> <target>",
	Short: "Move an entry",
	Run:   moveMain,
}

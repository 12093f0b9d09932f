package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ink-feather-org/neat-fs/cmd"
	"github.com/ink-feather-org/neat-fs/pkg/vfs"
)

func linkMain(_ *cobra.Command, arguments []string) {
	// Validate arguments.
	if len(arguments) != 2 {
		cmd.Fatal(errors.New("expected a link path and a destination"))
	}

	// Create the link.
	err := withFileSystem(func(ctx context.Context, fileSystem *vfs.FileSystem) error {
		return fileSystem.MkLnk(ctx, arguments[0], arguments[1])
	})
	if err != nil {
		cmd.Fatal(err)
	}
}

var linkCommand = &cobra.Command{
	Use:   "link <path> <destination>",
	Short: "Create a symbolic link",
	Run:   linkMain,
}

func readlinkMain(_ *cobra.Command, arguments []string) {
	// Validate arguments.
	if len(arguments) != 1 {
		cmd.Fatal(errors.New("expected a link path"))
	}

	// Read the link.
	err := withFileSystem(func(ctx context.Context, fileSystem *vfs.FileSystem) error {
		destination, err := fileSystem.ReadLink(ctx, arguments[0])
		if err != nil {
			return err
		}
		fmt.Println(destination)
		return nil
	})
	if err != nil {
		cmd.Fatal(err)
	}
}

var readlinkCommand = &cobra.Command{
	Use:   "readlink <path>",
	Short: "Print a symbolic link's destination",
	Run:   readlinkMain,
}

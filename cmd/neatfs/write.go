package main

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ink-feather-org/neat-fs/cmd"
	"github.com/ink-feather-org/neat-fs/pkg/vfs"
)

func writeMain(_ *cobra.Command, arguments []string) {
	// Validate arguments and determine the contents, reading from standard
	// input if none were provided inline.
	var path string
	var contents []byte
	if len(arguments) == 1 {
		path = arguments[0]
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			cmd.Fatal(errors.Wrap(err, "unable to read standard input"))
		}
		contents = data
	} else if len(arguments) == 2 {
		path = arguments[0]
		contents = []byte(arguments[1])
	} else {
		cmd.Fatal(errors.New("expected a path and optional inline contents"))
	}

	// Perform the write.
	err := withFileSystem(func(ctx context.Context, fileSystem *vfs.FileSystem) error {
		return fileSystem.WriteFile(ctx, path, contents)
	})
	if err != nil {
		cmd.Fatal(err)
	}
}

var writeCommand = &cobra.Command{
	Use:   "write <path> [<contents>]",
	Short: "Create or overwrite a file with inline contents or standard input",
	Run:   writeMain,
}

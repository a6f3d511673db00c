package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/comicmeta/cmi/pkg/runtime"
)

func UpdateCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "update",
		Short: "Update to latest version",
		Long:  `This command can be used to self-update to the latest version.`,

		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// detect latest version
			fmt.Println("Checking for the latest version...")
			latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug("comicmeta/cmi"))
			if err != nil {
				return fmt.Errorf("detect latest version: %w", err)
			}

			// check version
			if !found || latest.LessOrEqual(runtime.Version) {
				fmt.Printf("Already using the latest version: %v\n", runtime.Version)
				return nil
			}

			// ask update
			fmt.Printf("Do you want to update to the latest version: %v? (y/n):\n", latest.Version())
			input, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil || (input != "y\n" && input != "n\n") {
				return fmt.Errorf("failed validating input")
			} else if input == "n\n" {
				return nil
			}

			// get existing executable path
			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locate current executable: %w", err)
			}

			if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
				return fmt.Errorf("update to latest release: %w", err)
			}

			fmt.Printf("Successfully updated to the latest version: %v\n", latest.Version())
			return nil
		},
	}

	return command
}

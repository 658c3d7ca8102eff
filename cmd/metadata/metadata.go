package metadata

import (
	"context"
	"fmt"

	"ct-host/cmd/root"
	"ct-host/internal/metadata"

	"github.com/spf13/cobra"
)

var metadataCmd = &cobra.Command{
	Use:   "metadata <path>",
	Short: "Read a value from the instance metadata service",
	Long:  `The 'metadata' command reads a path from the host's cloud instance-metadata endpoint and prints the raw response; an unreachable endpoint prints nothing`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return lookupMetadata(cmd.Context(), args[0])
	},
}

var optDynamic bool

/**
 * Fetch and print one metadata value
 * @param {context.Context} ctx - Context bounding the lookup
 * @param {string} path - Metadata path below the tree root
 * @returns {error} Returns error only on a read failure, not on absence
 */
func lookupMetadata(ctx context.Context, path string) error {
	client := metadata.NewClient("")
	var value string
	var err error
	if optDynamic {
		value, err = client.LookupDynamic(ctx, path)
	} else {
		value, err = client.Lookup(ctx, path)
	}
	if err != nil {
		return err
	}
	if value != "" {
		fmt.Println(value)
	}
	return nil
}

func init() {
	metadataCmd.Flags().BoolVar(&optDynamic, "dynamic", false, "Read from the dynamic data tree instead of meta-data")

	root.RootCmd.AddCommand(metadataCmd)

	metadataCmd.Example = `  ct-host metadata placement/availability-zone
  ct-host metadata --dynamic instance-identity/document`
}

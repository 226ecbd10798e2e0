package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var setMetadataCommand = &cobra.Command{
	Use:   "set-metadata <name> <key=value>...",
	Short: "Update fields on a firewall rule",
	Long: `Update fields on a firewall rule.

The rule's full metadata, merged with the given fields, is sent to the API;
fields given here override the current values. Example:

  fwctl set-metadata allow-ssh description="ssh access" network=global/networks/prod`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]

		md := make(map[string]interface{}, len(args)-1)
		for _, kv := range args[1:] {
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) != 2 || parts[0] == "" {
				fatal(fmt.Errorf("invalid field %q, want key=value", kv))
			}
			md[parts[0]] = parts[1]
		}

		ctx := signalContext(context.Background())

		client, done, err := newClient(ctx, cmd)
		if err != nil {
			fatal(err)
		}
		defer done()

		op, _, err := client.Firewall(name, nil).SetMetadata(ctx, md)
		if err != nil {
			fatal(err)
		}

		if err := maybeWait(ctx, cmd, op); err != nil {
			fatal(err)
		}
		fmt.Printf("Updated %s\n", name)
	},
}

func init() {
	setMetadataCommand.Flags().Bool("no-wait", false, "Do not wait for the operation to complete")

	Fwctl.AddCommand(setMetadataCommand)
}

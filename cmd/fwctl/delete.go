package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fwctl/fwctl/rest"
	"github.com/spf13/cobra"
)

var deleteCommand = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a firewall rule",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]
		ctx := signalContext(context.Background())

		client, done, err := newClient(ctx, cmd)
		if err != nil {
			fatal(err)
		}
		defer done()

		op, _, err := client.Firewall(name, nil).Delete(ctx)
		if err != nil {
			if rest.IsNotFound(err) {
				fmt.Fprintf(os.Stderr, "Firewall %q not found.\n", name)
				if hint := notFoundHint(ctx, client, name); hint != "" {
					fmt.Fprintln(os.Stderr, hint)
				}
				os.Exit(1)
			}
			fatal(err)
		}

		if err := maybeWait(ctx, cmd, op); err != nil {
			fatal(err)
		}
		fmt.Printf("Deleted %s\n", name)
	},
}

func init() {
	deleteCommand.Flags().Bool("no-wait", false, "Do not wait for the operation to complete")

	Fwctl.AddCommand(deleteCommand)
}

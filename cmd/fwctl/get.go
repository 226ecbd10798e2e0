package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fwctl/fwctl/rest"
	"github.com/spf13/cobra"
)

var getCommand = &cobra.Command{
	Use:   "get <name>",
	Short: "Print a firewall rule",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]
		ctx := signalContext(context.Background())

		client, done, err := newClient(ctx, cmd)
		if err != nil {
			fatal(err)
		}
		defer done()

		raw, err := client.Firewall(name, nil).GetMetadata(ctx)
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

		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			fatal(err)
		}
		fmt.Println(buf.String())
	},
}

func init() {
	Fwctl.AddCommand(getCommand)
}

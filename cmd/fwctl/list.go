package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var listCommand = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List firewall rules",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := signalContext(context.Background())

		client, done, err := newClient(ctx, cmd)
		if err != nil {
			fatal(err)
		}
		defer done()

		fws, err := client.Firewalls(ctx)
		if err != nil {
			fatal(err)
		}

		for _, fw := range fws {
			network, _ := fw.Metadata()["network"].(string)
			fmt.Printf("%s\t%s\n", fw.Name, network)
		}
	},
}

func init() {
	Fwctl.AddCommand(listCommand)
}

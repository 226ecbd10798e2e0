package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwctl/fwctl/compute"
	"github.com/spf13/cobra"
)

var createCommand = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a firewall rule",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]
		flags := cmd.Flags()

		rule := &compute.Rule{}
		rule.Network, _ = flags.GetString("network")
		rule.Description, _ = flags.GetString("description")
		rule.SourceRanges, _ = flags.GetStringArray("source-range")
		rule.SourceTags, _ = flags.GetStringArray("source-tag")
		rule.TargetTags, _ = flags.GetStringArray("target-tag")

		allow, _ := flags.GetStringArray("allow")
		deny, _ := flags.GetStringArray("deny")
		rule.Allowed = parsePorts(allow)
		rule.Denied = parsePorts(deny)

		ctx := signalContext(context.Background())

		client, done, err := newClient(ctx, cmd)
		if err != nil {
			fatal(err)
		}
		defer done()

		op, _, err := client.Firewall(name, nil).Create(ctx, rule)
		if err != nil {
			fatal(err)
		}

		if err := maybeWait(ctx, cmd, op); err != nil {
			fatal(err)
		}
		fmt.Printf("Created %s\n", name)
	},
}

func init() {
	createCommand.Flags().String("network", "", "Network the rule applies to")
	createCommand.Flags().String("description", "", "Rule description")
	createCommand.Flags().StringArray("source-range", nil, "Source CIDR block (repeatable)")
	createCommand.Flags().StringArray("source-tag", nil, "Source instance tag (repeatable)")
	createCommand.Flags().StringArray("target-tag", nil, "Target instance tag (repeatable)")
	createCommand.Flags().StringArray("allow", nil, "Allowed protocol[:port,port] (repeatable)")
	createCommand.Flags().StringArray("deny", nil, "Denied protocol[:port,port] (repeatable)")
	createCommand.Flags().Bool("no-wait", false, "Do not wait for the operation to complete")

	Fwctl.AddCommand(createCommand)
}

// parsePorts parses protocol specs of the form "tcp:80,443" or "icmp".
func parsePorts(specs []string) []compute.RulePorts {
	var out []compute.RulePorts
	for _, s := range specs {
		parts := strings.SplitN(s, ":", 2)
		p := compute.RulePorts{IPProtocol: parts[0]}
		if len(parts) == 2 && parts[1] != "" {
			p.Ports = strings.Split(parts[1], ",")
		}
		out = append(out, p)
	}
	return out
}

// maybeWait waits for the operation unless --no-wait was given. A nil
// operation (a mutation response without an operation name) waits on
// nothing.
func maybeWait(ctx context.Context, cmd *cobra.Command, op *compute.Operation) error {
	noWait, err := cmd.Flags().GetBool("no-wait")
	if err != nil {
		return err
	}
	if noWait || op == nil {
		return nil
	}
	return op.Wait(ctx)
}

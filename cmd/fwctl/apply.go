package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fwctl/fwctl/compute"
	"github.com/fwctl/fwctl/config"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var applyCommand = &cobra.Command{
	Use:   "apply [dir]",
	Short: "Apply declared firewall rules",
	Long: `Apply declared firewall rules.

Reads .hcl files from the given directory (default .), creates declared
rules that do not exist and updates the ones that do.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		loader := &config.Loader{}
		root, diags := loader.Load(dir)
		if diags.HasErrors() {
			loader.WriteDiagnostics(os.Stderr, diags)
			os.Exit(1)
		}

		// The config's project is the default; the flag wins.
		if project, _ := cmd.Flags().GetString("project"); project == "" && root.Project != "" {
			if err := cmd.Flags().Set("project", root.Project); err != nil {
				fatal(err)
			}
		}

		ctx := signalContext(context.Background())

		client, done, err := newClient(ctx, cmd)
		if err != nil {
			fatal(err)
		}
		defer done()

		if err := apply(ctx, cmd, client, root.Firewalls); err != nil {
			fatal(err)
		}
	},
}

func init() {
	applyCommand.Flags().Bool("no-wait", false, "Do not wait for operations to complete")

	Fwctl.AddCommand(applyCommand)
}

// apply reconciles the declared rules, one at a time, and waits on the
// resulting operations concurrently.
func apply(ctx context.Context, cmd *cobra.Command, client *compute.Client, fws []config.Firewall) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, decl := range fws {
		fw := client.Firewall(decl.Name, nil)

		exists, err := fw.Exists(ctx)
		if err != nil {
			return err
		}

		var op *compute.Operation
		if exists {
			op, _, err = fw.SetMetadata(ctx, decl.Metadata())
			if err != nil {
				return err
			}
			fmt.Printf("Updating %s\n", decl.Name)
		} else {
			op, _, err = fw.Create(ctx, decl.Rule())
			if err != nil {
				return err
			}
			fmt.Printf("Creating %s\n", decl.Name)
		}

		name := decl.Name
		g.Go(func() error {
			if err := maybeWait(ctx, cmd, op); err != nil {
				return fmt.Errorf("%s: %v", name, err)
			}
			return nil
		})
	}

	return g.Wait()
}

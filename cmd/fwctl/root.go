// Package cmd implements the fwctl command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fwctl/fwctl/compute"
	"github.com/fwctl/fwctl/storage"
	"github.com/fwctl/fwctl/storage/kvbackend"
	"github.com/fwctl/fwctl/suggest"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
)

// Fwctl is the root command.
var Fwctl = &cobra.Command{
	Use:           "fwctl",
	Short:         "Manage Compute Engine firewall rules",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	Fwctl.PersistentFlags().String("project", os.Getenv("FWCTL_PROJECT"), "Project id")
	Fwctl.PersistentFlags().String("endpoint", "", "API endpoint override")
	Fwctl.PersistentFlags().String("cache", "", "Metadata cache file. Empty disables caching.")
	Fwctl.PersistentFlags().BoolP("verbose", "v", false, "Log requests")
}

// newClient builds a compute client from the persistent flags.
//
// The returned done function releases client resources (the cache file, when
// one is open) and must be called before exit.
func newClient(ctx context.Context, cmd *cobra.Command) (client *compute.Client, done func(), err error) {
	flags := cmd.Flags()

	project, err := flags.GetString("project")
	if err != nil {
		return nil, nil, err
	}
	if project == "" {
		return nil, nil, errors.New("project must be set (--project or FWCTL_PROJECT)")
	}

	opts := &compute.Options{}

	if opts.Endpoint, err = flags.GetString("endpoint"); err != nil {
		return nil, nil, err
	}

	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		logCfg := zap.NewDevelopmentConfig()
		logger, err := logCfg.Build()
		if err != nil {
			return nil, nil, errors.Wrap(err, "build logger")
		}
		opts.Logger = logger
	}

	done = func() {}
	cacheFile, err := flags.GetString("cache")
	if err != nil {
		return nil, nil, err
	}
	if cacheFile != "" {
		bolt, err := kvbackend.NewBolt(cacheFile)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open cache")
		}
		opts.Cache = &storage.Cache{Backend: bolt}
		done = func() {
			if err := bolt.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Close cache: %v\n", err)
			}
		}
	}

	ts, err := google.DefaultTokenSource(ctx, compute.Scope)
	if err != nil {
		// Without application default credentials, requests go out
		// unauthenticated. That is only useful against a local endpoint.
		fmt.Fprintf(os.Stderr, "No credentials found, sending unauthenticated requests: %v\n", err)
	} else {
		opts.TokenSource = ts
	}

	client, err = compute.NewClient(project, opts)
	if err != nil {
		done()
		return nil, nil, err
	}
	return client, done, nil
}

// notFoundHint returns a did-you-mean hint for an unknown firewall name, or
// an empty string when no close match exists.
func notFoundHint(ctx context.Context, client *compute.Client, name string) string {
	fws, err := client.Firewalls(ctx)
	if err != nil {
		return ""
	}
	candidates := make([]string, len(fws))
	for i, fw := range fws {
		candidates[i] = fw.Name
	}
	if match := suggest.String(name, candidates); match != "" {
		return fmt.Sprintf("Did you mean %q?", match)
	}
	return ""
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

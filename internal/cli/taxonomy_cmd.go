package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTaxonomyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Look up species codes and common names",
		Long: `Look up entries in the local eBird taxonomy snapshot. The first lookup
downloads the taxonomy and writes the snapshot; later runs read it from disk.`,
	}

	cmd.AddCommand(newTaxonomyLookupCmd("code <common name>", "Print the species code for a common name", true))
	cmd.AddCommand(newTaxonomyLookupCmd("name <species code>", "Print the common name for a species code", false))

	return cmd
}

func newTaxonomyLookupCmd(use, short string, byName bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closer, err := loadConfig()
			if err != nil {
				return err
			}
			defer closer.Close()

			if err := cfg.RequireCredential(); err != nil {
				return err
			}

			cache := newTaxonomyCache(cfg, newEBirdClient(cfg))
			key := strings.Join(args, " ")

			lookup := cache.NameForCode
			if byName {
				lookup = cache.CodeForName
			}
			val, found, err := lookup(cmd.Context(), key)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%q not found in taxonomy", key)
			}

			fmt.Fprintln(cmd.OutOrStdout(), val)
			return nil
		},
	}
}

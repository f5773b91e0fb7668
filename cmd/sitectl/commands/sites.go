package commands

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func NewSitesCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List site profiles from sitectl.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rt.Config
			if err := cfg.Load(); err != nil {
				return err
			}

			sites := cfg.Definition.Sites
			if len(sites) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No site profiles configured")
				return nil
			}

			names := make([]string, 0, len(sites))
			for name := range sites {
				names = append(names, name)
			}
			sort.Strings(names)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tURL\tAUTH")
			for _, name := range names {
				site := sites[name]
				auth := site.AuthMode
				if site.ClientID != "" {
					auth = "azure-ad"
				}
				if auth == "" {
					auth = "default"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, site.URL, auth)
			}
			return w.Flush()
		},
	}
}

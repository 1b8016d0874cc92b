package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fintree/backoffice/internal/core/tenant"
	"github.com/fintree/backoffice/internal/infrastructure/tenants"
)

var tenantsFile string

var tenantsCmd = &cobra.Command{
	Use:   "tenants",
	Short: "List the tenants the login page can brand",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := tenantsFile
		if path == "" {
			path = os.Getenv("TENANTS_FILE")
		}
		list, err := tenants.Load(path)
		if err != nil {
			return err
		}
		r, err := tenant.NewResolver(list)
		if err != nil {
			return err
		}
		def := r.Default().ID

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRIMARY COLOR\tDEFAULT")
		for _, t := range r.All() {
			mark := ""
			if t.ID == def {
				mark = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Name, t.PrimaryColor, mark)
		}
		return w.Flush()
	},
}

func init() {
	tenantsCmd.Flags().StringVar(&tenantsFile, "file", "", "tenants YAML file (defaults to the bundled list)")
}

package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listLong bool

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved profiles",
	Long: `List profile names, one per line.

With --long, print a table with each profile's credential fingerprint and
mark the profile whose credentials are currently active.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVarP(&listLong, "long", "l", false, "show fingerprints and the active profile")
}

func runList(cmd *cobra.Command, args []string) error {
	if !listLong {
		profiles, err := manager.List()
		if err != nil {
			return err
		}
		for _, p := range profiles {
			console.Println(p.Name)
		}
		return nil
	}

	metadata, err := manager.Describe()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(console.Out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFINGERPRINT\tACTIVE")
	for _, meta := range metadata {
		fingerprint := meta.Fingerprint
		if !meta.HasCredential {
			fingerprint = "(missing)"
		}
		active := ""
		if meta.Active {
			active = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", meta.Name, fingerprint, active)
	}
	return w.Flush()
}

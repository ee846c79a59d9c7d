package cmd

import (
	"fmt"

	"github.com/initializ/copilot-relay/llm/providers"
	"github.com/spf13/cobra"
)

var endpointsCmd = &cobra.Command{
	Use:   "endpoints",
	Short: "List configured endpoints and their selection share",
	RunE:  runEndpoints,
}

func runEndpoints(cmd *cobra.Command, args []string) error {
	cfg, err := loadEndpoints()
	if err != nil {
		return err
	}
	pool, err := providers.NewPool(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	styles := stylesFor(out)
	for _, b := range pool.Backends() {
		fmt.Fprintln(out, styles.Title.Render(b.Name))
		fmt.Fprintln(out, styles.SummaryKey.Render("type")+styles.SummaryValue.Render(b.Endpoint.Type))
		fmt.Fprintln(out, styles.SummaryKey.Render("url")+styles.SummaryValue.Render(b.Endpoint.URL))
		fmt.Fprintln(out, styles.SummaryKey.Render("weight")+
			styles.SummaryValue.Render(fmt.Sprint(b.Weight))+" "+
			styles.DimTxt.Render(fmt.Sprintf("(%.0f%%)", pool.Share(b.Name)*100)))
	}
	return nil
}

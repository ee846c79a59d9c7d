package cmd

import (
	"fmt"

	"github.com/initializ/copilot-relay/validate"
	"github.com/spf13/cobra"
)

var strict bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate endpoints.yaml",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadEndpoints()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	styles := stylesFor(out)
	result := validate.ValidateEndpointsConfig(cfg)

	for _, e := range result.Errors {
		fmt.Fprintln(out, styles.ErrorTxt.Render("ERROR: "+e))
	}
	for _, w := range result.Warnings {
		fmt.Fprintln(out, styles.WarningTxt.Render("WARNING: "+w))
	}

	if !result.IsValid() {
		return fmt.Errorf("validation failed: %d error(s)", len(result.Errors))
	}
	if strict && len(result.Warnings) > 0 {
		return fmt.Errorf("validation failed (strict): %d warning(s)", len(result.Warnings))
	}

	fmt.Fprintln(out, styles.SuccessTxt.Render(fmt.Sprintf("Validation passed: %d endpoint(s)", len(cfg.Endpoints))))
	return nil
}

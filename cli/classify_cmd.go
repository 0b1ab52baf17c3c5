package cli

import (
	"fmt"

	"github.com/giygas/prescription-assistant/assistant"
	"github.com/spf13/cobra"
)

// newClassifyCmd prints the intent a question maps to. With a file, the
// medicine lookup runs first, as it does when answering.
func newClassifyCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   `classify "<question>"`,
		Short: "Show the intent and matched medicine of a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if file == "" {
				fmt.Fprintf(out, "intent: %s\n", assistant.Classify(args[0], false))
				return nil
			}

			medicines, err := LoadMedicines(file)
			if err != nil {
				return err
			}

			rec, tier := assistant.ResolveEntityTier(args[0], medicines)
			fmt.Fprintf(out, "intent: %s\n", assistant.Classify(args[0], rec != nil))
			if rec != nil {
				fmt.Fprintf(out, "medicine: %s\nmatch: %s\n", rec.DisplayName(), tier)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "prescription file used for the medicine lookup")

	return cmd
}

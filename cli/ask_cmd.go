package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/giygas/prescription-assistant/assistant"
	"github.com/giygas/prescription-assistant/entities"
	"github.com/giygas/prescription-assistant/interfaces"
	"github.com/spf13/cobra"
)

func newAskCmd(app *App) *cobra.Command {
	var (
		file   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   `ask "<question>"`,
		Short: "Answer one question about a prescription file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			medicines, err := LoadMedicines(file)
			if err != nil {
				return err
			}

			answer, err := app.Resolver.Resolve(args[0], medicines)
			if err != nil {
				return fmt.Errorf("failed to answer: %w", err)
			}

			return printAnswer(cmd.OutOrStdout(), answer, asJSON)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "prescription file (.yaml, .yml or .json)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full answer as JSON")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// newChatCmd answers questions read line by line until EOF or "exit"
func newChatCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask questions about a prescription file interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			medicines, err := LoadMedicines(file)
			if err != nil {
				return err
			}
			return chatLoop(cmd.InOrStdin(), cmd.OutOrStdout(), app.Resolver, medicines)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "prescription file (.yaml, .yml or .json)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// chatLoop answers one line at a time. A turn never ends the session, a
// question that cannot be answered gets the fallback text.
func chatLoop(in io.Reader, out io.Writer, r interfaces.Responder, medicines []entities.MedicineRecord) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "exit" || line == "quit":
			return nil
		default:
			fmt.Fprintln(out, r.Respond(line, medicines))
		}
		fmt.Fprint(out, "> ")
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	fmt.Fprintln(out)
	return nil
}

func printAnswer(out io.Writer, answer assistant.Answer, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}

	_, err := fmt.Fprintln(out, answer.Text)
	return err
}

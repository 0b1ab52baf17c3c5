// Package cli implements the rxassist command line: questions against a
// prescription file without running the HTTP server.
package cli

import (
	"github.com/giygas/prescription-assistant/interfaces"
	"github.com/spf13/cobra"
)

// Assistant answers questions: ask reports record errors, chat never stops on them.
type Assistant interface {
	interfaces.QueryResolver
	interfaces.Responder
}

// App holds what the commands need.
type App struct {
	Resolver Assistant
}

// NewRootCmd creates the top-level "rxassist" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "rxassist",
		Short:         "Answer questions about a prescription",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newAskCmd(app),
		newChatCmd(app),
		newClassifyCmd(),
	)

	return root
}

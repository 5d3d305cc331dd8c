package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	apperrors "github.com/journeykit/journeymap/pkg/errors"
	"github.com/journeykit/journeymap/pkg/reorder"
)

// newReorderCmd creates the reorder command.
func newReorderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorder <journey-id>",
		Short: "Interactively reorder sibling subjourneys",
		Long: `Reorder opens a dialog listing the subjourneys of a journey in their
current sequence order. Move entries up and down, then commit the new
order or cancel to keep the old one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg := configFromContext(ctx)
			journeyID := args[0]

			st, closeStore, err := newStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			current, err := st.GetJourney(ctx, journeyID, true)
			if err != nil {
				return err
			}
			if len(current.Subjourneys) < 2 {
				return apperrors.New(apperrors.ErrCodeInvalidInput,
					"journey %q has %d subjourneys, nothing to reorder", current.Name, len(current.Subjourneys))
			}

			session := reorder.NewSession(reorder.SaverFunc(st.ReorderJourneys), logger)
			session.Initialize(current.Subjourneys)

			names := make(map[string]string, len(current.Subjourneys))
			for _, sub := range current.Subjourneys {
				names[sub.ID] = sub.Name
			}

			model := newReorderModel(ctx, current.Name, session, names)
			final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}

			result, ok := final.(reorderModel)
			if !ok {
				return nil
			}
			switch {
			case result.commitErr != nil:
				printError("Reorder failed: %s", apperrors.UserMessage(result.commitErr))
				return result.commitErr
			case result.committed:
				printSuccess("Saved new order")
				for i, id := range session.Order() {
					printDetail("%d. %s", i+1, names[id])
				}
			default:
				printInfo("Order unchanged")
			}
			return nil
		},
	}
	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eh7/edx-enterprise/transmission"
)

func newTransmitLearnerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transmit-learner <username> <course-run-id>",
		Short: "Transmit one learner's course completion to every real-time channel",
		Args:  cobra.ExactArgs(2),
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			orch := transmission.NewOrchestrator(a.store, a.store, transmission.WithLogger(a.logger))
			if err := orch.TransmitSingleLearnerData(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "transmitted %s for %s\n", args[1], args[0])
			return nil
		}),
	}
}

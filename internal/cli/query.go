package cli

import (
	"github.com/spf13/cobra"
)

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List games",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := newFetcher()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		games, err := f.GetGames(ctx)
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), games)
	},
}

var (
	sequencesDate string
	sequenceID    string
)

var sequencesCmd = &cobra.Command{
	Use:   "sequences",
	Short: "List the sequences of a game",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := newFetcher()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		seqs, err := f.GetSequences(ctx, sequencesDate)
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), seqs)
	},
}

var playsCmd = &cobra.Command{
	Use:   "plays",
	Short: "List the plays of a sequence",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := newFetcher()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		plays, err := f.GetPlays(ctx, sequenceID)
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), plays)
	},
}

func init() {
	rootCmd.AddCommand(gamesCmd, sequencesCmd, playsCmd)

	sequencesCmd.Flags().StringVar(&sequencesDate, "date", "", "Game date (game_date)")
	sequencesCmd.MarkFlagRequired("date")

	playsCmd.Flags().StringVar(&sequenceID, "sequence", "", "Sequence id")
	playsCmd.MarkFlagRequired("sequence")
}

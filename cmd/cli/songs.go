package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search songs by title, falling back to artist per keyword",
	Long: `Search ranks every song against the query words.

Examples:
  cadence search "blue moon"
  cadence search abba -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newClient().Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printRanking(res)
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend songs based on your recent listening",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newClient().Recommend(cmd.Context())
		if err != nil {
			return err
		}
		return printRanking(res)
	},
}

var likeCmd = &cobra.Command{
	Use:   "like <song-id>",
	Short: "Like a song, or unlike it if already liked",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		liked, err := newClient().ToggleLike(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if liked {
			printSuccess("Song liked")
		} else {
			printSuccess("Song unliked")
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List songs you viewed, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient().History(cmd.Context())
		if err != nil {
			return err
		}
		return printSongs("History", list)
	},
}

var likedCmd = &cobra.Command{
	Use:   "liked",
	Short: "List songs you liked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient().Liked(cmd.Context())
		if err != nil {
			return err
		}
		return printSongs("Liked songs", list)
	},
}

var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "List songs you uploaded",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient().Channel(cmd.Context())
		if err != nil {
			return err
		}
		return printSongs("Your channel", list)
	},
}

package main

import (
	"github.com/spf13/cobra"
)

var playlistCmd = &cobra.Command{
	Use:   "playlist",
	Short: "Show or edit your playlist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient().Playlist(cmd.Context())
		if err != nil {
			return err
		}
		return printSongs("Playlist", list)
	},
}

var playlistAddCmd = &cobra.Command{
	Use:   "add <song-id>",
	Short: "Append a song to your playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().AddToPlaylist(cmd.Context(), args[0]); err != nil {
			return err
		}
		printSuccess("Song added to playlist")
		return nil
	},
}

var playlistRemoveCmd = &cobra.Command{
	Use:     "remove <song-id>",
	Aliases: []string{"rm"},
	Short:   "Remove a song from your playlist",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().RemoveFromPlaylist(cmd.Context(), args[0]); err != nil {
			return err
		}
		printSuccess("Song removed from playlist")
		return nil
	},
}

func init() {
	playlistCmd.AddCommand(playlistAddCmd, playlistRemoveCmd)
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/zfogg/cadence/internal/client"
)

var (
	bold    = color.New(color.Bold)
	success = color.New(color.FgGreen)
	failure = color.New(color.FgRed)
	info    = color.New(color.FgCyan)
	dim     = color.New(color.Faint)
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func printSuccess(format string, args ...any) {
	success.Printf("✓ "+format+"\n", args...)
}

func printError(err error) {
	msg := err.Error()
	if client.IsUnauthorized(err) {
		msg += "\nRun `cadence login` or set CADENCE_TOKEN"
	}
	failure.Fprintf(os.Stderr, "✗ %s\n", msg)
}

// printJSON reports whether JSON output was requested and, if so, prints v
func printJSON(v any) (bool, error) {
	if outputFmt != "json" {
		return false, nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return true, err
	}
	fmt.Println(string(data))
	return true, nil
}

func printRanking(res *client.Ranking) error {
	if done, err := printJSON(res); done {
		return err
	}
	if len(res.Songs) == 0 {
		info.Println("No songs found")
		return nil
	}
	if res.ColdStart {
		dim.Println("No listening history yet, showing the most liked songs")
	}
	for i, s := range res.Songs {
		score := ""
		if i < len(res.Scores) {
			score = fmt.Sprintf(" (score %d)", res.Scores[i])
		}
		fmt.Printf("%3d. %s - %s", i+1, bold.Sprint(s.Title), s.Artist)
		dim.Printf("  %s  ♥ %d%s  %s\n", strings.Join(s.Genre, ", "), s.Likes, score, s.ID)
	}
	return nil
}

func printSongs(title string, list *client.SongList) error {
	if done, err := printJSON(list); done {
		return err
	}
	bold.Printf("%s (%d)\n", title, list.Count)
	for i, s := range list.Songs {
		fmt.Printf("%3d. %s - %s", i+1, s.Title, s.Artist)
		dim.Printf("  ♥ %d  %s\n", s.Likes, s.ID)
	}
	return nil
}

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zfogg/cadence/internal/client"
)

var (
	configPath string
	outputFmt  string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "cadence",
	Short: "Cadence CLI - search and get recommendations from a Cadence server",
	Long: `Cadence CLI provides command-line access to a Cadence music catalog.
Search songs, get recommendations based on what you listened to,
like songs and manage your playlist.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
		return initConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.config/cadence/config.toml)")
	rootCmd.PersistentFlags().String("api", "", "API server URL")
	rootCmd.PersistentFlags().String("token", "", "Authentication token (defaults to CADENCE_TOKEN or the saved login)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log HTTP requests to stderr")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text or json")

	_ = viper.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("api"))
	_ = viper.BindPFlag("auth.token", rootCmd.PersistentFlags().Lookup("token"))

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd)
	rootCmd.AddCommand(searchCmd, recommendCmd, likeCmd)
	rootCmd.AddCommand(historyCmd, likedCmd, channelCmd)
	rootCmd.AddCommand(playlistCmd)
}

func initConfig() error {
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configPath = filepath.Join(home, ".config", "cadence", "config.toml")
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("toml")
	viper.SetDefault("api.base_url", "http://localhost:8787")
	viper.SetDefault("api.timeout", 30)

	// CADENCE_TOKEN, CADENCE_API_BASE_URL
	viper.SetEnvPrefix("cadence")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("auth.token", "CADENCE_TOKEN")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", configPath, err)
	}
	return nil
}

// saveToken persists the login token to the config file
func saveToken(token string) error {
	viper.Set("auth.token", token)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return err
	}
	return viper.WriteConfigAs(configPath)
}

func newClient() *client.Client {
	c := client.New(
		viper.GetString("api.base_url"),
		viper.GetString("auth.token"),
		time.Duration(viper.GetInt("api.timeout"))*time.Second,
	)
	c.OnResponse(func(info client.ResponseInfo) {
		log.Debug("HTTP", "method", info.Method, "url", info.URL, "status", info.Status, "took", info.Duration)
	})
	return c
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

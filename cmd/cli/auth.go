package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var registerCmd = &cobra.Command{
	Use:   "register <username> <email>",
	Short: "Create an account and save its token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		confirm, err := readPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}

		res, err := newClient().Register(cmd.Context(), args[0], args[1], password)
		if err != nil {
			return err
		}
		if err := saveToken(res.Token); err != nil {
			return fmt.Errorf("registered, but failed to save token: %w", err)
		}
		printSuccess("Registered as %s", res.User.Username)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in and save the token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}

		res, err := newClient().Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		if err := saveToken(res.Token); err != nil {
			return fmt.Errorf("logged in, but failed to save token: %w", err)
		}
		printSuccess("Logged in as %s (token expires %s)", res.User.Username, res.ExpiresAt.Local().Format("Jan 2 15:04"))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := saveToken(""); err != nil {
			return err
		}
		printSuccess("Logged out")
		return nil
	},
}

// readPassword reads without echo from a terminal, or a line from piped stdin
func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

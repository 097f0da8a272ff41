package app

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/painel-economico/indicadores-server/internal/session"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Hash an admin password for the configuration file",
	Long: `Hash an admin password with argon2id and print the encoded hash.

The password is read from the terminal (without echo) or from STDIN when
piped. Put the printed hash in auth.passwordHash, or export it as
INDICADORES_AUTH_PASSWORD_HASH.`,
	RunE: runHashPassword,
}

func runHashPassword(cmd *cobra.Command, _ []string) error {
	var reader io.Reader
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(os.Stderr, "Password: ")
		passwordReader, err := readerFromTerminal()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		reader = passwordReader
	} else {
		reader = cmd.InOrStdin()
	}

	passwordBytes, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	password := strings.TrimRight(string(passwordBytes), "\r\n")
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	hash, err := session.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}

func readerFromTerminal() (io.Reader, error) {
	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(passwordBytes) == 0 {
		return nil, fmt.Errorf("password cannot be empty")
	}

	return bytes.NewReader(passwordBytes), nil
}

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fittrack/fittrack"
	"github.com/fittrack/fittrack/password"
)

// NewHashPasswordCmd creates the hash-password subcommand.
func NewHashPasswordCmd() *cobra.Command {
	var rounds int

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a password read from the terminal or stdin",
		Long: `Read a password (without echo on a terminal, one line otherwise) and
print its $pbkdf2-sha256$ hash.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rounds < fittrack.MinHashRounds {
				return fmt.Errorf("rounds must be at least %d", fittrack.MinHashRounds)
			}

			pw, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}

			hash, err := password.NewPBKDF2Hasher(&password.PBKDF2Config{Rounds: rounds}).Hash(pw)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}

	cmd.Flags().IntVar(&rounds, "rounds", fittrack.DefaultHashRounds, "PBKDF2 iteration count")

	return cmd
}

func readPassword(stdin io.Reader, prompt io.Writer) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	// Pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

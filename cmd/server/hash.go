package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/phrazzld/studytrack-api/internal/service/auth"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// newHashPasswordCommand prints bcrypt hashes for passwords read one per
// line from stdin. Used to seed users directly in the database.
func newHashPasswordCommand() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Hash passwords from stdin with bcrypt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hasher := auth.NewBcrypt(cost)
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				password := strings.TrimRight(scanner.Text(), "\r")
				if password == "" {
					continue
				}
				hash, err := hasher.Hash(password)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), hash)
			}
			return scanner.Err()
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost factor")
	return cmd
}

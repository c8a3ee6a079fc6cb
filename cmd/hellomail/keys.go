package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"
)

// newKeysCmd genera secretos para el config. No necesita config cargada.
func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Genera claves para secretbox_master_key y session_secret",
		// pisa el PersistentPreRunE del root: no se carga config
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "secretbox",
			Short: "Imprime una SECRETBOX_MASTER_KEY nueva (base64, 32 bytes)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return printRandom(cmd, 32)
			},
		},
		&cobra.Command{
			Use:   "session",
			Short: "Imprime un SESSION_SECRET nuevo (base64, 48 bytes)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return printRandom(cmd, 48)
			},
		},
	)
	return cmd
}

func printRandom(cmd *cobra.Command, n int) error {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(b))
	return nil
}

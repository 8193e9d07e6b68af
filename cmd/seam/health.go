package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check server health",
	GroupID: "server",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		defer c.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		status, err := c.Health(ctx)
		if err != nil {
			return fmt.Errorf("server unreachable: %w", err)
		}
		if jsonOutput {
			printJSON(map[string]string{"status": status})
			return nil
		}
		fmt.Printf("Server: %s\n", status)
		return nil
	},
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/loomworks/seam/internal/events"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Tail live analysis events",
	Long:    "Streams analysis lifecycle events. When SEAM_NATS_URL is set the bus is consumed directly; otherwise events arrive over the server's SSE stream.",
	GroupID: "server",
	RunE: func(cmd *cobra.Command, args []string) error {
		topics, _ := cmd.Flags().GetStringSlice("topic")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if natsURL := os.Getenv("SEAM_NATS_URL"); natsURL != "" {
			return watchNATS(ctx, natsURL, topics)
		}
		return watchSSE(ctx, topics)
	},
}

// watchSSE tails the server's SSE stream.
func watchSSE(ctx context.Context, topics []string) error {
	c := newClient()
	defer c.Close()

	ch, err := c.StreamEvents(ctx, topics)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-ch:
			if !ok {
				return nil
			}
			printEvent(evt.Topic, evt.Data)
		}
	}
}

// watchNATS subscribes to the event bus directly, bypassing the server.
func watchNATS(ctx context.Context, natsURL string, topics []string) error {
	sub, err := events.NewNATSSubscriber(natsURL)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	if len(topics) == 0 {
		topics = []string{"seam.>"}
	}

	merged := make(chan events.Envelope, 64)
	for _, topic := range topics {
		ch, cancel, err := sub.Subscribe(topic)
		if err != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
		defer cancel()
		go func(ch <-chan events.Envelope) {
			for env := range ch {
				select {
				case merged <- env:
				case <-ctx.Done():
					return
				}
			}
		}(ch)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case env := <-merged:
			printEvent(env.Topic, env.Data)
		}
	}
}

func printEvent(topic string, data []byte) {
	if jsonOutput {
		fmt.Printf(`{"topic":%q,"data":%s}`+"\n", topic, data)
		return
	}
	fmt.Printf("%s  %-26s %s\n", time.Now().Format("15:04:05"), topic, data)
}

func init() {
	watchCmd.Flags().StringSlice("topic", nil, `topic filters, e.g. "seam.analysis.*" (default: all)`)
}

// Command council runs Council of Elders discussions in the terminal.
//
//	council [-mode panel] [-participants id1,id2] [question]
//	council schema
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/koscakluka/ema-council/core/backend"
	"github.com/koscakluka/ema-council/core/discussion"
	"github.com/koscakluka/ema-council/core/events"
	"github.com/koscakluka/ema-council/internal/config"
	"github.com/koscakluka/ema-council/internal/telemetry"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "schema" {
		if err := printSchema(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "council:", err)
		os.Exit(1)
	}
}

func printSchema() error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(events.RecordSchema())
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	mode := flag.String("mode", cfg.Mode, "discussion mode (ask, roundtable, panel, salon, intake, rap, poetry, council)")
	participants := flag.String("participants", "", "comma separated participant ids; empty lets the council choose")
	flag.Parse()

	request, err := parseRequest(*mode, *participants, strings.Join(flag.Args(), " "))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, "council", cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("set up telemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(ctx)
	}()

	var opts []backend.ClientOption
	if cfg.Transport == config.TransportWebSocket {
		opts = append(opts, backend.WithStreamTransport(backend.NewWebSocketTransport(cfg.BaseURL)))
	}
	client := backend.NewClient(cfg.BaseURL, opts...)

	identities, err := client.ListParticipants(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "council: participant directory unavailable:", err)
	}

	pres := newPresenter()
	coordinator := discussion.NewCoordinator(client, pres,
		discussion.WithDirectory(discussion.NewRoster(identities...)),
		discussion.WithSettings(cfg.DiscussionSettings()),
		discussion.WithEnrichment(cfg.Enrichment),
	)

	ctx, quit := context.WithCancel(ctx)
	defer quit()

	program := tea.NewProgram(newModel(ctx, quit, coordinator, client, pres, request), tea.WithAltScreen(), tea.WithContext(ctx))
	pres.send = program.Send

	_, err = program.Run()
	coordinator.Wait()
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func parseRequest(modeName, participants, question string) (discussion.Request, error) {
	mode, err := discussion.ParseMode(modeName)
	if err != nil {
		return discussion.Request{}, err
	}

	var ids []string
	for id := range strings.SplitSeq(participants, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	return discussion.Request{
		Mode:         mode,
		Question:     strings.TrimSpace(question),
		Participants: ids,
	}, nil
}

// leadchat-console is a terminal rendition of the website chat widget: it
// opens a conversation, sends what you type and keeps the transcript in sync
// with the server by polling, reconciling optimistic lines against confirmed
// rows the same way the browser widget does.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"leadchat/apiclient"
	"leadchat/reconcile"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "leadchat server base URL")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, err := apiclient.New(*serverURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not build API client")
	}

	clientID, welcome, err := client.Start(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not start conversation")
	}
	fmt.Printf("assistente> %s\n", welcome)

	var mu sync.Mutex
	timeline := reconcile.NewTimeline()

	render := func(res reconcile.ApplyResult) {
		for _, e := range res.Appended {
			who := "assistente"
			if e.FromClient {
				who = "voce"
			}
			fmt.Printf("%s> %s\n", who, e.Text)
		}
		for _, e := range res.ReadChanged {
			if e.Read {
				fmt.Printf("(lida) %s\n", e.Text)
			}
		}
	}

	poll := func(ctx context.Context) {
		msgs, err := client.Messages(ctx, clientID)
		if err != nil {
			log.Warn().Err(err).Msg("Poll failed")
			return
		}
		mu.Lock()
		res := timeline.Apply(apiclient.ReconcileAll(msgs))
		mu.Unlock()
		render(res)
	}

	poller := apiclient.NewPoller(apiclient.WidgetPollInterval, poll)
	go poller.Run(ctx)
	poll(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/quit" {
			break
		}

		mu.Lock()
		timeline.AppendLocal(text, true)
		mu.Unlock()

		reply, err := client.Send(ctx, clientID, text)
		if err != nil {
			log.Error().Err(err).Msg("Could not send message")
			continue
		}

		// Optimistic render of the reply ahead of the next poll confirming it.
		mu.Lock()
		timeline.AppendLocal(reply, false)
		mu.Unlock()
		fmt.Printf("assistente> %s\n", reply)
	}

	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("Input closed with error")
	}
}

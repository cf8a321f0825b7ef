package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"biomeai-be/internal/bootstrap"
	"biomeai-be/internal/config"
	"biomeai-be/pkg/platform"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// simulate drives one report conversation from the terminal against the
// in-memory store. Everything after the upload is read from stdin.
func main() {
	reportPath := flag.String("report", "", "path to a PDF or text report")
	userId := flag.String("user", "sim-user", "simulated user id")
	flag.Parse()

	if *reportPath == "" {
		log.Fatal("Usage: simulate -report ./report.pdf")
	}

	cfg := config.Load()
	if err := cfg.Validate(false, false); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()
	container := bootstrap.NewContainer(nil, cfg)
	defer container.Close()

	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Printf("Consumer not started: %v", err)
	}

	console := platform.NewConsole(os.Stdout)
	author := platform.Author{Id: *userId, DisplayName: *userId}
	threadId := "sim-" + uuid.NewString()[:8]

	fmt.Println("=== BiomeAI Simulation ===")
	fmt.Printf("Uploading %s as %s\n\n", *reportPath, *userId)

	container.MessageHandler.Handle(ctx, console, platform.InboundMessage{
		Id:        uuid.NewString(),
		ChannelId: threadId,
		Author:    author,
		Mentioned: true,
		InThread:  true,
		Attachments: []platform.Attachment{{
			Filename: filepath.Base(*reportPath),
			URL:      *reportPath,
		}},
	})

	prompt := color.New(color.FgGreen, color.Bold)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		prompt.Print("\nYOU: ")
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

		route := container.MessageHandler.Handle(ctx, console, platform.InboundMessage{
			Id:        uuid.NewString(),
			ChannelId: threadId,
			Author:    author,
			Content:   text,
			InThread:  true,
		})
		color.New(color.FgHiBlack).Printf("(route: %s)\n", route)
	}
}

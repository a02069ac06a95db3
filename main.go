package main

import (
	"context"
	"log"
	"os"

	"github.com/BTreeMap/DialogPipe/internal/dialog"
	"github.com/BTreeMap/DialogPipe/internal/messaging"
	"github.com/BTreeMap/DialogPipe/internal/models"
	"github.com/BTreeMap/DialogPipe/internal/prompts"
	"github.com/BTreeMap/DialogPipe/internal/store"
)

func main() {
	// Minimal in-memory example: a single prompt driven through two turns.
	// The full console application lives in cmd/DialogPipe.
	accessor := dialog.NewDialogStateAccessor(store.NewInMemoryStore())
	set := dialog.NewDialogSet(accessor)

	name := prompts.NewTextPrompt("namePrompt", nil)
	if err := set.Add(name); err != nil {
		log.Fatalf("Failed to register dialog: %v", err)
	}
	runner := dialog.NewDialogRunner(set, "namePrompt")

	sender := messaging.NewConsoleSender(os.Stdout)
	ctx := context.Background()

	for _, input := range []string{"hello", "Ada"} {
		tc := messaging.NewTurnContext("demo", models.NewMessage(input), sender)
		result, err := runner.RunTurn(ctx, tc)
		if err != nil {
			log.Fatalf("Turn failed: %v", err)
		}
		if result.Status == models.DialogTurnStatusComplete {
			log.Printf("Prompt completed with %v", result.Result)
		}
	}
}

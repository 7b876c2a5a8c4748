package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agencyops/chattersync/config"
	"github.com/agencyops/chattersync/roster"
	"github.com/agencyops/chattersync/store"
)

// =============================================================================
// ROSTER SYNC - Directory tables -> chatters and models
// =============================================================================

// RosterSync copies the chatter and model tables from the directory into
// the store. The directory is authoritative; rows are upserted on the
// directory record id, and existing tracker key mappings are preserved by
// the store, never overwritten from here.
type RosterSync struct {
	Log       *slog.Logger
	Cfg       *config.Config
	Directory DirectoryAPI
	Roster    store.RosterStore
	Models    store.ModelStore
	Runs      store.RunStore
}

func (j *RosterSync) Run(ctx context.Context) error {
	started := time.Now().UTC()

	chatters, skippedChatters, err := j.fetchChatters(ctx)
	if err != nil {
		return err
	}
	models, skippedModels, err := j.fetchModels(ctx)
	if err != nil {
		return err
	}

	writtenChatters, err := j.Roster.UpsertChatters(ctx, chatters)
	if err != nil {
		return fmt.Errorf("upsert chatters: %w", err)
	}
	writtenModels, err := j.Models.UpsertModels(ctx, models)
	if err != nil {
		return fmt.Errorf("upsert models: %w", err)
	}

	skipped := skippedChatters + skippedModels
	j.Log.Info("roster sync finished",
		"chatters", writtenChatters,
		"models", writtenModels,
		"skipped", skipped)
	recordRun(ctx, j.Log, j.Runs, "sync-roster", started,
		len(chatters)+len(models), writtenChatters+writtenModels, skipped, 0,
		fmt.Sprintf("chatters=%d models=%d skipped=%d", writtenChatters, writtenModels, skipped))
	return nil
}

// fetchChatters maps directory rows to roster records. Rows without a name
// are skipped and counted; an unnamed chatter cannot be matched by anything.
func (j *RosterSync) fetchChatters(ctx context.Context) ([]roster.Chatter, int, error) {
	records, err := j.Directory.ListRecords(ctx, j.Cfg.ChattersTableID)
	if err != nil {
		return nil, 0, fmt.Errorf("list chatters from directory: %w", err)
	}

	var out []roster.Chatter
	skipped := 0
	for _, rec := range records {
		name := rec.String("Full Name")
		if name == "" {
			skipped++
			continue
		}
		status := roster.Status(rec.String("Status"))
		if status == "" {
			status = roster.StatusInactive
		}
		out = append(out, roster.Chatter{
			DirectoryID: rec.ID,
			FullName:    name,
			Status:      status,
			Role:        rec.String("Role"),
			TeamName:    rec.String("Team Name"),
		})
	}
	return out, skipped, nil
}

func (j *RosterSync) fetchModels(ctx context.Context) ([]store.Model, int, error) {
	records, err := j.Directory.ListRecords(ctx, j.Cfg.ModelsTableID)
	if err != nil {
		return nil, 0, fmt.Errorf("list models from directory: %w", err)
	}

	var out []store.Model
	skipped := 0
	for _, rec := range records {
		name := rec.String("Name")
		if name == "" {
			skipped++
			continue
		}
		out = append(out, store.Model{
			DirectoryID:    rec.ID,
			Name:           name,
			Status:         rec.String("Status"),
			PageType:       rec.String("Page Type"),
			Niche:          rec.Strings("Niche"),
			TrafficSources: rec.Strings("Traffic Sources"),
			ClientName:     rec.String("Client Name"),
			TeamNames:      rec.Strings("Teams"),
			ChatbotActive:  rec.Bool("Chatbot Active"),
			ScriptsURL:     rec.String("Scripts"),
		})
	}
	return out, skipped, nil
}

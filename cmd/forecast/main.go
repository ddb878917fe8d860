package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"DemandCast/internal/di"
	"DemandCast/internal/domain/models"
	"DemandCast/pkg/config"
)

// Batch forecast generation. Mirrors the HTTP generate endpoint for
// cron and operator use.
func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	placeID := flag.Int64("place-id", 0, "generate for a single place")
	all := flag.Bool("all", false, "generate for every place in the ledger")
	days := flag.Int("days", 7, "forecast horizon in days")
	itemIDs := flag.String("item-ids", "", "comma-separated item ids (with -place-id)")
	flag.Parse()

	if *placeID == 0 && !*all {
		log.Fatal("specify either -place-id or -all")
	}

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	gen, err := di.InitializeGenerator(cfg)
	if err != nil {
		log.Fatalf("initialization failed: %v", err)
	}

	ctx := context.Background()
	var summary models.BatchSummary
	if *all {
		summary, err = gen.GenerateAll(ctx, *days)
		if err != nil {
			log.Fatalf("batch generation failed: %v", err)
		}
	} else {
		items, perr := parseItemIDs(*itemIDs)
		if perr != nil {
			log.Fatalf("bad -item-ids: %v", perr)
		}
		summary = gen.GenerateForPlace(ctx, *placeID, *days, items)
	}

	for _, item := range summary.Items {
		scope := fmt.Sprintf("place %d", item.PlaceID)
		if item.ItemID != nil {
			scope += fmt.Sprintf(" item %d", *item.ItemID)
		}
		if item.Status == models.StatusFailed {
			fmt.Printf("  %s: FAILED: %s\n", scope, item.Error)
			continue
		}
		mape := "N/A"
		if item.Result != nil && item.Result.Metrics.MAPE != nil {
			mape = fmt.Sprintf("%.2f%%", *item.Result.Metrics.MAPE)
		}
		points := 0
		if item.Result != nil {
			points = item.Result.PointsSaved
		}
		fmt.Printf("  %s: %s, %d points, MAPE %s\n", scope, item.Status, points, mape)
	}
	fmt.Printf("done: %d succeeded, %d failed of %d\n", summary.Succeeded, summary.Failed, summary.Total)

	if summary.Failed > 0 && summary.Succeeded == 0 {
		os.Exit(1)
	}
}

func parseItemIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

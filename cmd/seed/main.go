package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/match-manager/internal/app"
	"github.com/riskibarqy/match-manager/internal/config"
	"github.com/riskibarqy/match-manager/internal/usecase"
)

type seedReport struct {
	Teams      []seededTeam `json:"teams"`
	Failures   []string     `json:"failures"`
	DurationMS int64        `json:"durationMs"`
}

type seededTeam struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Players int    `json:"players"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: seed <roster.yaml>")
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}

	raw, err := os.Open(strings.TrimSpace(os.Args[1]))
	if err != nil {
		log.Fatalf("open roster file: %v", err)
	}
	file, err := usecase.ParseSeedFile(raw)
	_ = raw.Close()
	if err != nil {
		log.Fatalf("parse roster file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("create app: %v", err)
	}

	code := run(context.Background(), application, file)
	if err := application.Close(); err != nil {
		log.Printf("close app: %v", err)
	}
	os.Exit(code)
}

func run(ctx context.Context, a *app.App, file usecase.SeedFile) int {
	result, err := a.Seeder.Seed(ctx, file)
	if err != nil {
		log.Printf("seed roster: %v", err)
		return 1
	}

	encoded, err := sonic.ConfigDefault.MarshalIndent(newSeedReport(result), "", "  ")
	if err != nil {
		log.Printf("encode report: %v", err)
		return 1
	}
	fmt.Println(string(encoded))
	return exitCode(result)
}

// exitCode is 1 when any team or player of the file could not be seeded.
func exitCode(result usecase.SeedResult) int {
	if len(result.Failures) > 0 {
		return 1
	}
	return 0
}

func newSeedReport(result usecase.SeedResult) seedReport {
	report := seedReport{
		Teams:      make([]seededTeam, 0, len(result.Teams)),
		Failures:   make([]string, 0, len(result.Failures)),
		DurationMS: result.Duration.Milliseconds(),
	}
	for _, item := range result.Teams {
		report.Teams = append(report.Teams, seededTeam{ID: item.Team.ID, Name: item.Team.Name, Players: len(item.Players)})
	}
	for _, failure := range result.Failures {
		report.Failures = append(report.Failures, failure.Error())
	}
	return report
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/match-manager/internal/app"
	"github.com/riskibarqy/match-manager/internal/config"
	"github.com/riskibarqy/match-manager/internal/domain/player"
	"github.com/riskibarqy/match-manager/internal/domain/team"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("create app: %v", err)
	}

	code := run(context.Background(), application, strings.ToLower(strings.TrimSpace(os.Args[1])), os.Args[2:])
	if err := application.Close(); err != nil {
		log.Printf("close app: %v", err)
	}
	os.Exit(code)
}

func run(ctx context.Context, a *app.App, cmd string, args []string) int {
	store := a.Store

	switch cmd {
	case "health":
		healthy := a.Persistence.Initialize(ctx) == nil && a.Persistence.CheckHealth(ctx)
		printJSON(healthView{Driver: a.Config.StorageDriver, Healthy: healthy})
		if !healthy {
			return 1
		}
		return 0
	case "reset":
		if err := a.Persistence.Reset(ctx); err != nil {
			log.Printf("reset database: %v", err)
			return 1
		}
		log.Printf("database reset (driver=%s)", a.Config.StorageDriver)
		return 0
	}

	if err := store.Initialize(ctx); err != nil {
		return fail(a, err)
	}

	switch cmd {
	case "teams":
		printJSON(toTeamViews(store.Snapshot().Teams))
	case "recent":
		teams, err := store.RecentTeams(ctx)
		if err != nil {
			log.Printf("recent teams: %v", err)
			return 1
		}
		printJSON(toTeamViews(teams))
	case "team-create":
		if len(args) < 1 {
			log.Print("team-create requires a name argument")
			return 2
		}
		settings := team.DefaultSettings()
		if len(args) > 1 {
			shift, err := parsePositive("shift length", args[1])
			if err != nil {
				log.Print(err)
				return 2
			}
			settings.DefaultShiftLength = shift
		}
		created, err := store.CreateTeam(ctx, team.NewTeam{Name: args[0], Settings: settings})
		if err != nil {
			return fail(a, err)
		}
		printJSON(toTeamView(created))
	case "team-rename":
		if len(args) < 2 {
			log.Print("team-rename requires id and name arguments")
			return 2
		}
		name := args[1]
		updated, err := store.UpdateTeam(ctx, args[0], team.Patch{Name: &name})
		if err != nil {
			return fail(a, err)
		}
		printJSON(toTeamView(updated))
	case "team-delete":
		if len(args) < 1 {
			log.Print("team-delete requires an id argument")
			return 2
		}
		if err := store.DeleteTeam(ctx, args[0]); err != nil {
			return fail(a, err)
		}
		log.Printf("team %s deleted", args[0])
	case "players":
		if len(args) < 1 {
			log.Print("players requires a team id argument")
			return 2
		}
		selected, ok := findTeam(store.Snapshot().Teams, args[0])
		if !ok {
			log.Printf("team %s not found", args[0])
			return 1
		}
		store.SelectTeam(ctx, &selected)
		state := store.Snapshot()
		if state.Error != "" {
			log.Print(state.Error)
			return 1
		}
		printJSON(toPlayerViews(state.Players))
	case "player-add":
		if len(args) < 4 {
			log.Print("player-add requires team id, name, jersey and positions arguments")
			return 2
		}
		jersey, err := strconv.Atoi(strings.TrimSpace(args[2]))
		if err != nil {
			log.Printf("invalid jersey number %q: %v", args[2], err)
			return 2
		}
		created, err := store.CreatePlayer(ctx, player.NewPlayer{
			TeamID:       args[0],
			Name:         args[1],
			JerseyNumber: jersey,
			Positions:    parsePositions(args[3]),
			IsActive:     true,
		})
		if err != nil {
			return fail(a, err)
		}
		printJSON(toPlayerView(created))
	case "player-deactivate", "player-reactivate":
		if len(args) < 1 {
			log.Printf("%s requires a player id argument", cmd)
			return 2
		}
		toggle := store.DeactivatePlayer
		if cmd == "player-reactivate" {
			toggle = store.ReactivatePlayer
		}
		updated, err := toggle(ctx, args[0])
		if err != nil {
			return fail(a, err)
		}
		printJSON(toPlayerView(updated))
	case "player-delete":
		if len(args) < 1 {
			log.Print("player-delete requires a player id argument")
			return 2
		}
		if err := store.DeletePlayer(ctx, args[0]); err != nil {
			return fail(a, err)
		}
		log.Printf("player %s deleted", args[0])
	default:
		printUsage()
		return 2
	}
	return 0
}

// fail prints the user-facing message the store recorded, then the cause.
func fail(a *app.App, err error) int {
	if msg := a.Store.Snapshot().Error; msg != "" {
		fmt.Fprintln(os.Stderr, msg)
	}
	log.Printf("error: %v", err)
	return 1
}

func findTeam(teams []team.Team, id string) (team.Team, bool) {
	for _, item := range teams {
		if item.ID == id {
			return item, true
		}
	}
	return team.Team{}, false
}

func parsePositive(name, raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return value, nil
}

func parsePositions(raw string) []player.Position {
	parts := strings.Split(raw, ",")
	out := make([]player.Position, 0, len(parts))
	for _, part := range parts {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		out = append(out, player.Position(part))
	}
	return out
}

func printJSON(value any) {
	encoded, err := sonic.ConfigDefault.MarshalIndent(value, "", "  ")
	if err != nil {
		log.Fatalf("encode output: %v", err)
	}
	fmt.Println(string(encoded))
}

func printUsage() {
	fmt.Println("usage: matchmanager <command> [args]")
	fmt.Println("commands:")
	fmt.Println("  teams                                         list every team")
	fmt.Println("  recent                                        list the most recently created teams")
	fmt.Println("  team-create <name> [shift]                    create a team with default settings")
	fmt.Println("  team-rename <id> <name>                       rename a team")
	fmt.Println("  team-delete <id>                              delete a team (players are kept)")
	fmt.Println("  players <teamID>                              select a team and list its roster")
	fmt.Println("  player-add <teamID> <name> <jersey> <pos,...> add a player")
	fmt.Println("  player-deactivate <id>                        mark a player inactive")
	fmt.Println("  player-reactivate <id>                        mark a player active")
	fmt.Println("  player-delete <id>                            delete a player")
	fmt.Println("  health                                        check database health")
	fmt.Println("  reset                                         drop the database file")
}

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mehdibadjian/fitness-planner/internal/tracker"
)

var (
	version   string
	buildDate string
)

const helpText = `Available commands:
  workout <date> <y|n> [minutes|-] [energy|-] [notes...]
  smoke <date> <count> [first HH:MM|-] [craving|-] [notes...]
  get <date>          show both entries for a date
  week <n>            list entries of program week n
  stats               show the dashboard
  sync                sync with the remote now
  last                show the last successful sync time
  export <file>       write a backup
  import <file>       replace local data with a backup
  id                  show the owner id
  exit`

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

// repl runs the interactive shell loop.
func repl(ctx context.Context, s *tracker.Session) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("fitness> ")
		if !scanner.Scan() {
			break
		}
		args := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(args) == 0 {
			continue
		}
		now := time.Now()
		switch args[0] {
		case "help":
			fmt.Println(helpText)
		case "workout":
			w, err := parseWorkout(args[1:], now)
			if err == nil {
				w, err = s.SaveWorkout(ctx, w)
			}
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("Workout saved for %s (week %d)\n", w.Date, w.WeekNumber)
		case "smoke":
			e, err := parseSmoking(args[1:], now)
			if err == nil {
				e, err = s.SaveSmoking(ctx, e)
			}
			if err != nil {
				fmt.Println(err)
				continue
			}
			if e.OnTarget() {
				fmt.Printf("On target: %d of %d for week %d\n", e.CigarettesSmoked, e.Target, e.WeekNumber)
			} else {
				fmt.Printf("Over target by %d (target %d for week %d)\n", e.CigarettesSmoked-e.Target, e.Target, e.WeekNumber)
			}
		case "get":
			if len(args) < 2 {
				fmt.Println("Usage: get <date>")
				continue
			}
			date, err := parseDate(args[1], now)
			if err != nil {
				fmt.Println(err)
				continue
			}
			w, wok, err := s.Store().WorkoutByDate(ctx, date)
			if err != nil {
				fmt.Println(err)
				continue
			}
			e, sok, err := s.Store().SmokingByDate(ctx, date)
			if err != nil {
				fmt.Println(err)
				continue
			}
			if !wok && !sok {
				fmt.Println("No entries for", date)
				continue
			}
			if wok {
				printJSON(w)
			}
			if sok {
				printJSON(e)
			}
		case "week":
			var n int
			if len(args) < 2 {
				fmt.Println("Usage: week <n>")
				continue
			}
			if _, err := fmt.Sscanf(args[1], "%d", &n); err != nil {
				fmt.Println("Usage: week <n>")
				continue
			}
			workouts, err := s.Store().WorkoutsByWeek(ctx, n)
			if err != nil {
				fmt.Println(err)
				continue
			}
			smoking, err := s.Store().SmokingByWeek(ctx, n)
			if err != nil {
				fmt.Println(err)
				continue
			}
			printJSON(map[string]any{"workouts": workouts, "smoking": smoking})
		case "stats":
			d, err := s.Dashboard(ctx)
			if err != nil {
				fmt.Println(err)
				continue
			}
			printJSON(d)
		case "sync":
			if s.ManualSync(ctx) {
				fmt.Println("Synced")
			} else {
				fmt.Println("Sync failed or already running; local data kept")
			}
		case "last":
			if t, ok := s.LastSyncTime(ctx); ok {
				fmt.Println("Last sync:", t.Local().Format(time.RFC1123))
			} else {
				fmt.Println("Never synced")
			}
		case "export":
			if len(args) < 2 {
				fmt.Println("Usage: export <file>")
				continue
			}
			data, err := s.Export(ctx)
			if err == nil {
				err = os.WriteFile(args[1], data, 0o600)
			}
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Println("Exported to", args[1])
		case "import":
			if len(args) < 2 {
				fmt.Println("Usage: import <file>")
				continue
			}
			data, err := os.ReadFile(args[1])
			if err == nil {
				err = s.Import(ctx, data)
			}
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Println("Imported", args[1])
		case "id":
			fmt.Println(s.OwnerID())
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

// newProvider opens the device store selected by kind.
func newProvider(kind, dataDir, redisAddr string) (tracker.Provider, error) {
	switch kind {
	case "file":
		return tracker.NewFileProvider(dataDir)
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		return tracker.NewRedisProvider(client, "fitness:"), nil
	case "memory":
		return tracker.NewMemoryProvider(), nil
	case "none":
		return tracker.Absent{}, nil
	}
	return nil, fmt.Errorf("unknown store %q", kind)
}

// main parses command-line flags, opens the device store and starts the shell.
func main() {
	var (
		baseURL    string
		dataDir    string
		storeKind  string
		redisAddr  string
		remoteKind string
		interval   time.Duration
		verbose    bool
		showVer    bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.StringVar(&dataDir, "data", ".fitness", "data directory for the file store")
	flag.StringVar(&storeKind, "store", "file", "device store: file | redis | memory | none")
	flag.StringVar(&redisAddr, "redis", "localhost:6379", "redis address for the redis store")
	flag.StringVar(&remoteKind, "remote", "http", "remote: http | local")
	flag.DurationVar(&interval, "interval", 5*time.Minute, "periodic sync interval")
	flag.BoolVar(&verbose, "v", false, "log sync activity")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("Fitness Planner Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	zapLogger := zap.NewNop()
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			log.Fatal(err)
		}
		zapLogger = l
	}
	defer func() { _ = zapLogger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider, err := newProvider(storeKind, dataDir, redisAddr)
	if err != nil {
		log.Fatal(err)
	}

	ownerID, err := tracker.LoadOwnerID(ctx, provider)
	if err != nil {
		zapLogger.Warn("owner id not persisted", zap.Error(err))
		ownerID = uuid.NewString()
	}

	var remote tracker.RemoteStore
	switch remoteKind {
	case "local":
		remote = tracker.NewLocalRemote(provider)
	case "http":
		remote = tracker.NewHTTPRemote(&http.Client{Timeout: 30 * time.Second}, baseURL, ownerID)
	default:
		log.Fatalf("unknown remote: %s", remoteKind)
	}

	s := tracker.NewSession(tracker.NewLocalStore(provider), remote, ownerID, zapLogger)
	defer s.Close()
	if !provider.Available() {
		fmt.Println("Storage unavailable: entries will not be kept")
	}

	s.StartAutoSync(ctx, interval)
	repl(ctx, s)
}

// Command replay plays back saved simulation steps in the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/affinity/config"
	"github.com/pthm-cable/affinity/store"
)

const (
	minFPS = 1
	maxFPS = 60
)

func main() {
	dbPath := flag.String("db", "", "SQLite database written by a -db run")
	simID := flag.Int64("sim", 0, "Simulation id (0 = most recent)")
	from := flag.Int64("from", 0, "First step to show")
	fps := flag.Int("fps", 10, "Playback steps per second")
	chunk := flag.Int64("chunk", 200, "Steps loaded per query")
	list := flag.Bool("list", false, "List simulations and exit")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "-db is required")
		os.Exit(2)
	}

	if err := run(*dbPath, *simID, *from, *fps, *chunk, *list); err != nil {
		slog.Error("replay failed", "error", err)
		os.Exit(1)
	}
}

func run(dbPath string, simID, from int64, fps int, chunk int64, list bool) error {
	ctx := context.Background()

	st, err := store.OpenSQLite(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	sims, err := st.ListSimulations(ctx)
	if err != nil {
		return err
	}
	if list {
		return printSimulations(sims)
	}
	if len(sims) == 0 {
		return errors.New("no simulations in database")
	}

	sim := sims[len(sims)-1]
	if simID != 0 {
		if sim, err = store.FindSimulation(ctx, st, simID); err != nil {
			return err
		}
	}

	cfg, err := config.Parse(sim.Config)
	if err != nil {
		return fmt.Errorf("simulation %d config: %w", sim.ID, err)
	}
	arena := r2.Vec{X: cfg.Arena.Width, Y: cfg.Arena.Height}

	p, err := newPlayer(ctx, st, sim.ID, from, chunk)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	return loop(ctx, screen, p, sim.Name, arena, min(max(fps, minFPS), maxFPS))
}

func loop(ctx context.Context, screen tcell.Screen, p *player, name string, arena r2.Vec, fps int) error {
	events := make(chan tcell.Event)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	playing := true
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	redraw := func() {
		drawStep(screen, arena, p.current())
		drawStatus(screen, name, p.current(), p.latestNumber(), playing, fps)
		screen.Show()
	}
	setFPS := func(n int) {
		fps = min(max(n, minFPS), maxFPS)
		ticker.Reset(time.Second / time.Duration(fps))
	}
	redraw()

	for {
		select {
		case <-ticker.C:
			if !playing {
				continue
			}
			if _, err := p.next(ctx); err != nil {
				return err
			}
			redraw()

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				var err error
				switch ev.Key() {
				case tcell.KeyEscape, tcell.KeyCtrlC:
					return nil
				case tcell.KeyLeft:
					playing = false
					_, err = p.prev(ctx)
				case tcell.KeyRight:
					playing = false
					_, err = p.next(ctx)
				case tcell.KeyRune:
					switch ev.Rune() {
					case 'q':
						return nil
					case ' ':
						playing = !playing
					case '+', '=':
						setFPS(fps * 2)
					case '-':
						setFPS(fps / 2)
					case 'g':
						err = p.seek(ctx, 0)
					case 'G':
						if err = p.refresh(ctx); err == nil {
							err = p.seek(ctx, p.latestNumber())
						}
					}
				}
				if err != nil {
					return err
				}
			}
			redraw()
		}
	}
}

func printSimulations(sims []store.Simulation) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSEED\tCREATED")
	for _, s := range sims {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", s.ID, s.Name, s.Seed, s.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

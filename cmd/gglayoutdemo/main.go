// Command gglayoutdemo scrolls a virtualized list of wrapped labels while
// another goroutine mutates it, and saves the last frame as PNG.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/gogpu/gglayout"
	"github.com/gogpu/gglayout/ggdraw"
	"github.com/gogpu/gglayout/items"
	"github.com/gogpu/gglayout/views"
)

var words = []string{
	"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf",
	"hotel", "india", "juliett", "kilo", "lima", "mike", "november",
}

// phrase returns a deterministic label of 1 to 14 words.
func phrase(i int) string {
	n := 1 + (i*7)%len(words)
	s := fmt.Sprintf("%d.", i)
	for j := range n {
		s += " " + words[(i+j)%len(words)]
	}
	return s
}

func main() {
	var (
		width     = flag.Int("width", 480, "image width")
		height    = flag.Int("height", 640, "image height")
		output    = flag.String("output", "gglayout.png", "output file")
		config    = flag.String("config", "", "TOML layout config")
		count     = flag.Int("items", 5000, "number of items")
		frames    = flag.Int("frames", 120, "frames to render")
		step      = flag.Float64("scroll", 40, "pixels scrolled per frame")
		mutations = flag.Int("mutations", 50, "collection changes while scrolling")
		verbose   = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		gglayout.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	cfg, err := loadConfig(*config)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, *width, *height, *count, *frames, *mutations, *step, *output); err != nil {
		log.Fatalf("Demo failed: %v", err)
	}
}

// loadConfig reads path, or returns the demo defaults: a virtualized,
// templated list.
func loadConfig(path string) (gglayout.Config, error) {
	if path != "" {
		return gglayout.LoadConfig(path)
	}
	cfg := gglayout.DefaultConfig()
	cfg.Layout.Strategy = gglayout.MeasureVisible
	cfg.Layout.Recycling = gglayout.RecyclingEnabled
	cfg.Layout.Spacing = 4
	return cfg, nil
}

func run(ctx context.Context, cfg gglayout.Config, width, height, count, frames, mutations int, step float64, output string) error {
	labels := make([]string, count)
	for i := range labels {
		labels[i] = phrase(i)
	}
	list := items.NewList(views.TitleLabels(language.English, labels...)...)

	canvas, err := ggdraw.New(width, height)
	if err != nil {
		return err
	}
	defer canvas.Close()

	pool := views.NewTemplatePool(nil)
	adapter := views.NewAdapter(list, func(s string) string { return s },
		views.WithTemplates[string](pool, nil))

	opts := append(cfg.Options(), gglayout.WithViewport(gglayout.ViewportFunc(canvas.Bounds)))
	l := gglayout.New(adapter, &views.TextMeasurer{}, canvas, opts...)
	defer l.Close()
	unsubscribe := l.Observe(list)
	defer unsubscribe()

	const scale = 1.0
	constraints := gglayout.Rect{Right: float64(width), Bottom: math.Inf(1)}
	l.Measure(constraints, scale)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return mutate(ctx, list, mutations)
	})

	g.Go(func() error {
		ticker := time.NewTicker(16 * time.Millisecond)
		defer ticker.Stop()

		var scrollY float64
		for frame := range frames {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}

			if l.NeedsMeasure() {
				l.Measure(constraints, scale)
			}
			l.MeasureAdditionalItems(cfg.Background.BatchSize, 10)

			content := l.ContentSize().Pixels.Height
			scrollY = min(scrollY+step, max(content-float64(height), 0))
			n, err := canvas.Frame(l, gglayout.XYWH(0, -scrollY, float64(width), content), scale)
			if err != nil {
				return err
			}
			if frame%30 == 0 {
				st := l.Stats()
				log.Printf("frame %d: drew %d, visible [%d, %d], measured %d/%d, pending %d",
					frame, n, st.FirstVisibleIndex, st.LastVisibleIndex, st.Cells, list.Len(), st.PendingChanges)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.WaitBackgroundMeasurement(waitCtx); err != nil {
		log.Printf("background measurement: %v", err)
	}
	if l.NeedsMeasure() {
		l.Measure(constraints, scale)
	}
	if _, err := canvas.Frame(l, gglayout.XYWH(0, 0, float64(width), l.ContentSize().Pixels.Height), scale); err != nil {
		return err
	}
	if err := canvas.SavePNG(output); err != nil {
		return fmt.Errorf("save %s: %w", output, err)
	}

	st := l.Stats()
	ps := pool.Stats()
	log.Printf("Demo saved to %s (%dx%d): %d items, %d measured, %d views created, window hit rate %.2f",
		output, width, height, list.Len(), st.Cells, ps.Created, st.Window.HitRate)
	return nil
}

// mutate inserts, replaces and removes items at a steady pace.
func mutate(ctx context.Context, list *items.List[string], n int) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for i := range n {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		size := list.Len()
		if size == 0 {
			list.Append(phrase(i))
			continue
		}
		at := (i * 37) % size
		var err error
		switch i % 3 {
		case 0:
			err = list.Insert(at, fmt.Sprintf("inserted %d", i))
		case 1:
			err = list.Replace(at, fmt.Sprintf("replaced %d with a longer label that wraps onto a second line", i))
		case 2:
			err = list.RemoveAt(at, 1)
		}
		if err != nil {
			return fmt.Errorf("mutation %d: %w", i, err)
		}
	}
	return nil
}

// Command poller runs the client-side reconciler against a donationhub API and
// logs what a mobile client would show: status changes, new notifications, the
// donor verification prompt and the connectivity banner.
//
// With -track it also reads "lat,lng" lines from stdin and forwards them as
// volunteer location updates, throttled like the app does.
package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"donationhub/internal/config"
	"donationhub/internal/models"
	"donationhub/internal/reconciler"
	"donationhub/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	baseURL := flag.String("base-url", cfg.Polling.APIBaseURL, "API base URL")
	token := flag.String("token", cfg.Polling.Token, "bearer token")
	tab := flag.String("tab", "", "feed tab to poll (defaults to the role's first tab)")
	donorID := flag.String("donor", "", "donor id to raise verification prompts for")
	track := flag.Bool("track", false, "forward lat,lng lines from stdin as location updates")
	flag.Parse()

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  "text",
		Output:  "stderr",
		AppName: "poller",
		Version: cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := reconciler.NewAPIClient(*baseURL, *token, *tab, cfg.Polling.Interval)

	if *track {
		tracker := reconciler.NewLocationTracker(client, cfg.Polling.LocationMinInterval, cfg.Polling.LocationMinDistance, appLogger)
		positions := make(chan models.Coordinate)
		go readPositions(ctx, os.Stdin, positions, appLogger)
		go func() {
			if err := tracker.Run(ctx, positions); err != nil && ctx.Err() == nil {
				appLogger.WithError(err).Error("Location tracker stopped")
			}
		}()
	}

	r := reconciler.New(client, &logObserver{log: appLogger}, reconciler.Config{
		Interval:         cfg.Polling.Interval,
		FailureThreshold: cfg.Polling.FailureThreshold,
		DonorID:          *donorID,
	}, appLogger)

	appLogger.WithField("base_url", *baseURL).Info("Polling started")
	_ = r.Run(ctx)
	appLogger.Info("Polling stopped")
}

type logObserver struct {
	log *logger.Logger
}

func (o *logObserver) OnDelta(d reconciler.Delta) {
	for _, c := range d.StatusChanges {
		o.log.WithFields(map[string]interface{}{
			"posting_id": c.PostingID,
			"from":       c.From,
			"to":         c.To,
		}).Infof("%s changed status", c.Name)
	}
	if len(d.Added) > 0 {
		o.log.WithField("posting_ids", d.Added).Info("New postings")
	}
	if len(d.Removed) > 0 {
		o.log.WithField("posting_ids", d.Removed).Info("Postings gone")
	}
	for _, n := range d.NewNotifications {
		o.log.WithField("type", n.Type).Infof("Notification: %s", n.Message)
	}
	if d.PromptChanged {
		if d.Prompt == nil {
			o.log.Info("Verification prompt dismissed")
		} else {
			o.log.WithFields(map[string]interface{}{
				"posting_id": d.Prompt.PostingID,
				"status":     d.Prompt.Status,
			}).Warnf("Review evidence for %s", d.Prompt.Name)
		}
	}
}

func (o *logObserver) OnConnectivity(lost bool) {
	if lost {
		o.log.Warn("Connection lost, retrying")
		return
	}
	o.log.Info("Connection restored")
}

func readPositions(ctx context.Context, r io.Reader, out chan<- models.Coordinate, appLogger *logger.Logger) {
	defer close(out)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		c, ok := parseCoordinate(scanner.Text())
		if !ok {
			appLogger.WithField("line", scanner.Text()).Warn("Ignoring malformed position")
			continue
		}
		select {
		case out <- c:
		case <-ctx.Done():
			return
		}
	}
}

func parseCoordinate(line string) (models.Coordinate, bool) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 2 {
		return models.Coordinate{}, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return models.Coordinate{}, false
	}
	return models.Coordinate{Lat: lat, Lng: lng}, true
}

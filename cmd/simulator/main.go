// Command simulator drives a running SafeDrive service with synthetic vehicle telemetry.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

func main() {
	baseURL := flag.String("url", "http://localhost:3000", "SafeDrive service base URL")
	apiKey := flag.String("key", "safedrive_secret_key", "device API key")
	interval := flag.Duration("interval", 2*time.Second, "interval between sensor readings")
	accidentEvery := flag.Int("accident-every", 30, "report an accident every N readings, 0 disables")
	lat := flag.Float64("lat", 5.6545, "starting latitude")
	lng := flag.Float64("lng", -0.1869, "starting longitude")
	flag.Parse()

	sensors := newClient(*baseURL, *apiKey, sensorRetries)
	accidents := newClient(*baseURL, *apiKey, 0)
	car := newVehicle(time.Now().UnixNano(), *lat, *lng)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	sent := 0
	tick := func() {
		sent++
		if *accidentEvery > 0 && sent%*accidentEvery == 0 {
			send(ctx, accidents, accidentPath, car.crash())
			return
		}
		send(ctx, sensors, sensorPath, car.next())
	}

	log.WithField("url", *baseURL).Info("simulator started")
	tick()

	for {
		select {
		case <-ctx.Done():
			log.Info("received shutdown signal, stopping simulator")
			return
		case <-ticker.C:
			tick()
		}
	}
}

const (
	sensorPath   = "/api/sensor/http"
	accidentPath = "/api/accident"

	sensorRetries = 3
)

// newClient builds a resty client for the service. Accident posts must use
// retries=0: the server mints a new id per request, so a retried post after
// a lost response would record the accident twice.
func newClient(baseURL, apiKey string, retries int) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetHeader("X-API-Key", apiKey).
		SetTimeout(5 * time.Second).
		SetRetryCount(retries).
		SetRetryWaitTime(500 * time.Millisecond)
}

type ingestResult struct {
	Status string      `json:"status"`
	ID     interface{} `json:"id"`
}

func send(ctx context.Context, client *resty.Client, path string, r reading) {
	if err := post(ctx, client, path, r); err != nil {
		log.WithError(err).WithField("path", path).Warn("post failed")
	}
}

func post(ctx context.Context, client *resty.Client, path string, r reading) error {
	resp, err := client.R().
		SetContext(ctx).
		SetBody(r).
		SetResult(&ingestResult{}).
		Post(path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), resp.String())
	}

	res := resp.Result().(*ingestResult)
	log.WithFields(log.Fields{"path": path, "id": res.ID, "impact": r.Impact}).Info("posted reading")
	return nil
}

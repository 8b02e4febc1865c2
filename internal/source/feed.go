package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/jinank/smart-aqms/internal/models"
)

// FeedSource consumes readings from a sensor-gateway websocket, one JSON
// message per reading. A failed read tears the connection down and surfaces
// the error; the next cycle reconnects with backoff.
type FeedSource struct {
	URL        string
	Timeout    time.Duration
	Logger     *zap.Logger
	BackoffMin time.Duration
	BackoffMax time.Duration

	conn    *websocket.Conn
	backoff time.Duration
}

type feedMessage struct {
	StationID    int64   `json:"station_id"`
	TS           string  `json:"ts"`
	PM25         float64 `json:"pm25"`
	CO2PPM       float64 `json:"co2_ppm"`
	TemperatureC float64 `json:"temperature_c"`
	Humidity     float64 `json:"humidity"`
	WindSpeed    float64 `json:"wind_speed"`
}

func (f *FeedSource) Next(ctx context.Context, size int) ([]models.Reading, error) {
	if f == nil || strings.TrimSpace(f.URL) == "" {
		return nil, fmt.Errorf("feed url not configured")
	}
	if f.conn == nil {
		if err := f.connect(ctx); err != nil {
			return nil, err
		}
	}

	batch := make([]models.Reading, 0, size)
	for len(batch) < size {
		readCtx := ctx
		var cancel context.CancelFunc
		if f.Timeout > 0 {
			readCtx, cancel = context.WithTimeout(ctx, f.Timeout)
		}
		_, data, err := f.conn.Read(readCtx)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			f.drop()
			return nil, fmt.Errorf("feed read: %w", err)
		}
		var msg feedMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if f.Logger != nil {
				f.Logger.Warn("feed message skipped", zap.Error(err))
			}
			continue
		}
		ts, err := time.Parse(time.RFC3339, msg.TS)
		if err != nil {
			ts = time.Now().UTC()
		}
		batch = append(batch, models.Reading{
			StationID:    msg.StationID,
			TS:           ts.UTC(),
			PM25:         msg.PM25,
			CO2PPM:       msg.CO2PPM,
			TemperatureC: msg.TemperatureC,
			Humidity:     msg.Humidity,
			WindSpeed:    msg.WindSpeed,
		})
	}
	return batch, nil
}

func (f *FeedSource) connect(ctx context.Context) error {
	if f.backoff > 0 {
		t := time.NewTimer(f.backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	conn, _, err := websocket.Dial(ctx, f.URL, nil)
	if err != nil {
		f.bumpBackoff()
		return fmt.Errorf("feed dial: %w", err)
	}
	conn.SetReadLimit(1 << 20)
	f.conn = conn
	f.backoff = 0
	if f.Logger != nil {
		f.Logger.Info("sensor feed connected", zap.String("url", f.URL))
	}
	return nil
}

func (f *FeedSource) drop() {
	if f.conn != nil {
		_ = f.conn.Close(websocket.StatusInternalError, "read failed")
		f.conn = nil
	}
	f.bumpBackoff()
}

func (f *FeedSource) bumpBackoff() {
	min := f.BackoffMin
	if min <= 0 {
		min = time.Second
	}
	max := f.BackoffMax
	if max <= 0 {
		max = 30 * time.Second
	}
	if f.backoff <= 0 {
		f.backoff = min
		return
	}
	f.backoff *= 2
	if f.backoff > max {
		f.backoff = max
	}
}

func (f *FeedSource) Close() error {
	if f == nil || f.conn == nil {
		return nil
	}
	err := f.conn.Close(websocket.StatusNormalClosure, "shutdown")
	f.conn = nil
	return err
}

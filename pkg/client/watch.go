package client

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrAPIKeyRequired is returned by Watch when the record is pending
	// and no API key is available to trigger processing.
	ErrAPIKeyRequired = errors.New("record is pending and no API key was provided")

	// ErrWatchTimeout is returned by Watch when the record did not reach
	// a terminal status within the attempt budget.
	ErrWatchTimeout = errors.New("watch exceeded maximum polling attempts")
)

const (
	defaultWatchInterval = 2 * time.Second
	defaultWatchAttempts = 150
)

// WatchOptions configure Watch. Zero values select the defaults: a 2s
// polling interval and 150 attempts.
type WatchOptions struct {
	// Interval between status polls.
	Interval time.Duration

	// MaxAttempts bounds the number of status polls before Watch gives
	// up with ErrWatchTimeout.
	MaxAttempts int

	// APIKey lets Watch trigger processing when the record is still
	// pending. Left empty, a pending record yields ErrAPIKeyRequired.
	APIKey string

	// APIURL overrides the recognition endpoint when triggering
	// processing.
	APIURL string
}

func (o WatchOptions) normalize() WatchOptions {
	if o.Interval <= 0 {
		o.Interval = defaultWatchInterval
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultWatchAttempts
	}
	return o
}

// Watch follows a record until it reaches a terminal status and returns
// it. A record that is already terminal returns immediately. A pending
// record is pushed into processing first when opts.APIKey is set;
// otherwise Watch fails with ErrAPIKeyRequired rather than poll a record
// nothing will advance.
func (c *Client) Watch(ctx context.Context, id int64, opts WatchOptions) (*Record, error) {
	opts = opts.normalize()

	rec, err := c.Record(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Terminal() {
		return rec, nil
	}

	if rec.Status == "pending" {
		if opts.APIKey == "" {
			return nil, ErrAPIKeyRequired
		}
		// Process blocks until recognition completes, so run it in the
		// background and let the poll loop observe the transition.
		go c.Process(context.WithoutCancel(ctx), ProcessRequest{
			ID:     id,
			APIKey: opts.APIKey,
			APIURL: opts.APIURL,
		})
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		rec, err = c.Record(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec.Terminal() {
			return rec, nil
		}
	}

	return nil, ErrWatchTimeout
}

// Package state persists an analysis session: the raw points of a track,
// its comment and the wind bearing last analyzed for.
package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rotblauer/sailtrack/stream"
	"github.com/rotblauer/sailtrack/types/datapoint"
	"go.etcd.io/bbolt"
)

var sessionBucket = []byte("session")

var (
	keyPoints  = []byte("points")
	keyComment = []byte("comment")
	keyWind    = []byte("wind")
)

var ErrNoSession = errors.New("no session stored")

type Session struct {
	DB    *bbolt.DB
	rOnly bool
}

// Open opens or creates the session database at path.
// Opening a writable DB conn will block all other writers and readers
// with essentially a file lock/flock, up to a second.
func Open(path string, readOnly bool) (*Session, error) {
	if !readOnly {
		if err := os.MkdirAll(filepath.Dir(path), 0770); err != nil {
			return nil, err
		}
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{
		ReadOnly: readOnly,
		Timeout:  time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open session %s: %w", path, err)
	}
	return &Session{DB: db, rOnly: readOnly}, nil
}

func (s *Session) Close() error {
	return s.DB.Close()
}

func (s *Session) storeKV(key []byte, data []byte) error {
	if key == nil {
		return fmt.Errorf("storeKV: nil key")
	}
	if data == nil {
		return fmt.Errorf("storeKV: nil data")
	}
	return s.DB.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(sessionBucket)
		if err != nil {
			return err
		}
		return bucket.Put(key, data)
	})
}

// readKV returns nil without error for a missing key.
func (s *Session) readKV(key []byte) ([]byte, error) {
	var out []byte
	err := s.DB.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(sessionBucket)
		if bucket == nil {
			return nil
		}

		// Gotcha! The value returned by Get is only valid in the scope of the transaction.
		got := bucket.Get(key)
		if got == nil {
			return nil
		}
		out = bytes.Clone(got)
		return nil
	})
	return out, err
}

// WritePoints replaces the stored points.
// Points are encoded in newline-delimited JSON, as in track files.
func (s *Session) WritePoints(points datapoint.DataPoints) error {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	for _, p := range points {
		if err := enc.Encode(p); err != nil {
			return err
		}
	}
	if err := s.storeKV(keyPoints, buf.Bytes()); err != nil {
		return err
	}
	slog.Debug("Stored session points", "points", len(points), "bytes", buf.Len())
	return nil
}

func (s *Session) ReadPoints() (datapoint.DataPoints, error) {
	got, err := s.readKV(keyPoints)
	if err != nil {
		return nil, err
	}
	if got == nil {
		return nil, ErrNoSession
	}
	ctx := context.Background()
	decoded, errs := stream.NDJSON[*datapoint.DataPoint](ctx, bytes.NewReader(got))
	points := datapoint.DataPoints(stream.Collect(ctx, decoded))
	if err := <-errs; err != nil {
		return nil, fmt.Errorf("decode session points: %w", err)
	}
	return points, nil
}

func (s *Session) WriteWind(degrees float64) error {
	return s.storeKV(keyWind, []byte(strconv.FormatFloat(degrees, 'f', -1, 64)))
}

// ReadWind returns the stored wind bearing, false if none is stored.
func (s *Session) ReadWind() (float64, bool, error) {
	got, err := s.readKV(keyWind)
	if err != nil || got == nil {
		return 0, false, err
	}
	wind, err := strconv.ParseFloat(string(got), 64)
	if err != nil {
		return 0, false, err
	}
	return wind, true, nil
}

func (s *Session) WriteComment(comment string) error {
	return s.storeKV(keyComment, []byte(comment))
}

func (s *Session) ReadComment() (string, error) {
	got, err := s.readKV(keyComment)
	return string(got), err
}

package events

import (
	"github.com/ethereum/go-ethereum/event"
	"github.com/rotblauer/sailtrack/types/datapoint"
)

// PointsPostedFeed is emitted for every batch of points pushed to the web daemon.
// The points are as received: decoded, but not cleaned nor time corrected.
// Subscribers must not modify them.
var PointsPostedFeed = event.FeedOf[datapoint.DataPoints]{}

package ws

import (
	"context"
	"log"

	"github.com/playmatatu/arcade/internal/session"
	"github.com/redis/go-redis/v9"
)

// StartFrameSubscriber subscribes to the sim_frames and session_closed channels and
// hands every message to the hub.
func StartFrameSubscriber(ctx context.Context, rdb *redis.Client, hub *Hub) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; frame subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, session.ChannelFrames, session.ChannelClosed)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Println("[WS] sim_frames/session_closed subscriber started")
		for {
			select {
			case <-ctx.Done():
				log.Println("[WS] frame subscriber stopping")
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				hub.Dispatch(msg.Channel, []byte(msg.Payload))
			}
		}
	}()
}

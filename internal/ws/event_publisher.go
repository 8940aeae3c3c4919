package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

const eventsChannel = "auth_events"

// AuthEventPublisher fans session events out over redis so every service
// instance's hub sees them, whichever instance holds the socket.
type AuthEventPublisher struct {
	rdb redis.UniversalClient
}

func NewAuthEventPublisher(rdb redis.UniversalClient) *AuthEventPublisher {
	return &AuthEventPublisher{rdb: rdb}
}

func (p *AuthEventPublisher) Publish(ctx context.Context, eventType, userID string, data interface{}) error {
	event := Message{
		Type:   eventType,
		UserID: userID,
		Data:   data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := p.rdb.Publish(ctx, eventsChannel, payload).Err(); err != nil {
		log.Printf("[WARN] failed to publish %s event for user %s: %v", eventType, userID, err)
		return err
	}

	return nil
}

// ListenAuthEvents pumps published events into the hub until ctx ends.
func ListenAuthEvents(ctx context.Context, rdb redis.UniversalClient, hub *Hub) {
	sub := rdb.Subscribe(ctx, eventsChannel)
	defer sub.Close()
	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event Message
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Println("Error parsing auth event:", err)
				continue
			}
			hub.Broadcast(event)
		}
	}
}

// Package routing resolves a validated event's destination topic and
// partition key. The category→topic table is built once at startup from
// configuration and is immutable afterwards, so lookups need no locking
// and adding a category is a configuration change, not a code change.
package routing

import "github.com/healthpulse/ingestion-gateway/internal/models"

// UnknownTopic is the reserved catch-all destination. A category with no
// mapping routes here rather than failing the request: availability over
// drop — downstream decides what to do with unclassified events.
const UnknownTopic = "health.unknown.raw"

// Router maps event categories to destination topics.
type Router struct {
	topics map[string]string
}

// NewRouter builds a router from a category→topic table. The table is
// copied; later mutation of the argument does not affect the router.
func NewRouter(topics map[string]string) *Router {
	m := make(map[string]string, len(topics))
	for category, topic := range topics {
		if topic == "" {
			continue
		}
		m[category] = topic
	}
	return &Router{topics: m}
}

// ResolveTopic returns the destination topic for a category. Total: an
// unmapped category is a routing decision (UnknownTopic), not an error.
func (r *Router) ResolveTopic(category string) string {
	if topic, ok := r.topics[category]; ok {
		return topic
	}
	return UnknownTopic
}

// PartitionKey returns the value Kafka uses to assign the event to a
// partition. Keying by user keeps all of one user's events in a topic on
// one partition, so consumers see them in submission order without any
// cross-user coordination.
func (r *Router) PartitionKey(event *models.HealthEvent) string {
	return event.UserID
}

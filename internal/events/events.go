// Package events hosts the process-wide event bus. The sync engine publishes
// progress synchronously between work items, so subscribers that render UI
// must use SubscribeAsync or the pass stalls.
package events

import "github.com/asaskevich/EventBus"

// Bus is the shared event bus for the whole application.
var Bus EventBus.Bus

func init() {
	Bus = EventBus.New()
}

// Topics published by the core.
const (
	// TopicSyncProgress carries a syncengine.Progress after every item.
	TopicSyncProgress = "sync:progress"

	// TopicSyncCompleted carries the final syncengine.Result of a pass.
	TopicSyncCompleted = "sync:completed"

	// TopicConfigChanged fires after any persisted mapping or config write.
	TopicConfigChanged = "config:changed"
)

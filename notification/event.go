package notification

// Event mirrors the engine event published on the notifications topic.
// An empty AccountID marks a broadcast event, for example a market-wide
// price move.
type Event struct {
	AccountID string
	Payload   string
}

package event

import "time"

// Type names a domain notification.
type Type string

const (
	TypeValueChanged Type = "stat.value_changed"
	TypeLevelChanged Type = "leveling.level_changed"
	TypeDamageTaken  Type = "combat.damage_taken"
	TypeHealed       Type = "combat.healed"
)

// Event is one notification raised by an entity.
// Subject names the stat or leveling track the event is about.
type Event struct {
	Type     Type      `json:"type"`
	EntityID string    `json:"entityId"`
	Subject  string    `json:"subject"`
	Time     time.Time `json:"time"`
	Payload  any       `json:"payload,omitempty"`
}

// ValueChanged is the payload of TypeValueChanged.
type ValueChanged struct {
	Previous  int    `json:"previous"`
	New       int    `json:"new"`
	Delta     int    `json:"delta"`
	Direction string `json:"direction"`
}

// LevelChanged is the payload of TypeLevelChanged.
type LevelChanged struct {
	Previous int `json:"previous"`
	New      int `json:"new"`
	Points   int `json:"points"`
}

// DamageTaken is the payload of TypeDamageTaken.
type DamageTaken struct {
	Incoming        int     `json:"incoming"`
	Final           int     `json:"final"`
	IncomingPercent float64 `json:"incomingPercent"`
	FinalPercent    float64 `json:"finalPercent"`
	Source          string  `json:"source,omitempty"`
}

// Healed is the payload of TypeHealed.
type Healed struct {
	Amount  int     `json:"amount"`
	Percent float64 `json:"percent"`
	Source  string  `json:"source,omitempty"`
}

package models

import (
	"time"

	json "github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventType classifies a TrackingEvent
type EventType string

const (
	EventTypePageview EventType = "pageview"
	EventTypeSession  EventType = "session"
	EventTypeClick    EventType = "click"
	EventTypeCustom   EventType = "custom"
	EventTypeExternal EventType = "external"
)

// ParseEventType maps a client supplied type, falling back to external
func ParseEventType(s string) EventType {
	switch t := EventType(s); t {
	case EventTypePageview, EventTypeSession, EventTypeClick, EventTypeCustom:
		return t
	}
	return EventTypeExternal
}

// MaxPayloadKeys bounds the top-level keys kept from a beacon payload
const MaxPayloadKeys = 3

// Payload is the small free-form object attached to a beacon
type Payload map[string]any

// NewPayload decodes raw into a Payload. It reports false when raw is not a
// JSON object or carries more than MaxPayloadKeys keys.
func NewPayload(raw []byte) (Payload, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil || p == nil {
		return nil, false
	}
	if len(p) > MaxPayloadKeys {
		return nil, false
	}
	return p, true
}

// TrackingEvent is one ingested beacon
type TrackingEvent struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	App          string             `bson:"app" json:"app"`
	User         string             `bson:"user" json:"user"`
	Event        string             `bson:"event" json:"event"`
	EventType    EventType          `bson:"eventType" json:"eventType"`
	Page         *PageData          `bson:"page,omitempty" json:"page,omitempty"`
	BrowsingData BrowsingData       `bson:"browsingData" json:"browsingData"`
	Referrer     string             `bson:"referrer,omitempty" json:"referrer,omitempty"`
	UTM          *UTM               `bson:"utm,omitempty" json:"utm,omitempty"`
	SessionID    string             `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
	CapturedAt   time.Time          `bson:"capturedAt" json:"capturedAt"`
	VisitedAt    *time.Time         `bson:"visitedAt,omitempty" json:"visitedAt,omitempty"`
	LeftAt       *time.Time         `bson:"leftAt,omitempty" json:"leftAt,omitempty"`
	Data         Payload            `bson:"data,omitempty" json:"data,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PageData describes the page a beacon was sent from
type PageData struct {
	Path     string            `bson:"path" json:"path"`
	Query    map[string]string `bson:"query,omitempty" json:"query,omitempty"`
	Hash     string            `bson:"hash,omitempty" json:"hash,omitempty"`
	Fullpath string            `bson:"fullpath" json:"fullpath"`
	Title    string            `bson:"title,omitempty" json:"title,omitempty"`
	Meta     map[string]string `bson:"meta,omitempty" json:"meta,omitempty"`
}

// UTM holds the recognised campaign parameters
type UTM struct {
	Source   string `bson:"source,omitempty" json:"source,omitempty"`
	Medium   string `bson:"medium,omitempty" json:"medium,omitempty"`
	Campaign string `bson:"campaign,omitempty" json:"campaign,omitempty"`
	Term     string `bson:"term,omitempty" json:"term,omitempty"`
	Content  string `bson:"content,omitempty" json:"content,omitempty"`
}

// Empty reports whether no parameter was present
func (u UTM) Empty() bool {
	return u == UTM{}
}

// BrowsingData is the client environment derived from headers and address
type BrowsingData struct {
	Browser  string   `bson:"browser,omitempty" json:"browser,omitempty"`
	OS       string   `bson:"os,omitempty" json:"os,omitempty"`
	Platform string   `bson:"platform,omitempty" json:"platform,omitempty"`
	Geo      *GeoData `bson:"geo,omitempty" json:"geo,omitempty"`
}

// GeoData is the city level location of a client address
type GeoData struct {
	City      string    `bson:"city,omitempty" json:"city,omitempty"`
	Country   Country   `bson:"country" json:"country"`
	Continent string    `bson:"continent,omitempty" json:"continent,omitempty"`
	Coords    *GeoPoint `bson:"coords,omitempty" json:"coords,omitempty"`
	Timezone  string    `bson:"timezone,omitempty" json:"timezone,omitempty"`
}

// Country names a country and its ISO code
type Country struct {
	Name string `bson:"name,omitempty" json:"name,omitempty"`
	Code string `bson:"code,omitempty" json:"code,omitempty"`
}

// GeoPoint is a GeoJSON point, coordinates ordered [lon, lat]
type GeoPoint struct {
	Type        string     `bson:"type" json:"type"`
	Coordinates [2]float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoPoint builds a point from latitude and longitude
func NewGeoPoint(lat, lon float64) *GeoPoint {
	return &GeoPoint{Type: "Point", Coordinates: [2]float64{lon, lat}}
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AppStatus is the lifecycle state of an App
type AppStatus string

const (
	AppStatusActive    AppStatus = "ACTIVE"
	AppStatusPaused    AppStatus = "PAUSED"
	AppStatusSuspended AppStatus = "SUSPENDED"
	AppStatusDeleted   AppStatus = "DELETED"
)

// appTransitions lists the states each status may move to. Soft delete by
// the owner bypasses this table.
var appTransitions = map[AppStatus][]AppStatus{
	AppStatusActive:    {AppStatusPaused, AppStatusSuspended, AppStatusDeleted},
	AppStatusPaused:    {AppStatusActive, AppStatusSuspended, AppStatusDeleted},
	AppStatusSuspended: {AppStatusActive, AppStatusDeleted},
	AppStatusDeleted:   {AppStatusActive},
}

// CanTransition reports whether s may move to next
func (s AppStatus) CanTransition(next AppStatus) bool {
	for _, to := range appTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

// SourcesFor returns every status allowed to move to next
func SourcesFor(next AppStatus) []AppStatus {
	var from []AppStatus
	for _, s := range []AppStatus{AppStatusActive, AppStatusPaused, AppStatusSuspended, AppStatusDeleted} {
		if s.CanTransition(next) {
			from = append(from, s)
		}
	}
	return from
}

// SelectorType tells the tracker how to interpret EventDefinition.Selector
type SelectorType string

const (
	SelectorTypeID        SelectorType = "id"
	SelectorTypeClass     SelectorType = "class"
	SelectorTypeAttribute SelectorType = "attribute"
	SelectorTypeText      SelectorType = "text"
	SelectorTypeSelector  SelectorType = "selector"
)

// Valid reports whether t is a known selector type
func (t SelectorType) Valid() bool {
	switch t {
	case SelectorTypeID, SelectorTypeClass, SelectorTypeAttribute, SelectorTypeText, SelectorTypeSelector:
		return true
	}
	return false
}

// App is a tracked website owned by one user
type App struct {
	ID        string            `bson:"_id" json:"id"`
	Owner     string            `bson:"owner,omitempty" json:"owner,omitempty"`
	Name      string            `bson:"name" json:"name"`
	Domain    string            `bson:"domain,omitempty" json:"domain,omitempty"`
	Status    AppStatus         `bson:"status" json:"status"`
	Events    []EventDefinition `bson:"events" json:"events"`
	CreatedAt time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// AppSummary is the listing view of an App
type AppSummary struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Domain    string    `bson:"domain,omitempty" json:"domain,omitempty"`
	Status    AppStatus `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// EventDefinition is a DOM interaction the tracker should report
type EventDefinition struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Event        string             `bson:"event" json:"event"`
	SelectorType SelectorType       `bson:"selectorType" json:"selector_type"`
	Selector     string             `bson:"selector" json:"selector"`
	Text         string             `bson:"text,omitempty" json:"text,omitempty"`
	Trigger      string             `bson:"trigger" json:"trigger"`
	Page         string             `bson:"page,omitempty" json:"page,omitempty"`
}

// AppPatch carries the supplied fields of an app update
type AppPatch struct {
	Name   *string
	Domain *string
}

// EventPatch carries the supplied fields of an event definition update
type EventPatch struct {
	Event        *string
	SelectorType *SelectorType
	Selector     *string
	Text         *string
	Trigger      *string
	Page         *string
}

// Empty reports whether no field is set
func (p EventPatch) Empty() bool {
	return p.Event == nil && p.SelectorType == nil && p.Selector == nil &&
		p.Text == nil && p.Trigger == nil && p.Page == nil
}

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ActivityDetails is the JSON payload the activities API returns for one activity.
type ActivityDetails struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// Activity is a named event with a schedule, a capacity and a roster of emails.
type Activity struct {
	Name string
	ActivityDetails
}

// SpotsLeft reports capacity minus the current roster size. It may be negative
// when the server hands back an over-full roster.
func (a Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

// Activities keeps activities in the order the API listed them.
type Activities []Activity

// UnmarshalJSON decodes the name → details object while keeping document order.
func (as *Activities) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("activities: expected object, got %v", tok)
	}

	out := Activities{}
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("activities: expected name, got %v", tok)
		}
		var details ActivityDetails
		if err := dec.Decode(&details); err != nil {
			return fmt.Errorf("activities: decode %q: %w", name, err)
		}
		if details.Participants == nil {
			details.Participants = []string{}
		}
		// Duplicate keys keep the first position and the last value, like a JS object.
		if idx, dup := seen[name]; dup {
			out[idx].ActivityDetails = details
			continue
		}
		seen[name] = len(out)
		out = append(out, Activity{Name: name, ActivityDetails: details})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*as = out
	return nil
}

// MessageResponse is the success body of signup and unregister calls.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the failure body of the activities API. Detail is usually a
// string; validation failures send a list.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// Package memory forwards archived session content to the external memory
// service as a knowledge-graph entity.
//
// The service is a command-line program invoked as
//
//	mcp-cli call memory/create_entities '{"entities":[{"name":…,"entityType":…,"observations":[…]}]}'
//
// and succeeds iff it exits with status 0.
package memory

import (
	"encoding/json"
	"fmt"

	"github.com/ctxarchive/ctxarchive/internal/extract"
	"github.com/ctxarchive/ctxarchive/internal/shared/stringutils"
)

const (
	entityType = "session"

	stateLen      = 200
	itemLen       = 100
	maxDecisions  = 5
	maxLessons    = 3
	nameStampFmt  = "20060102-1504"
	fallbackState = "Working session"
)

// Entity is one knowledge-graph node.
type Entity struct {
	Name         string   `json:"name"`
	EntityType   string   `json:"entityType"`
	Observations []string `json:"observations"`
}

// Payload is the JSON argument of the create-entities call.
type Payload struct {
	Entities []Entity `json:"entities"`
}

// EntityName returns the key used for a session archived at res.Timestamp.
func EntityName(project string, res extract.Result) string {
	return fmt.Sprintf("session:%s:%s", project, res.Timestamp.Format(nameStampFmt))
}

// BuildEntity converts res into a session entity. At most five decisions and
// three lessons are kept.
func BuildEntity(res extract.Result, project string) Entity {
	state := "State: " + fallbackState
	if res.CurrentState != "" {
		state = "State: " + stringutils.Head(res.CurrentState, stateLen)
	}

	obs := []string{
		"Archived: " + res.ISOTimestamp(),
		state,
	}
	for i, d := range res.Decisions {
		if i == maxDecisions {
			break
		}
		obs = append(obs, "Decision: "+stringutils.Head(d, itemLen))
	}
	for i, l := range res.Lessons {
		if i == maxLessons {
			break
		}
		obs = append(obs, "Lesson: "+stringutils.Head(l, itemLen))
	}

	return Entity{
		Name:         EntityName(project, res),
		EntityType:   entityType,
		Observations: obs,
	}
}

// Encode serializes entities as the create-entities argument.
func Encode(entities ...Entity) (string, error) {
	data, err := json.Marshal(Payload{Entities: entities})
	if err != nil {
		return "", fmt.Errorf("marshal entities: %w", err)
	}
	return string(data), nil
}

package agent

import (
	"fmt"
	"strings"
	"time"
)

// ContentOf unwraps a message to its text. A nil message yields "".
func ContentOf(m Message) string {
	if m == nil {
		return ""
	}
	return m.GetContent()
}

// Lookup is a deferred read of one state channel, resolved by the agent
// contract when the agent actually runs.
type Lookup struct {
	Key Key
	All bool
}

// Latest reads the most recent entry of key.
func Latest(key Key) Lookup {
	return Lookup{Key: key}
}

// History reads every entry of key, oldest first.
func History(key Key) Lookup {
	return Lookup{Key: key, All: true}
}

// Resolve renders the lookup against s as prompt text.
func (l Lookup) Resolve(s State) string {
	if !l.All {
		msg, _ := s.Latest(l.Key)
		return ContentOf(msg)
	}
	history := s.Get(l.Key)
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	for i, msg := range history {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, ContentOf(msg))
	}
	return b.String()
}

// GetResearchTopic returns the content of the most recent human message.
func GetResearchTopic(messages []Message) (string, error) {
	for i := len(messages) - 1; i >= 0; i-- {
		if m, ok := messages[i].(HumanMessage); ok {
			return m.Content, nil
		}
	}
	return "", ErrNoUserTurn
}

// GetCurrentDate formats now in UTC as "YYYY-MM-DD HH:MM:SS UTC".
func GetCurrentDate(now time.Time) string {
	return now.UTC().Format("2006-01-02 15:04:05 MST")
}

// internal/domain/sunset/content.go
package sunset

import (
	"fmt"
	"strconv"
)

// NotificationTypeBasic is the only notification category the scheduler produces.
const NotificationTypeBasic = "basic"

// DefaultIcon is shown next to every notification unless configured otherwise.
const DefaultIcon = "icon128.png"

// Notification is what gets handed to a Notifier.
type Notification struct {
	ID      string // Stage index as a decimal string
	IconURL string
	Type    string
	Title   string
	Message string
}

// Stage holds the text of one notification.
type Stage struct {
	Title   string
	Message string
}

// Content maps stages to what the user sees. The timeline decides when, Content decides what.
type Content struct {
	Icon   string
	Stages []Stage // Indexed by stage; the terminal stage needs no entry
}

// DefaultContent returns generic wording for a timeline with the given number of stages.
func DefaultContent(stages int) Content {
	c := Content{Icon: DefaultIcon}
	shown := stages - 1
	for i := 0; i < shown; i++ {
		remaining := shown - i
		var msg string
		if remaining == 1 {
			msg = "This extension is no longer supported and will be removed soon. Please switch to its replacement now."
		} else {
			msg = fmt.Sprintf("This extension is being retired. You will receive %d more reminders before it is removed.", remaining-1)
		}
		c.Stages = append(c.Stages, Stage{
			Title:   "This extension is being retired",
			Message: msg,
		})
	}
	return c
}

// Notification builds the notification for stage. Stages without configured text fall back
// to the last configured entry so a longer timeline still gets a message.
func (c Content) Notification(stage int) Notification {
	n := Notification{
		ID:      strconv.Itoa(stage),
		IconURL: c.Icon,
		Type:    NotificationTypeBasic,
	}
	switch {
	case stage >= 0 && stage < len(c.Stages):
		n.Title, n.Message = c.Stages[stage].Title, c.Stages[stage].Message
	case len(c.Stages) > 0:
		last := c.Stages[len(c.Stages)-1]
		n.Title, n.Message = last.Title, last.Message
	}
	return n
}

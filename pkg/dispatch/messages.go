package dispatch

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Message is a notification template. Bodies may reference variables with
// {name} placeholders.
type Message struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

// Catalog maps event keys to message templates.
type Catalog struct {
	messages map[string]Message
}

// defaultMessages is the built-in catalog; a user-supplied YAML file can
// override individual entries.
const defaultMessages = `
budget_warning:
  title: "Budget warning"
  body: "You've used {percent}% of your {category} budget. {remaining} left this month."
budget_critical:
  title: "Budget almost gone"
  body: "{category} is at {percent}% of its budget. Only {remaining} remaining."
budget_exceeded:
  title: "Budget exceeded"
  body: "You've gone over your {category} budget ({percent}%). {remaining} remaining."
budget_info:
  title: "Budget update"
  body: "{category} spending is at {percent}% with {remaining} to go."
saving_goal_progress:
  title: "Savings milestone reached"
  body: "{name} is {milestone}% of the way to your target. Keep going!"
saving_goal_completed:
  title: "Goal completed!"
  body: "Congratulations! You reached {name}: {target} saved."
goal_motivation_7:
  title: "Time to save"
  body: "{name} hasn't grown in {days} days. A small top-up keeps the habit alive."
goal_motivation_14:
  title: "Remember your target"
  body: "It's been {days} days since you added to {name}. Your target is waiting."
goal_motivation_30:
  title: "Don't give up"
  body: "{name} has been quiet for {days} days. Every bit counts - start again today."
transaction_reminder:
  title: "Record today's spending"
  body: "You haven't recorded any transactions today. Take a minute to log them."
weekly_summary:
  title: "Your week in review"
  body: "You recorded {count} transactions totalling {total} this week."
challenge_reminder:
  title: "Challenge check-in"
  body: "{name} ends in {days} days. Stay on track!"
challenge_completed:
  title: "Challenge completed!"
  body: "You finished {name}. {reward} added to your savings."
account_update:
  title: "Account updated"
  body: "Your {action} was saved successfully."
`

// DefaultCatalog returns the built-in message catalog.
func DefaultCatalog() *Catalog {
	c, err := parseCatalog([]byte(defaultMessages))
	if err != nil {
		// The embedded catalog is compile-time constant; a parse failure is a bug.
		panic(fmt.Sprintf("dispatch: invalid built-in catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a YAML catalog file and overlays it on the defaults, so
// a file only needs to list the messages it changes.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read message catalog: %w", err)
	}

	overlay, err := parseCatalog(data)
	if err != nil {
		return nil, err
	}

	c := DefaultCatalog()
	for key, msg := range overlay.messages {
		c.messages[key] = msg
	}
	return c, nil
}

func parseCatalog(data []byte) (*Catalog, error) {
	var raw map[string]Message
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse message catalog: %w", err)
	}
	return &Catalog{messages: raw}, nil
}

// Render formats the message for key, substituting {name} placeholders from
// vars. ok is false when the key is unknown.
func (c *Catalog) Render(key string, vars map[string]string) (title, body string, ok bool) {
	msg, ok := c.messages[key]
	if !ok {
		return "", "", false
	}

	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", value)
	}
	r := strings.NewReplacer(pairs...)
	return r.Replace(msg.Title), r.Replace(msg.Body), true
}

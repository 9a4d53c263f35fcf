// Package domain holds the entity shapes the statistics engine reads.
// Date-bearing fields are kept as the strings the host supplies (ISO
// datetimes or YYYY-MM-DD keys); they are parsed through package datekey.
package domain

type Task struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Priority      int     `json:"priority"` // 1-5
	Deadline      string  `json:"deadline,omitempty"`
	EstimatedTime float64 `json:"estimatedTime"` // minutes
	Completed     bool    `json:"completed"`
	CompletedAt   string  `json:"completedAt,omitempty"`
}

type Event struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
	Color string `json:"color"` // category key
}

type Habit struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	EstimatedTime float64         `json:"estimatedTime"` // minutes per completion
	Completions   map[string]bool `json:"completions"`   // local date key -> done
	CreatedAt     string          `json:"createdAt"`
}

type HistoryEntry struct {
	Date      string  `json:"date"` // local date key
	Increment float64 `json:"increment"`
}

type KeyResult struct {
	ID            string         `json:"id"`
	Title         string         `json:"title,omitempty"`
	EstimatedTime float64        `json:"estimatedTime"` // minutes per unit increment
	History       []HistoryEntry `json:"history"`
}

type Objective struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	KeyResults []KeyResult `json:"keyResults"`
}

// Collections is the read-only snapshot handed to every computation.
type Collections struct {
	Tasks  []Task      `json:"tasks"`
	Events []Event     `json:"events"`
	Habits []Habit     `json:"habits"`
	OKRs   []Objective `json:"okrs"`
}

// Empty reports whether the snapshot holds no entities at all.
func (c Collections) Empty() bool {
	return len(c.Tasks) == 0 && len(c.Events) == 0 && len(c.Habits) == 0 && len(c.OKRs) == 0
}

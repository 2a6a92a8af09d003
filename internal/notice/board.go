package notice

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/IRT-SystemX/bcm-notifier/notifier"
)

const (
	DefaultTTL      = 5 * time.Second
	DefaultCapacity = 300
)

type Level string

const (
	Info  Level = "info"
	Error Level = "error"
)

type Notice struct {
	ID          string    `json:"id"`
	Level       Level     `json:"level"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Created     time.Time `json:"created"`
	Expires     time.Time `json:"expires"`
}

// Board keeps the short-lived notices shown to the user. Older entries are
// dropped once the capacity is reached.
type Board struct {
	mux      sync.Mutex
	ttl      time.Duration
	capacity int
	now      func() time.Time
	notices  []Notice
}

func NewBoard(ttl time.Duration, capacity int) *Board {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Board{ttl: ttl, capacity: capacity, now: time.Now}
}

func (board *Board) Push(level Level, title string, description string) Notice {
	board.mux.Lock()
	defer board.mux.Unlock()
	now := board.now()
	item := Notice{
		ID:          uuid.NewString(),
		Level:       level,
		Title:       title,
		Description: description,
		Created:     now,
		Expires:     now.Add(board.ttl),
	}
	board.notices = append(board.notices, item)
	if len(board.notices) > board.capacity {
		board.notices = append([]Notice(nil), board.notices[len(board.notices)-board.capacity:]...)
	}
	return item
}

// Active returns the notices that have not expired yet, oldest first.
func (board *Board) Active() []Notice {
	board.mux.Lock()
	defer board.mux.Unlock()
	now := board.now()
	active := make([]Notice, 0, len(board.notices))
	for _, item := range board.notices {
		if now.Before(item.Expires) {
			active = append(active, item)
		}
	}
	return active
}

func (board *Board) Len() int {
	board.mux.Lock()
	defer board.mux.Unlock()
	return len(board.notices)
}

func (board *Board) Observe(event notifier.Event) {
	switch event.Type {
	case notifier.EventEmitting:
		board.Push(Info, "New block", event.Value.String())
	case notifier.EventFetchFailed:
		board.Push(Error, "Failed to fetch latest block", "")
	case notifier.EventDeliveryFailed:
		description := ""
		if event.Err != nil {
			description = event.Err.Error()
		}
		board.Push(Error, "Failed to send new block notification", description)
	}
}

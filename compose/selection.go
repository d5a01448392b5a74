package compose

import (
	"fmt"
	"slices"
	"sync"

	"github.com/poiesic/answerdesk/core"
	"github.com/poiesic/answerdesk/notify"
)

// Slot names a position in a Selection.
type Slot string

const (
	SlotS1 Slot = "S1"
	SlotS2 Slot = "S2"
	SlotS3 Slot = "S3"
)

// Slots lists the slots in assembly order.
var Slots = []Slot{SlotS1, SlotS2, SlotS3}

// Valid reports whether s is one of Slots.
func (s Slot) Valid() bool {
	return slices.Contains(Slots, s)
}

// ParseSlot converts a slot name such as "S2".
func ParseSlot(name string) (Slot, error) {
	s := Slot(name)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSlot, name)
	}
	return s, nil
}

// Entry is the answer held in a slot.
type Entry struct {
	ID   int64
	Code string
	Text string
}

// EntryFromRecord builds a slot entry from a record and its rendered text.
func EntryFromRecord(rec *core.AnswerRecord, text string) Entry {
	return Entry{ID: rec.ID, Code: rec.Code, Text: text}
}

// Selection holds the caseworker's chosen answers. It lives only in memory.
// Every change publishes the affected slot on Events.
type Selection struct {
	mu     sync.RWMutex
	slots  map[Slot]Entry
	events *notify.Broadcaster[Slot]
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{
		slots:  make(map[Slot]Entry, len(Slots)),
		events: notify.New[Slot](notify.DefaultBuffer),
	}
}

// Events returns a subscription to slot changes.
func (s *Selection) Events() (<-chan Slot, func()) {
	return s.events.Subscribe()
}

// Set stores entry in slot, replacing any previous entry.
func (s *Selection) Set(slot Slot, entry Entry) error {
	if !slot.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	s.mu.Lock()
	s.slots[slot] = entry
	s.mu.Unlock()
	s.events.Publish(slot)
	return nil
}

// Get returns the entry in slot.
func (s *Selection) Get(slot Slot) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.slots[slot]
	return entry, ok
}

// Has reports whether slot holds an entry.
func (s *Selection) Has(slot Slot) bool {
	_, ok := s.Get(slot)
	return ok
}

// Clear empties slot. Unknown slots are ignored.
func (s *Selection) Clear(slot Slot) {
	if !slot.Valid() {
		return
	}
	s.mu.Lock()
	delete(s.slots, slot)
	s.mu.Unlock()
	s.events.Publish(slot)
}

// ClearAll empties every slot, publishing one event per slot.
func (s *Selection) ClearAll() {
	s.mu.Lock()
	clear(s.slots)
	s.mu.Unlock()
	for _, slot := range Slots {
		s.events.Publish(slot)
	}
}

// Texts returns the text of each filled slot in slot order.
func (s *Selection) Texts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	texts := make([]string, 0, len(Slots))
	for _, slot := range Slots {
		if entry, ok := s.slots[slot]; ok {
			texts = append(texts, entry.Text)
		}
	}
	return texts
}

// Close ends all event subscriptions.
func (s *Selection) Close() {
	s.events.Close()
}

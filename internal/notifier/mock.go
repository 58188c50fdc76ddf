package notifier

import (
	"sync"

	"github.com/mauv0809/academy-stats/internal/records"
	"github.com/mauv0809/academy-stats/internal/summary"
)

var _ Notifier = &Mock{}

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendMatchRecordedCalls []SendMatchRecordedCall
	PlayerSummaryCalls     []summary.Card
	PlayerNotFoundCalls    []string

	// Spies
	SendMatchRecordedFunc            func(card summary.Card, rec records.MatchRecord, dryRun bool) error
	FormatPlayerSummaryResponseFunc  func(card summary.Card) (any, error)
	FormatPlayerNotFoundResponseFunc func(query string) (any, error)
}

// SendMatchRecordedCall holds the arguments for a call to SendMatchRecorded.
type SendMatchRecordedCall struct {
	Card   summary.Card
	Record records.MatchRecord
	DryRun bool
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchRecordedCalls = nil
	m.PlayerSummaryCalls = nil
	m.PlayerNotFoundCalls = nil
}

func (m *Mock) SendMatchRecorded(card summary.Card, rec records.MatchRecord, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchRecordedCalls = append(m.SendMatchRecordedCalls, SendMatchRecordedCall{Card: card, Record: rec, DryRun: dryRun})
	if m.SendMatchRecordedFunc != nil {
		return m.SendMatchRecordedFunc(card, rec, dryRun)
	}
	return nil
}

func (m *Mock) FormatPlayerSummaryResponse(card summary.Card) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlayerSummaryCalls = append(m.PlayerSummaryCalls, card)
	if m.FormatPlayerSummaryResponseFunc != nil {
		return m.FormatPlayerSummaryResponseFunc(card)
	}
	return map[string]string{"text": card.Player}, nil
}

func (m *Mock) FormatPlayerNotFoundResponse(query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlayerNotFoundCalls = append(m.PlayerNotFoundCalls, query)
	if m.FormatPlayerNotFoundResponseFunc != nil {
		return m.FormatPlayerNotFoundResponseFunc(query)
	}
	return map[string]string{"text": "not found: " + query}, nil
}

// SentCount returns the number of SendMatchRecorded calls.
func (m *Mock) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SendMatchRecordedCalls)
}

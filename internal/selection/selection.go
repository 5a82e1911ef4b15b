// Package selection tracks the outbound and return rows chosen in one
// search session.
package selection

import (
	"errors"
	"strings"
	"sync"

	"github.com/rLg1290/7crm-sub003/internal/models"
)

var (
	ErrOutboundRequired = errors.New("select an outbound flight before choosing the return")
	ErrAirlineMismatch  = errors.New("return flight must be on the same airline as the outbound")
)

type State struct {
	Outbound *models.PricedLine `json:"outbound"`
	Return   *models.PricedLine `json:"return"`
}

type Machine struct {
	mu       sync.Mutex
	outbound *models.PricedLine
	ret      *models.PricedLine
}

func New() *Machine {
	return &Machine{}
}

// SelectOutbound toggles the outbound slot. Choosing the selected line
// again clears both slots; switching to another airline drops the return.
func (m *Machine) SelectOutbound(line models.PricedLine) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.outbound != nil && m.outbound.ID == line.ID {
		m.outbound = nil
		m.ret = nil
		return m.snapshot()
	}

	m.outbound = &line
	if m.ret != nil && !strings.EqualFold(m.ret.Airline, line.Airline) {
		m.ret = nil
	}
	return m.snapshot()
}

// SelectReturn toggles the return slot. It is a no-op returning an error
// when no outbound is selected or the airlines differ.
func (m *Machine) SelectReturn(line models.PricedLine) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.outbound == nil {
		return m.snapshot(), ErrOutboundRequired
	}
	if m.ret != nil && m.ret.ID == line.ID {
		m.ret = nil
		return m.snapshot(), nil
	}
	if !strings.EqualFold(m.outbound.Airline, line.Airline) {
		return m.snapshot(), ErrAirlineMismatch
	}

	m.ret = &line
	return m.snapshot(), nil
}

func (m *Machine) Reset() {
	m.mu.Lock()
	m.outbound = nil
	m.ret = nil
	m.mu.Unlock()
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *Machine) snapshot() State {
	var s State
	if m.outbound != nil {
		o := *m.outbound
		s.Outbound = &o
	}
	if m.ret != nil {
		r := *m.ret
		s.Return = &r
	}
	return s
}

package services

import "sync"

// Ticket identifies one message request for a customer.
type Ticket struct {
	CustomerID string
	seq        uint64
}

// MessageDesk remembers the latest request per customer. A request started
// later supersedes earlier ones; superseded results are reported as stale.
type MessageDesk struct {
	mu     sync.Mutex
	seq    uint64
	latest map[string]uint64
}

func NewMessageDesk() *MessageDesk {
	return &MessageDesk{latest: make(map[string]uint64)}
}

// Begin starts a request and supersedes any earlier one for the customer.
func (d *MessageDesk) Begin(customerID string) Ticket {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	d.latest[customerID] = d.seq
	return Ticket{CustomerID: customerID, seq: d.seq}
}

// Current reports whether t is still the latest request for its customer.
func (d *MessageDesk) Current(t Ticket) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest[t.CustomerID] == t.seq
}

// Finish ends t and reports whether its result should be used.
func (d *MessageDesk) Finish(t Ticket) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.latest[t.CustomerID] != t.seq {
		return false
	}
	delete(d.latest, t.CustomerID)
	return true
}

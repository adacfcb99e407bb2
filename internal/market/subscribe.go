package market

// Subscribe registers a change listener. The channel is buffered with the
// given size; when it is full newer changes are dropped for that listener,
// which can always re-read Version. Call the returned func to unsubscribe.
func (s *Store) Subscribe(buffer int) (<-chan Change, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Change, buffer)

	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subsMu.Unlock()

	var once bool
	cancel := func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		if once {
			return
		}
		once = true
		delete(s.subs, id)
		close(ch)
	}
	return ch, cancel
}

// notify fans a change out without blocking the writer.
func (s *Store) notify(c Change) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

package tween

// Scheduler advances timelines on the frame thread. It is not safe for
// concurrent use: every call must come from the goroutine that runs frames.
type Scheduler struct {
	active []*Timeline
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Play captures the timeline's start values and schedules it.
func (s *Scheduler) Play(tl *Timeline) *Timeline {
	if tl == nil || tl.state != StateIdle {
		return tl
	}
	tl.start()
	s.active = append(s.active, tl)
	return tl
}

// Advance moves every active timeline forward by dt seconds, in the order
// they were played, and drops the ones that finished or were cancelled.
func (s *Scheduler) Advance(dt float32) {
	if len(s.active) == 0 {
		return
	}
	// callbacks may Play new timelines while we iterate
	current := make([]*Timeline, len(s.active))
	copy(current, s.active)

	for _, tl := range current {
		tl.advance(dt)
	}

	kept := s.active[:0]
	for _, tl := range s.active {
		if tl.state == StateTweening {
			kept = append(kept, tl)
		}
	}
	for i := len(kept); i < len(s.active); i++ {
		s.active[i] = nil
	}
	s.active = kept
}

// Cancel stops tl and removes it from the schedule.
func (s *Scheduler) Cancel(tl *Timeline) {
	if tl == nil {
		return
	}
	tl.Cancel()
	for i, t := range s.active {
		if t == tl {
			s.active = append(s.active[:i], s.active[i+1:]...)
			return
		}
	}
}

// CancelAll stops every scheduled timeline.
func (s *Scheduler) CancelAll() {
	for _, tl := range s.active {
		tl.Cancel()
	}
	s.active = nil
}

// Len returns the number of active timelines.
func (s *Scheduler) Len() int {
	return len(s.active)
}

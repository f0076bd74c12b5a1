// Package tracker keeps the last known position snapshot of a session and
// derives overtakes from consecutive snapshots.
//
// A State is never mutated: Update returns the next State, so the caller can
// keep the previous one when a snapshot is rejected.
package tracker

import (
	"f1livebot/pkg/model"
)

type State struct {
	SessionKey int
	Previous   model.Snapshot
	Current    model.Snapshot
	Overtakes  []model.OvertakeEvent
}

func New(sessionKey int) State {
	return State{SessionKey: sessionKey}
}

// Update validates the snapshot, detects overtakes against the current one and
// returns the next state along with the overtakes detected on this update.
func (s State) Update(snapshot model.Snapshot) (State, []model.OvertakeEvent, error) {
	if err := snapshot.Validate(); err != nil {
		return s, nil, err
	}

	detected := detectOvertakes(s.Current, snapshot)

	overtakes := make([]model.OvertakeEvent, 0, len(s.Overtakes)+len(detected))
	overtakes = append(overtakes, s.Overtakes...)
	overtakes = append(overtakes, detected...)

	return State{
		SessionKey: s.SessionKey,
		Previous:   s.Current,
		Current:    snapshot.Sorted(),
		Overtakes:  overtakes,
	}, detected, nil
}

// detectOvertakes compares every position slot of next against prev. Each slot
// is evaluated against prev only, so simultaneous swaps are not cascaded.
// Both snapshots must already be validated.
func detectOvertakes(prev, next model.Snapshot) []model.OvertakeEvent {
	if len(prev) == 0 {
		return nil
	}

	oldPositions := prev.Positions()
	newPositions := next.Positions()
	oldBySlot := make(map[int]model.PositionRecord, len(prev))
	for _, r := range prev {
		oldBySlot[r.Position] = r
	}

	overtakes := []model.OvertakeEvent{}
	for _, r := range next.Sorted() {
		old, found := oldBySlot[r.Position]
		if !found || old.DriverNumber == r.DriverNumber {
			continue
		}
		oldPosition, found := oldPositions[r.DriverNumber]
		if !found {
			// entered mid-session
			continue
		}
		if _, found := newPositions[old.DriverNumber]; !found {
			// previous occupant left the snapshot (retired or dropped)
			continue
		}
		if oldPosition > r.Position {
			overtakes = append(overtakes, model.OvertakeEvent{
				Date:       r.Date,
				Position:   r.Position,
				Overtaking: *r.Driver,
				Overtaken:  *old.Driver,
			})
		}
	}
	return overtakes
}

package model

import (
	"fmt"
	"sort"
	"time"
)

type Driver struct {
	Number    int    `json:"driverNumber"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ShortCode string `json:"shortCode"`
	TeamName  string `json:"teamName,omitempty"`
}

func (d Driver) FullName() string {
	return fmt.Sprintf("%s %s", d.FirstName, d.LastName)
}

type PositionRecord struct {
	DriverNumber int       `json:"driverNumber"`
	Position     int       `json:"position"`
	Date         time.Time `json:"date"`
	Driver       *Driver   `json:"driver,omitempty"`
}

// Snapshot is the set of driver positions at one fetch instant, one record per driver.
type Snapshot []PositionRecord

// Sorted returns a copy of the snapshot ordered by position ascending.
func (s Snapshot) Sorted() Snapshot {
	sorted := make(Snapshot, len(s))
	copy(sorted, s)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})
	return sorted
}

// Positions maps driver number to position.
func (s Snapshot) Positions() map[int]int {
	positions := make(map[int]int, len(s))
	for _, r := range s {
		positions[r.DriverNumber] = r.Position
	}
	return positions
}

// Validate checks the driver references and the uniqueness of positions.
func (s Snapshot) Validate() error {
	seenPositions := map[int]int{}
	seenDrivers := map[int]bool{}
	for _, r := range s {
		if r.Driver == nil {
			return NewDataError("position record for driver %d has no driver reference", r.DriverNumber)
		}
		if r.Driver.Number != r.DriverNumber {
			return NewDataError("position record for driver %d references driver %d", r.DriverNumber, r.Driver.Number)
		}
		if r.Position < 1 {
			return NewConsistencyError("driver %d has invalid position %d", r.DriverNumber, r.Position)
		}
		if other, found := seenPositions[r.Position]; found {
			return NewConsistencyError("position %d held by drivers %d and %d", r.Position, other, r.DriverNumber)
		}
		if seenDrivers[r.DriverNumber] {
			return NewConsistencyError("driver %d appears twice in snapshot", r.DriverNumber)
		}
		seenPositions[r.Position] = r.DriverNumber
		seenDrivers[r.DriverNumber] = true
	}
	return nil
}

type OvertakeEvent struct {
	Date       time.Time `json:"date"`
	Position   int       `json:"position"`
	Overtaking Driver    `json:"overtaking"`
	Overtaken  Driver    `json:"overtaken"`
}

type Session struct {
	Key        int       `json:"sessionKey"`
	MeetingKey int       `json:"meetingKey"`
	Name       string    `json:"sessionName"`
	Type       string    `json:"sessionType"`
	Start      time.Time `json:"dateStart"`
	End        time.Time `json:"dateEnd"`
}

// Ended reports whether the session end is before t.
func (s Session) Ended(t time.Time) bool {
	return !s.End.IsZero() && t.After(s.End)
}

func (s Session) String() string {
	return fmt.Sprintf("  ▸ Session: %s (%s)\n  ▸ Start: %s", s.Name, s.Type, s.Start.UTC().Format("2006-01-02 15:04 MST"))
}

type Meeting struct {
	Key          int    `json:"meetingKey"`
	OfficialName string `json:"meetingOfficialName"`
	Name         string `json:"meetingName"`
	Location     string `json:"location"`
}

// LiveLeaderboard is the payload published to live feed subscribers after each tick.
type LiveLeaderboard struct {
	Tick      string          `json:"tick"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Session   Session         `json:"session"`
	Meeting   Meeting         `json:"meeting"`
	Positions Snapshot        `json:"positions"`
	Overtakes []OvertakeEvent `json:"overtakes"`
	Text      string          `json:"text"`
}

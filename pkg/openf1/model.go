package openf1

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"f1livebot/pkg/model"
)

// apiTime accepts the timestamp shapes OpenF1 serves: RFC 3339 with optional
// fraction, or a bare local timestamp which is taken as UTC. null stays zero.
type apiTime struct {
	time.Time
}

var apiTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func (t *apiTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var lastErr error
	for _, layout := range apiTimeLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed.UTC()
			return nil
		}
		lastErr = err
	}
	return lastErr
}

type apiSession struct {
	SessionKey  *int    `json:"session_key"`
	MeetingKey  *int    `json:"meeting_key"`
	SessionName string  `json:"session_name"`
	SessionType string  `json:"session_type"`
	DateStart   apiTime `json:"date_start"`
	DateEnd     apiTime `json:"date_end"`
}

func (s apiSession) toModel() (model.Session, error) {
	if s.SessionKey == nil {
		return model.Session{}, model.NewDataError("session without session_key")
	}
	if s.MeetingKey == nil {
		return model.Session{}, model.NewDataError("session %d without meeting_key", *s.SessionKey)
	}
	if s.SessionName == "" {
		return model.Session{}, model.NewDataError("session %d without session_name", *s.SessionKey)
	}
	return model.Session{
		Key:        *s.SessionKey,
		MeetingKey: *s.MeetingKey,
		Name:       s.SessionName,
		Type:       s.SessionType,
		Start:      s.DateStart.Time,
		End:        s.DateEnd.Time,
	}, nil
}

type apiMeeting struct {
	MeetingKey          *int   `json:"meeting_key"`
	MeetingOfficialName string `json:"meeting_official_name"`
	MeetingName         string `json:"meeting_name"`
	Location            string `json:"location"`
}

func (m apiMeeting) toModel() (model.Meeting, error) {
	if m.MeetingKey == nil {
		return model.Meeting{}, model.NewDataError("meeting without meeting_key")
	}
	if m.MeetingOfficialName == "" {
		return model.Meeting{}, model.NewDataError("meeting %d without meeting_official_name", *m.MeetingKey)
	}
	return model.Meeting{
		Key:          *m.MeetingKey,
		OfficialName: m.MeetingOfficialName,
		Name:         m.MeetingName,
		Location:     m.Location,
	}, nil
}

type apiDriver struct {
	DriverNumber *int   `json:"driver_number"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	NameAcronym  string `json:"name_acronym"`
	TeamName     string `json:"team_name"`
}

func (d apiDriver) toModel() (model.Driver, error) {
	if d.DriverNumber == nil {
		return model.Driver{}, model.NewDataError("driver without driver_number")
	}
	if d.FirstName == "" && d.LastName == "" {
		return model.Driver{}, model.NewDataError("driver %d without name", *d.DriverNumber)
	}
	return model.Driver{
		Number:    *d.DriverNumber,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		ShortCode: d.NameAcronym,
		TeamName:  d.TeamName,
	}, nil
}

type apiPosition struct {
	Date         apiTime `json:"date"`
	DriverNumber *int    `json:"driver_number"`
	Position     *int    `json:"position"`
}

func (p apiPosition) toModel() (model.PositionRecord, error) {
	if p.DriverNumber == nil {
		return model.PositionRecord{}, model.NewDataError("position without driver_number")
	}
	if p.Position == nil {
		return model.PositionRecord{}, model.NewDataError("position for driver %d without position", *p.DriverNumber)
	}
	if p.Date.IsZero() {
		return model.PositionRecord{}, model.NewDataError("position for driver %d without date", *p.DriverNumber)
	}
	return model.PositionRecord{
		DriverNumber: *p.DriverNumber,
		Position:     *p.Position,
		Date:         p.Date.Time,
	}, nil
}

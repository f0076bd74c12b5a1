package caster

import (
	"strings"
	"testing"
	"time"

	"f1livebot/pkg/model"
)

func TestLiveLeaderboardPayload(t *testing.T) {
	c := JSONChannelCaster[model.LiveLeaderboard]{}
	ham := &model.Driver{Number: 44, FirstName: "Lewis", LastName: "Hamilton"}
	lb := model.LiveLeaderboard{
		Tick:      "t-1",
		UpdatedAt: time.Date(2024, 5, 26, 13, 5, 0, 0, time.UTC),
		Session:   model.Session{Key: 9523, Name: "Race"},
		Positions: model.Snapshot{{DriverNumber: 44, Position: 1, Driver: ham}},
		Text:      "🥇Lewis Hamilton (44)",
	}

	payload, err := c.To(lb)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(payload, `"sessionKey":9523`) || !strings.Contains(payload, `"lastName":"Hamilton"`) {
		t.Errorf("payload = %s", payload)
	}

	back, err := c.From(payload)
	if err != nil {
		t.Fatal(err)
	}
	if back.Tick != lb.Tick || back.Positions[0].Driver.LastName != "Hamilton" || !back.UpdatedAt.Equal(lb.UpdatedAt) {
		t.Errorf("decoded = %+v", back)
	}
}

func TestFromInvalid(t *testing.T) {
	_, err := JSONChannelCaster[model.LiveLeaderboard]{}.From("{")
	if err == nil || !strings.Contains(err.Error(), "model.LiveLeaderboard") {
		t.Errorf("err = %v", err)
	}
}

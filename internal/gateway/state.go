// Package gateway is the browser-facing process: it keeps a per-browser
// session, guards the dashboards, proxies /api calls to the backend services
// and renders the HTML pages.
package gateway

import (
	"time"

	"tokoadmin/internal/models"
)

// MaxActivities bounds the recent-activity log kept in a session.
const MaxActivities = 20

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Settings are the UI preferences saved by the settings page.
type Settings struct {
	Theme string `json:"theme"`
	Notif bool   `json:"notif"`
}

// Activity is one entry of the recent-activity log.
type Activity struct {
	Type string    `json:"type"`
	Desc string    `json:"desc"`
	Time time.Time `json:"time"`
}

// Flash is a one-time notice shown on the next rendered page.
type Flash struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// State is everything the gateway keeps for one browser. It is stored as a
// single JSON value in the session.
type State struct {
	Token      string           `json:"token,omitempty"`
	User       *models.UserView `json:"user,omitempty"`
	Settings   Settings         `json:"settings"`
	Activities []Activity       `json:"activities,omitempty"`
	Flashes    []Flash          `json:"flashes,omitempty"`
}

// NewState returns the state of a fresh session.
func NewState() *State {
	return &State{Settings: Settings{Theme: "light"}}
}

// SignIn stores the token and user returned by the auth service.
func (s *State) SignIn(token string, user models.UserView) {
	s.Token = token
	s.User = &user
}

// SignOut drops the credentials and keeps everything else.
func (s *State) SignOut() {
	s.Token = ""
	s.User = nil
}

// AddActivity prepends an entry and trims the log to MaxActivities.
func (s *State) AddActivity(kind, desc string, at time.Time) {
	s.Activities = append([]Activity{{Type: kind, Desc: desc, Time: at}}, s.Activities...)
	if len(s.Activities) > MaxActivities {
		s.Activities = s.Activities[:MaxActivities]
	}
}

// RecentActivities returns at most n of the newest entries.
func (s *State) RecentActivities(n int) []Activity {
	if len(s.Activities) < n {
		return s.Activities
	}
	return s.Activities[:n]
}

func (s *State) AddFlash(kind, text string) {
	s.Flashes = append(s.Flashes, Flash{Kind: kind, Text: text})
}

// TakeFlashes returns the pending flashes and clears them.
func (s *State) TakeFlashes() []Flash {
	f := s.Flashes
	s.Flashes = nil
	return f
}

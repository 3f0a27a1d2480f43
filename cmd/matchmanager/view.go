package main

import (
	"time"

	"github.com/riskibarqy/match-manager/internal/domain/player"
	"github.com/riskibarqy/match-manager/internal/domain/team"
)

type teamView struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Formation          string `json:"formation"`
	Strategy           string `json:"strategy"`
	ShiftLength        int    `json:"shiftLength"`
	AdvanceWarningTime int    `json:"advanceWarningTime"`
	CreatedAt          string `json:"createdAt"`
	UpdatedAt          string `json:"updatedAt"`
}

type playerView struct {
	ID           string   `json:"id"`
	TeamID       string   `json:"teamId"`
	Name         string   `json:"name"`
	JerseyNumber int      `json:"jerseyNumber"`
	Positions    []string `json:"positions"`
	IsActive     bool     `json:"isActive"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`
}

type healthView struct {
	Driver  string `json:"driver"`
	Healthy bool   `json:"healthy"`
}

func toTeamView(item team.Team) teamView {
	return teamView{
		ID:                 item.ID,
		Name:               item.Name,
		Formation:          item.Settings.DefaultFormation.Name,
		Strategy:           string(item.Settings.PreferredStrategy),
		ShiftLength:        item.Settings.DefaultShiftLength,
		AdvanceWarningTime: item.Settings.AdvanceWarningTime,
		CreatedAt:          item.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:          item.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func toTeamViews(items []team.Team) []teamView {
	out := make([]teamView, 0, len(items))
	for _, item := range items {
		out = append(out, toTeamView(item))
	}
	return out
}

func toPlayerView(item player.Player) playerView {
	positions := make([]string, 0, len(item.Positions))
	for _, pos := range item.Positions {
		positions = append(positions, string(pos))
	}
	return playerView{
		ID:           item.ID,
		TeamID:       item.TeamID,
		Name:         item.Name,
		JerseyNumber: item.JerseyNumber,
		Positions:    positions,
		IsActive:     item.IsActive,
		CreatedAt:    item.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:    item.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func toPlayerViews(items []player.Player) []playerView {
	out := make([]playerView, 0, len(items))
	for _, item := range items {
		out = append(out, toPlayerView(item))
	}
	return out
}

package extService

import (
	"encoding/json"
	"fmt"
	"squaresPoolBot/models"
	"squaresPoolBot/models/external"
	"squaresPoolBot/services/common"
	"strconv"
	"strings"
)

// ScoreUpdate is one ESPN competition reduced to what a pool game needs.
type ScoreUpdate struct {
	ExternalID string
	Status     models.GameStatus
	HomeTeam   string
	AwayTeam   string
	HomeScore  *int
	AwayScore  *int
}

func GetScoreboard(scoreboardUrl string) (*external.ESPN_Scoreboard, error) {
	scoreboardResp, err := common.ESPNWrapper(scoreboardUrl)
	if err != nil {
		return nil, err
	}
	defer scoreboardResp.Body.Close()

	var scoreboard external.ESPN_Scoreboard
	err = json.NewDecoder(scoreboardResp.Body).Decode(&scoreboard)
	if err != nil {
		return nil, fmt.Errorf("error parsing scoreboard json: %v", err)
	}

	return &scoreboard, nil
}

// GetScoreUpdates fetches the scoreboard and keys every parsable event by its ESPN id.
func GetScoreUpdates(scoreboardUrl string) (map[string]ScoreUpdate, error) {
	scoreboard, err := GetScoreboard(scoreboardUrl)
	if err != nil {
		return nil, err
	}
	return IndexUpdates(scoreboard), nil
}

func IndexUpdates(scoreboard *external.ESPN_Scoreboard) map[string]ScoreUpdate {
	updates := make(map[string]ScoreUpdate, len(scoreboard.Events))
	for _, event := range scoreboard.Events {
		update, ok := ParseEvent(event)
		if !ok {
			continue
		}
		updates[update.ExternalID] = update
	}
	return updates
}

// ParseEvent reads the first competition of an event. Scores are only reported once the game
// has started.
func ParseEvent(event external.ESPN_Event) (ScoreUpdate, bool) {
	if len(event.Competitions) == 0 {
		return ScoreUpdate{}, false
	}
	comp := event.Competitions[0]

	status := comp.Status
	if status.Type.State == "" {
		status = event.Status
	}

	update := ScoreUpdate{
		ExternalID: event.ID,
		Status:     MapStatus(status),
	}

	for _, competitor := range comp.Competitors {
		score := parseScore(competitor.Score)
		if update.Status == models.GameStatusScheduled {
			score = nil
		}
		switch competitor.HomeAway {
		case "home":
			update.HomeTeam = competitor.Team.DisplayName
			update.HomeScore = score
		case "away":
			update.AwayTeam = competitor.Team.DisplayName
			update.AwayScore = score
		}
	}

	return update, update.HomeTeam != "" && update.AwayTeam != ""
}

func MapStatus(status external.ESPN_Status) models.GameStatus {
	switch status.Type.State {
	case "in":
		return models.GameStatusInProgress
	case "post":
		if status.Type.Completed {
			return models.GameStatusFinal
		}
		return models.GameStatusInProgress
	}
	return models.GameStatusScheduled
}

func parseScore(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	score, err := strconv.Atoi(raw)
	if err != nil || score < 0 {
		return nil
	}
	return &score
}

// ScoresFor orients an update onto a game: TeamA takes the away side unless its name matches
// the home team.
func ScoresFor(game models.Game, update ScoreUpdate) (*int, *int) {
	if sameTeam(game.TeamA, update.HomeTeam) || sameTeam(game.TeamB, update.AwayTeam) {
		return update.HomeScore, update.AwayScore
	}
	return update.AwayScore, update.HomeScore
}

func sameTeam(a string, b string) bool {
	return a != "" && strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

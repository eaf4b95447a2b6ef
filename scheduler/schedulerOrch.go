package scheduler

import (
	"fmt"
	"squaresPoolBot/config"
	"squaresPoolBot/scheduler/scheduler_jobs"
	"squaresPoolBot/services/common"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// SetupCron schedules the score sync and settlement sweep. s may be nil when the bot is not
// connected, in which case nothing is announced.
func SetupCron(s *discordgo.Session, db *gorm.DB, cfg *config.Config) (*cron.Cron, error) {
	cronService := cron.New(cron.WithSeconds())

	source := scheduler_jobs.ESPNSource(cfg.ScoreboardURL)
	_, err := cronService.AddFunc(cfg.ScoreSyncSpec, func() {
		err := scheduler_jobs.CheckGameEnd(s, db, source)
		if err != nil {
			common.LogJobError(db, "check_game_end", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid SCORE_SYNC_SPEC %q: %v", cfg.ScoreSyncSpec, err)
	}

	cronService.Start()
	return cronService, nil
}

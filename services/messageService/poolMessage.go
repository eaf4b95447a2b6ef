package messageService

import (
	"fmt"
	"squaresPoolBot/models"
	"squaresPoolBot/services/common"
	"squaresPoolBot/services/digitService"
	"squaresPoolBot/services/payoutService"
	"squaresPoolBot/services/poolService"
	"squaresPoolBot/services/resultService"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	colorOpen    = 0x2ECC71
	colorLocked  = 0xE67E22
	colorWinner  = 0xF1C40F
	colorWarning = 0xE74C3C
)

var checkLabels = map[string]string{
	poolService.PrereqSquaresAssigned:   "All 100 squares assigned",
	poolService.PrereqParticipantsExist: "Participants added",
	poolService.PrereqDigitsRandomized:  "Digits randomized",
	poolService.PrereqPayoutsConfigured: "Payouts configured",
}

var checkOrder = []string{
	poolService.PrereqSquaresAssigned,
	poolService.PrereqParticipantsExist,
	poolService.PrereqDigitsRandomized,
	poolService.PrereqPayoutsConfigured,
}

func PrerequisitesEmbed(pool *models.Pool, report *poolService.LockPrerequisites) *discordgo.MessageEmbed {
	var lines []string
	for _, name := range checkOrder {
		mark := "❌"
		if report.Prerequisites[name] {
			mark = "✅"
		}
		lines = append(lines, fmt.Sprintf("%s %s", mark, checkLabels[name]))
	}

	fields := []*discordgo.MessageEmbedField{
		{
			Name:   "Squares",
			Value:  fmt.Sprintf("%d / %d assigned", report.Details.AssignedSquares, report.Details.TotalSquares),
			Inline: true,
		},
		{
			Name:   "Participants",
			Value:  fmt.Sprintf("%d", report.Details.ParticipantCount),
			Inline: true,
		},
	}
	if len(report.Details.PayoutRoundsMissing) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Rounds without payouts",
			Value: strings.Join(report.Details.PayoutRoundsMissing, ", "),
		})
	}

	color := colorOpen
	title := fmt.Sprintf("%s is ready to lock", pool.Name)
	if !report.OK {
		color = colorWarning
		title = fmt.Sprintf("%s is not ready to lock", pool.Name)
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: strings.Join(lines, "\n"),
		Color:       color,
		Fields:      fields,
	}
}

func LockEmbed(outcome *poolService.LockOutcome) *discordgo.MessageEmbed {
	description := "The board is frozen. Good luck!"
	if !outcome.Transitioned {
		description = "The board was already locked."
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🔒 %s is locked", outcome.Pool.Name),
		Description: description,
		Color:       colorLocked,
	}
	if outcome.DigitMap != nil {
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "Winning digits (rows)", Value: FormatDigits(outcome.DigitMap.WinningDigits)},
			{Name: "Losing digits (columns)", Value: FormatDigits(outcome.DigitMap.LosingDigits)},
		}
	}
	return embed
}

func SettlementEmbed(game *models.Game, result *models.GameResult, winnerName string) *discordgo.MessageEmbed {
	if winnerName == "" {
		winnerName = "Unclaimed square"
	}

	score := "-"
	if game.ScoreA != nil && game.ScoreB != nil {
		score = fmt.Sprintf("%s %d - %d %s", game.TeamA, *game.ScoreA, *game.ScoreB, game.TeamB)
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🏀 %s winner", payoutService.RoundLabel(game.RoundKey)),
		Description: score,
		Color:       colorWinner,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Winner", Value: winnerName, Inline: true},
			{Name: "Payout", Value: common.FormatCents(result.PayoutAmountCents), Inline: true},
			{Name: "Square", Value: fmt.Sprintf("%d-%d (row %d, col %d)", result.WinDigit, result.LoseDigit, result.RowIndex, result.ColIndex), Inline: true},
		},
	}
}

func StatusEmbed(pool *models.Pool, digitMap *digitService.PublicDigitMap, payouts *payoutService.LatestPayouts) *discordgo.MessageEmbed {
	color := colorOpen
	if pool.IsLocked() {
		color = colorLocked
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Status", Value: string(pool.Status), Inline: true},
	}

	if digitMap != nil && digitMap.WinningDigits != nil {
		fields = append(fields,
			&discordgo.MessageEmbedField{Name: "Winning digits (rows)", Value: FormatDigits(digitMap.WinningDigits)},
			&discordgo.MessageEmbedField{Name: "Losing digits (columns)", Value: FormatDigits(digitMap.LosingDigits)},
		)
	} else {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Digits", Value: "Hidden until reveal", Inline: true})
	}

	if payouts != nil {
		var lines []string
		for _, roundKey := range payoutService.RoundKeys {
			amount, ok := payouts.Payouts[roundKey]
			value := "not set"
			if ok {
				value = common.FormatCents(amount)
			}
			lines = append(lines, fmt.Sprintf("%s: %s", payoutService.RoundLabel(roundKey), value))
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Payouts", Value: strings.Join(lines, "\n")})
	}

	return &discordgo.MessageEmbed{
		Title:  pool.Name,
		Color:  color,
		Fields: fields,
	}
}

// FormatBoard draws the 10x10 grid as a code block. Cells show the owner's initials, "--" when
// unassigned. Axis headers are digits once visible, "?" otherwise.
func FormatBoard(squares []models.Square, digitMap *digitService.PublicDigitMap) string {
	grid := make([][]string, models.GridSize)
	for row := range grid {
		grid[row] = make([]string, models.GridSize)
		for col := range grid[row] {
			grid[row][col] = "--"
		}
	}
	for _, square := range squares {
		if square.RowIndex < 0 || square.RowIndex >= models.GridSize || square.ColIndex < 0 || square.ColIndex >= models.GridSize {
			continue
		}
		if square.ParticipantName != nil {
			grid[square.RowIndex][square.ColIndex] = Initials(*square.ParticipantName)
		}
	}

	axis := func(digits []int, i int) string {
		if digits == nil || i >= len(digits) {
			return "?"
		}
		return fmt.Sprint(digits[i])
	}
	var winning, losing []int
	if digitMap != nil {
		winning, losing = digitMap.WinningDigits, digitMap.LosingDigits
	}

	var b strings.Builder
	b.WriteString("```\n   ")
	for col := 0; col < models.GridSize; col++ {
		fmt.Fprintf(&b, " %2s", axis(losing, col))
	}
	b.WriteString("\n")
	for row := 0; row < models.GridSize; row++ {
		fmt.Fprintf(&b, "%2s ", axis(winning, row))
		for col := 0; col < models.GridSize; col++ {
			fmt.Fprintf(&b, " %2s", grid[row][col])
		}
		b.WriteString("\n")
	}
	b.WriteString("```")
	return b.String()
}

// Initials returns up to two upper-case letters for a display name.
func Initials(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "??"
	}
	var out []rune
	for _, part := range parts {
		out = append(out, []rune(strings.ToUpper(part))[0])
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 1 {
		runes := []rune(strings.ToUpper(parts[0]))
		if len(runes) > 1 {
			out = append(out, runes[1])
		}
	}
	return string(out)
}

func FormatDigits(digits []int) string {
	parts := make([]string, len(digits))
	for i, d := range digits {
		parts[i] = fmt.Sprint(d)
	}
	return "`" + strings.Join(parts, " ") + "`"
}

func ResultsMessage(results []resultService.PoolResult) string {
	if len(results) == 0 {
		return "No games have been settled yet."
	}

	var b strings.Builder
	for _, result := range results {
		winner := "Unclaimed"
		if result.ParticipantName != nil {
			winner = *result.ParticipantName
		}
		score := ""
		if result.ScoreA != nil && result.ScoreB != nil {
			score = fmt.Sprintf(" %d-%d", *result.ScoreA, *result.ScoreB)
		}
		fmt.Fprintf(&b, "* **%s** %s vs %s%s → %s (%s)\n",
			payoutService.RoundLabel(result.RoundKey), result.TeamA, result.TeamB, score,
			winner, common.FormatCents(result.PayoutAmountCents))
	}
	return b.String()
}

func LeaderboardMessage(entries []resultService.LeaderboardEntry) string {
	if len(entries) == 0 {
		return "No winners yet."
	}

	var b strings.Builder
	for i, entry := range entries {
		plural := "s"
		if entry.Wins == 1 {
			plural = ""
		}
		fmt.Fprintf(&b, "%d. %s - %s (%d win%s)\n", i+1, entry.DisplayName, common.FormatCents(entry.TotalPaidCents), entry.Wins, plural)
	}
	return b.String()
}

// Discord rejects embed descriptions longer than 4096 characters.
const maxListLines = 40

func writeMore(b *strings.Builder, shown int, total int) {
	if total > shown {
		fmt.Fprintf(b, "...and %d more\n", total-shown)
	}
}

func AuditMessage(events []models.AuditEvent) string {
	if len(events) == 0 {
		return "No audit events recorded."
	}

	var b strings.Builder
	shown := 0
	for _, event := range events {
		if shown == maxListLines {
			break
		}
		entity := event.EntityType
		if event.EntityID != "" {
			entity += " " + event.EntityID
		}
		fmt.Fprintf(&b, "`%s` **%s** %s by %s\n", event.CreatedAt.UTC().Format("2006-01-02 15:04"), event.Action, entity, event.Actor)
		shown++
	}
	writeMore(&b, shown, len(events))
	return b.String()
}

// SquareStatsMessage lists the cells that have won at least once.
func SquareStatsMessage(stats *resultService.SquareStats) string {
	if stats == nil || stats.GamesSettled == 0 {
		return "No games have been settled yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d games settled, %s paid\n\n", stats.GamesSettled, common.FormatCents(stats.TotalPaidCents))
	for _, square := range stats.Squares {
		if square.Hits == 0 {
			continue
		}
		owner := "Unclaimed"
		if square.ParticipantName != nil {
			owner = *square.ParticipantName
		}
		fmt.Fprintf(&b, "* (%d, %d) %s - %dx, %s\n", square.RowIndex, square.ColIndex, owner, square.Hits, common.FormatCents(square.PaidCents))
	}
	return b.String()
}

func PayoutHistoryMessage(rows []models.PayoutConfig) string {
	if len(rows) == 0 {
		return "No payouts configured."
	}

	var b strings.Builder
	shown := 0
	for _, row := range rows {
		if shown == maxListLines {
			break
		}
		fmt.Fprintf(&b, "`%s` %s - %s\n", row.EffectiveAt.UTC().Format("2006-01-02 15:04"), payoutService.RoundLabel(row.RoundKey), common.FormatCents(row.AmountCents))
		shown++
	}
	writeMore(&b, shown, len(rows))
	return b.String()
}

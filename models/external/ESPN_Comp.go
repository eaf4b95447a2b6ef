package external

type ESPN_Comp struct {
	ID          string            `json:"id"`
	Date        string            `json:"date"`
	StartDate   string            `json:"startDate"`
	NeutralSite bool              `json:"neutralSite"`
	Competitors []ESPN_Competitor `json:"competitors"`
	Status      ESPN_Status       `json:"status"`
}

type ESPN_Competitor struct {
	ID       string    `json:"id"`
	HomeAway string    `json:"homeAway"`
	Team     ESPN_Team `json:"team"`
	Score    string    `json:"score"`
	Winner   bool      `json:"winner"`
}

type ESPN_Team struct {
	ID               string `json:"id"`
	Location         string `json:"location"`
	Name             string `json:"name"`
	Abbreviation     string `json:"abbreviation"`
	DisplayName      string `json:"displayName"`
	ShortDisplayName string `json:"shortDisplayName"`
}

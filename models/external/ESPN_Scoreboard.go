package external

type ESPN_Scoreboard struct {
	Day struct {
		Date string `json:"date"`
	} `json:"day"`
	Events []ESPN_Event `json:"events"`
}

type ESPN_Event struct {
	ID           string      `json:"id"`
	Date         string      `json:"date"`
	Name         string      `json:"name"`
	ShortName    string      `json:"shortName"`
	Competitions []ESPN_Comp `json:"competitions"`
	Status       ESPN_Status `json:"status"`
}

type ESPN_Status struct {
	Clock        float64 `json:"clock"`
	DisplayClock string  `json:"displayClock"`
	Period       int     `json:"period"`
	Type         struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		State       string `json:"state"`
		Completed   bool   `json:"completed"`
		Description string `json:"description"`
		ShortDetail string `json:"shortDetail"`
	} `json:"type"`
}

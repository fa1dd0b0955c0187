package recommended

// Item is one recommended problem as returned to clients.
type Item struct {
	ProblemID int     `json:"problemId"`
	TitleKo   string  `json:"titleKo"`
	Score     float64 `json:"score"`
}

// NoChoice is the tag value meaning "no tag filter".
const NoChoice = "no_choice"

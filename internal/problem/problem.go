package problem

// Problem is a Baekjoon problem as catalogued by solved.ac. Tags hold
// en_short machine names.
type Problem struct {
	ID      int      `json:"problemId"`
	TitleKo string   `json:"titleKo"`
	Level   int      `json:"level"`
	Tags    []string `json:"tags,omitempty"`
}

// Solve records that handle solved a problem of the given level.
type Solve struct {
	Handle    string `json:"handle"`
	ProblemID int    `json:"problemId"`
	Level     int    `json:"level"`
}

package tag

// Tag is one entry of the problem tag catalogue. EnShort is the machine
// name stored on problems; Ord ranks tags for display, highest first.
type Tag struct {
	En      string `json:"en"`
	EnShort string `json:"en_short"`
	Ko      string `json:"ko"`
	Ord     int    `json:"-"`
}

// DefaultTags is the catalogue served before any crawl has run.
var DefaultTags = []Tag{
	{En: "Implementation", EnShort: "implementation", Ko: "구현", Ord: 120},
	{En: "Mathematics", EnShort: "math", Ko: "수학", Ord: 110},
	{En: "Dynamic Programming", EnShort: "dp", Ko: "다이나믹 프로그래밍", Ord: 100},
	{En: "Data Structures", EnShort: "data_structures", Ko: "자료 구조", Ord: 90},
	{En: "Graph Theory", EnShort: "graphs", Ko: "그래프 이론", Ord: 80},
	{En: "Greedy", EnShort: "greedy", Ko: "그리디 알고리즘", Ord: 70},
	{En: "String", EnShort: "string", Ko: "문자열", Ord: 60},
	{En: "Bruteforcing", EnShort: "bruteforcing", Ko: "브루트포스 알고리즘", Ord: 50},
	{En: "Sorting", EnShort: "sorting", Ko: "정렬", Ord: 40},
	{En: "Binary Search", EnShort: "binary_search", Ko: "이분 탐색", Ord: 30},
	{En: "Breadth-first Search", EnShort: "bfs", Ko: "너비 우선 탐색", Ord: 20},
	{En: "Depth-first Search", EnShort: "dfs", Ko: "깊이 우선 탐색", Ord: 10},
}

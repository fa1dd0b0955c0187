package problem

import (
	"fmt"
	"math/rand"
)

var sampleTitles = map[int]string{
	1000: "A+B",
	1001: "A-B",
	1002: "터렛",
	1003: "피보나치 함수",
	1004: "어린 왕자",
	1005: "ACM Craft",
	1007: "벡터 매칭",
	1008: "A/B",
	1009: "분산처리",
	1010: "다리 놓기",
	1011: "Fly me to the Alpha Centauri",
	1012: "유기농 배추",
	1013: "Contact",
	1014: "컨닝",
	1015: "수열 정렬",
	1016: "제곱 ㄴㄴ 수",
	1018: "체스판 다시 칠하기",
	1019: "책 페이지",
	1020: "디지털 카운터",
	1021: "회전하는 큐",
}

var sampleTags = []string{"implementation", "math", "dp", "greedy", "graphs", "string", "bruteforcing", "sorting"}

// SampleData builds a deterministic catalogue of problems 1000-1099 and
// solves for handles user1..user20 plus the development account "a".
// It backs in-memory storage when no database is configured.
func SampleData(seed int64) ([]Problem, []Solve) {
	rng := rand.New(rand.NewSource(seed))

	problems := make([]Problem, 0, 100)
	for id := 1000; id < 1100; id++ {
		title, ok := sampleTitles[id]
		if !ok {
			title = fmt.Sprintf("문제 %d", id)
		}
		tags := []string{sampleTags[rng.Intn(len(sampleTags))]}
		if rng.Intn(3) == 0 {
			if extra := sampleTags[rng.Intn(len(sampleTags))]; extra != tags[0] {
				tags = append(tags, extra)
			}
		}
		problems = append(problems, Problem{ID: id, TitleKo: title, Level: 1 + rng.Intn(30), Tags: tags})
	}

	handles := make([]string, 0, 21)
	for i := 1; i <= 20; i++ {
		handles = append(handles, fmt.Sprintf("user%d", i))
	}
	handles = append(handles, "a")

	solves := make([]Solve, 0, len(handles)*20)
	for _, h := range handles {
		n := 10 + rng.Intn(21)
		for _, idx := range rng.Perm(len(problems))[:n] {
			p := problems[idx]
			solves = append(solves, Solve{Handle: h, ProblemID: p.ID, Level: p.Level})
		}
	}
	return problems, solves
}

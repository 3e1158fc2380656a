package candidate

import (
	"runtime"
	"sort"
	"sync"

	pathfuzzy "github.com/sahilm/fuzzy"

	"hlkit/internal/fuzzy"
)

func FilterCandidates(candidates []Candidate, query string) []FilteredCandidate {
	return FilterCandidatesWithQuery(candidates, fuzzy.NewQuery(query))
}

func FilterCandidatesWithQuery(candidates []Candidate, q fuzzy.Query) []FilteredCandidate {
	if q.IsEmpty() {
		out := make([]FilteredCandidate, len(candidates))
		for i := range candidates {
			out[i] = FilteredCandidate{Index: int32(i)}
		}
		return out
	}
	return FilterCandidatesRangeWithQuery(candidates, 0, len(candidates), q)
}

// FilterCandidatesRangeWithQuery filters candidates[start:end]. Results
// of adjacent ranges combine with MergeFilteredCandidates, so a growing
// index is filtered once per batch.
func FilterCandidatesRangeWithQuery(candidates []Candidate, start int, end int, q fuzzy.Query) []FilteredCandidate {
	if start < 0 {
		start = 0
	}
	if end > len(candidates) {
		end = len(candidates)
	}
	if start >= end {
		return nil
	}

	paths := pathScores(candidates[start:end], q)
	n := end - start
	workers := filterWorkerCount(n)

	var out []FilteredCandidate
	if workers <= 1 {
		out = filterChunk(candidates, start, end, q, paths)
	} else {
		parts := make([][]FilteredCandidate, workers)
		var wg sync.WaitGroup
		for worker := 0; worker < workers; worker++ {
			chunkStart := start + worker*n/workers
			chunkEnd := start + (worker+1)*n/workers
			wg.Add(1)
			go func(slot int, chunkStart int, chunkEnd int) {
				defer wg.Done()
				parts[slot] = filterChunk(candidates, chunkStart, chunkEnd, q, paths)
			}(worker, chunkStart, chunkEnd)
		}
		wg.Wait()
		out = flattenFilteredParts(parts)
	}

	sortFilteredCandidates(candidates, out)
	return out
}

func filterChunk(candidates []Candidate, start int, end int, q fuzzy.Query, paths map[string]int) []FilteredCandidate {
	local := make([]FilteredCandidate, 0, max(1, (end-start)/4))
	for i := start; i < end; i++ {
		item, ok := scoreCandidate(&candidates[i], int32(i), q, paths)
		if !ok {
			continue
		}
		local = append(local, item)
	}
	return local
}

// pathScores ranks the distinct files of candidates once per filter.
func pathScores(candidates []Candidate, q fuzzy.Query) map[string]int {
	seen := make(map[string]bool)
	var files []string
	for i := range candidates {
		if f := candidates[i].File; !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}

	out := make(map[string]int)
	for _, m := range pathfuzzy.Find(q.String(), files) {
		out[m.Str] = m.Score
	}
	return out
}

func filterWorkerCount(n int) int {
	if n < filterParallelThreshold {
		return 1
	}

	workers := runtime.GOMAXPROCS(0)
	if workers < 2 {
		return 1
	}

	maxUseful := n / filterMinChunkSize
	if maxUseful < 2 {
		return 1
	}
	if workers > maxUseful {
		workers = maxUseful
	}
	if workers < 2 {
		return 1
	}

	return workers
}

func flattenFilteredParts(parts [][]FilteredCandidate) []FilteredCandidate {
	total := 0
	for _, part := range parts {
		total += len(part)
	}
	out := make([]FilteredCandidate, 0, total)
	for _, part := range parts {
		out = append(out, part...)
	}
	return out
}

func sortFilteredCandidates(candidates []Candidate, out []FilteredCandidate) {
	sort.Slice(out, func(i, j int) bool {
		return lessFilteredCandidate(candidates, out[i], out[j])
	})
}

func lessFilteredCandidate(candidates []Candidate, left FilteredCandidate, right FilteredCandidate) bool {
	if left.Score != right.Score {
		return left.Score > right.Score
	}

	leftCand := &candidates[int(left.Index)]
	rightCand := &candidates[int(right.Index)]
	if ls, rs := candidateSemanticScore(leftCand), candidateSemanticScore(rightCand); ls != rs {
		return ls > rs
	}
	if leftCand.Key != rightCand.Key {
		return leftCand.Key < rightCand.Key
	}
	return leftCand.ID < rightCand.ID
}

func MergeFilteredCandidates(candidates []Candidate, left []FilteredCandidate, right []FilteredCandidate) []FilteredCandidate {
	if len(left) == 0 {
		return right
	}
	if len(right) == 0 {
		return left
	}

	out := make([]FilteredCandidate, 0, len(left)+len(right))
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		if lessFilteredCandidate(candidates, left[i], right[j]) {
			out = append(out, left[i])
			i++
		} else {
			out = append(out, right[j])
			j++
		}
	}
	if i < len(left) {
		out = append(out, left[i:]...)
	}
	if j < len(right) {
		out = append(out, right[j:]...)
	}

	return out
}

func scoreCandidate(cand *Candidate, index int32, q fuzzy.Query, paths map[string]int) (FilteredCandidate, bool) {
	keyScore, keyOK := q.Score(cand.Key)
	textScore, textOK := q.Score(cand.Text)
	pathScore, pathOK := paths[cand.File]

	if !keyOK && !textOK && !pathOK {
		return FilteredCandidate{}, false
	}

	score := int32(-1 << 20)
	if keyOK {
		score = max(score, int32(3000+keyScore*3))
	}
	if textOK {
		score = max(score, int32(1800+textScore*2-60))
	}
	if pathOK {
		score = max(score, int32(1200+pathScore-120))
	}

	if keyOK && textOK {
		score += 80
	}

	return FilteredCandidate{Index: index, Score: score}, true
}

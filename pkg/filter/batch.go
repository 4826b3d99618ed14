package filter

import (
	"context"
	"time"
)

// Verdict is the moderation outcome for one text.
type Verdict struct {
	Text    string   `json:"text"`
	Flagged bool     `json:"flagged"`
	Words   []string `json:"words,omitempty"`
}

// BatchResult summarizes a CheckBatch run.
type BatchResult struct {
	Verdicts []Verdict     `json:"verdicts"`
	Total    int           `json:"total"`
	Flagged  int           `json:"flagged"`
	Elapsed  time.Duration `json:"elapsed"`
}

// CheckBatch moderates texts against a single snapshot, so a refresh that
// lands halfway through cannot split the batch across two word sets.
func (s *Service) CheckBatch(ctx context.Context, texts []string) (*BatchResult, error) {
	start := time.Now()
	res := &BatchResult{
		Verdicts: make([]Verdict, len(texts)),
		Total:    len(texts),
	}

	var snap *snapshot
	for i, text := range texts {
		res.Verdicts[i].Text = text
		if isBlank(text) {
			continue
		}
		if snap == nil {
			var err error
			if snap, err = s.current(ctx); err != nil {
				return nil, err
			}
		}
		if words := snap.find(text); len(words) > 0 {
			res.Verdicts[i].Flagged = true
			res.Verdicts[i].Words = words
			res.Flagged++
		}
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

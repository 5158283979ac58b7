package usecase

import "context"

// MetricsSummary represents aggregated analysis insights.
type MetricsSummary struct {
	TotalAnalyses       int64            `json:"total_analyses"`
	SuccessfulAnalyses  int64            `json:"successful_analyses"`
	NoFaceAnalyses      int64            `json:"no_face_analyses"`
	SuccessRate         float64          `json:"success_rate"`
	AverageAPILatencyMs float64          `json:"average_api_latency_ms"`
	EmotionDistribution map[string]int64 `json:"emotion_distribution"`
}

// GetMetricsSummary aggregates analysis metrics from persisted logs.
func (uc *InsultUseCase) GetMetricsSummary(ctx context.Context) (*MetricsSummary, error) {
	aggregation, err := uc.repo.AggregateMetrics(ctx)
	if err != nil {
		return nil, err
	}
	emotions, err := uc.repo.CountEmotions(ctx)
	if err != nil {
		return nil, err
	}

	summary := &MetricsSummary{
		TotalAnalyses:       aggregation.TotalCount,
		SuccessfulAnalyses:  aggregation.SuccessCount,
		NoFaceAnalyses:      aggregation.NoFaceCount,
		AverageAPILatencyMs: aggregation.AverageLatencyMs,
		EmotionDistribution: make(map[string]int64, len(emotions)),
	}
	for _, e := range emotions {
		summary.EmotionDistribution[e.Emotion] = e.Count
	}

	if aggregation.TotalCount > 0 {
		summary.SuccessRate = float64(aggregation.SuccessCount) / float64(aggregation.TotalCount)
	}

	return summary, nil
}

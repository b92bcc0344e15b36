package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"sports-match-system/models"
	"sports-match-system/services"
	"sports-match-system/store"
)

// AnalysisWorker polls matches in the analyzing state, sends their videos to
// the video analysis service, and records the scored result once the
// analysis comes back with enough confidence.
type AnalysisWorker struct {
	matches      store.MatchStore
	matchService *services.MatchService
	baseURL      string
	serviceToken string
	interval     time.Duration
	minScore     float64
	httpClient   *http.Client
}

func NewAnalysisWorker(matches store.MatchStore, matchService *services.MatchService, httpClient *http.Client) *AnalysisWorker {
	baseURL := os.Getenv("ANALYSIS_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("ANALYSIS_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("SPORTS_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("SPORTS_SERVICE_TOKEN environment variable is required for analysis worker")
	}
	return &AnalysisWorker{
		matches:      matches,
		matchService: matchService,
		baseURL:      baseURL,
		serviceToken: token,
		interval:     30 * time.Second,
		minScore:     0.6,
		httpClient:   httpClient,
	}
}

func (w *AnalysisWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Analysis Worker (analyzing matches → scored results)…")
	go w.run(ctx)
}

func (w *AnalysisWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			log.Println("⏹️ Analysis Worker stopped")
			return
		}
	}
}

func (w *AnalysisWorker) tick(ctx context.Context) {
	pending, err := w.matches.ListByStatus(models.MatchStatusAnalyzing, 20)
	if err != nil {
		log.Printf("❌ Failed to list analyzing matches: %v", err)
		return
	}
	for i := range pending {
		m := &pending[i]
		if m.VideoURL == nil {
			continue
		}
		result, err := w.analyze(ctx, m)
		if err != nil {
			log.Printf("⚠️ Analysis failed for match %s: %v", m.ID, err)
			continue
		}
		if result.Confidence < w.minScore {
			log.Printf("⚠️ Analysis confidence %.2f too low for match %s, leaving for manual review",
				result.Confidence, m.ID)
			continue
		}
		if _, err := w.matchService.RecordResult(m.ID, result.Player1Score, result.Player2Score); err != nil {
			log.Printf("❌ Failed to record analyzed result for match %s: %v", m.ID, err)
			continue
		}
		log.Printf("✅ Match %s analyzed: %d-%d (confidence %.2f)",
			m.ID, result.Player1Score, result.Player2Score, result.Confidence)
	}
}

// analysisResult is the scored outcome returned by the analysis service.
type analysisResult struct {
	Player1Score int     `json:"player1_score"`
	Player2Score int     `json:"player2_score"`
	Confidence   float64 `json:"confidence"`
}

func (w *AnalysisWorker) analyze(ctx context.Context, m *models.Match) (*analysisResult, error) {
	payload, err := json.Marshal(map[string]string{
		"match_id":   m.ID,
		"video_url":  *m.VideoURL,
		"sport_id":   m.SportID,
		"player1_id": m.Player1ID,
		"player2_id": m.Player2ID,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", w.baseURL+"/api/v1/analyze", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analysis service request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("analysis service returned %d: %s", resp.StatusCode, string(body))
	}

	var result analysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}
	return &result, nil
}

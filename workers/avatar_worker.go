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
	"strings"
	"time"

	"sports-match-system/models"
	"sports-match-system/utils"

	"github.com/google/uuid"
	"github.com/gosimple/unidecode"
	"gorm.io/gorm"
)

// AvatarTask asks for a generated avatar image for one player.
type AvatarTask struct {
	UserID string
	Prompt string
}

// AvatarWorker consumes avatar generation tasks: it normalizes the prompt,
// calls the image generation service, uploads the result to R2, and stores
// the CDN URL on the player row.
type AvatarWorker struct {
	db           *gorm.DB
	tasks        chan AvatarTask
	baseURL      string
	serviceToken string
	httpClient   *http.Client
}

func NewAvatarWorker(db *gorm.DB, httpClient *http.Client) *AvatarWorker {
	baseURL := os.Getenv("IMAGE_GEN_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("IMAGE_GEN_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("SPORTS_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("SPORTS_SERVICE_TOKEN environment variable is required for avatar worker")
	}
	return &AvatarWorker{
		db:           db,
		tasks:        make(chan AvatarTask, 64),
		baseURL:      baseURL,
		serviceToken: token,
		httpClient:   httpClient,
	}
}

// Enqueue submits a task, dropping it when the queue is full. Avatar
// generation is cosmetic; the user can retry.
func (w *AvatarWorker) Enqueue(task AvatarTask) bool {
	select {
	case w.tasks <- task:
		return true
	default:
		log.Printf("⚠️ Avatar queue full, dropping task for user %s", task.UserID)
		return false
	}
}

func (w *AvatarWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Avatar Worker (prompts → generated avatars)…")
	go w.run(ctx)
}

func (w *AvatarWorker) run(ctx context.Context) {
	for {
		select {
		case task := <-w.tasks:
			if err := w.process(ctx, task); err != nil {
				log.Printf("❌ Avatar generation failed for user %s: %v", task.UserID, err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Avatar Worker stopped")
			return
		}
	}
}

func (w *AvatarWorker) process(ctx context.Context, task AvatarTask) error {
	// Image service only accepts ASCII prompts
	prompt := strings.TrimSpace(unidecode.Unidecode(task.Prompt))
	if prompt == "" {
		return fmt.Errorf("empty prompt after normalization")
	}

	image, err := w.generate(ctx, prompt)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("avatars/%s/%s.png", task.UserID, uuid.NewString())
	avatarURL, err := utils.UploadBytesToR2(image, key, "image/png")
	if err != nil {
		return err
	}

	res := w.db.Model(&models.Player{}).
		Where("external_user_id = ?", task.UserID).
		Update("avatar_url", avatarURL)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("player %s not found", task.UserID)
	}
	log.Printf("🖼️ Avatar generated for user %s: %s", task.UserID, avatarURL)
	return nil
}

func (w *AvatarWorker) generate(ctx context.Context, prompt string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{"prompt": prompt, "size": "512x512"})
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "POST", w.baseURL+"/api/v1/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("image service returned %d: %s", resp.StatusCode, string(body))
	}

	image, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read generated image: %w", err)
	}
	return image, nil
}

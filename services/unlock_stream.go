package services

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"sports-match-system/store"

	"github.com/gofiber/fiber/v2"
)

// UnlockStreamService pushes newly unlocked items to the client over SSE so
// the app can pop the unlock animation without polling.
type UnlockStreamService struct {
	Catalog store.CatalogStore
}

func NewUnlockStreamService(catalog store.CatalogStore) *UnlockStreamService {
	return &UnlockStreamService{Catalog: catalog}
}

// StreamUnlocksSSE streams unlock events for the authenticated user.
func (s *UnlockStreamService) StreamUnlocksSSE(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	// SSE headers
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		cursor := time.Now()

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		w.Flush()

		for {
			select {
			case <-ticker.C:
				recs, err := s.Catalog.UnlocksSince(userID, cursor)
				if err != nil {
					log.Printf("SSE query error for user %s: %v", userID, err)
					continue
				}
				if len(recs) == 0 {
					continue
				}
				cursor = recs[len(recs)-1].UnlockedAt

				for _, rec := range recs {
					item, err := s.Catalog.GetItem(rec.ItemID)
					if err != nil {
						log.Printf("SSE item lookup failed for %s: %v", rec.ItemID, err)
						continue
					}
					payload, _ := json.Marshal(fiber.Map{
						"item_id":      item.ID,
						"name":         item.Name,
						"item_type":    item.ItemType,
						"unlocked_via": rec.UnlockedVia,
						"unlocked_at":  rec.UnlockedAt,
					})
					fmt.Fprintf(w, "event: unlock\ndata: %s\n\n", payload)
				}

				if err := w.Flush(); err != nil {
					// Client disconnected
					return
				}

			case <-c.Context().Done():
				return
			}
		}
	})

	return nil
}

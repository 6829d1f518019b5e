// simulate_session.go — standalone script to create a ranking session and auto-judge it to completion.
//
// The true order of the items is the order they are given in: earlier items
// beat later ones, with an optional upset probability to exercise the
// confidence model.
//
// Usage:
//
//	go run scripts/simulate_session.go -api http://localhost:8700 -items "alpha,beta,gamma,delta" -upset 0.1
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strings"
)

type pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

type nextResponse struct {
	Matches  []pair `json:"matches"`
	Complete bool   `json:"complete"`
}

type rankingRow struct {
	Item       string  `json:"item"`
	Score      float64 `json:"score"`
	Rank       int     `json:"rank"`
	Confidence float64 `json:"confidence"`
}

func main() {
	apiURL := flag.String("api", "http://localhost:8700", "Faceoff API base URL")
	itemsFlag := flag.String("items", "alpha,beta,gamma,delta,epsilon", "comma-separated items, strongest first")
	judgeID := flag.String("judge", "simulator", "X-Judge-ID header value")
	upset := flag.Float64("upset", 0.0, "probability the weaker item wins a comparison")
	batch := flag.Int("batch", 5, "matches to request per scheduling round")
	seed := flag.Int64("seed", 1, "random seed for upsets")
	flag.Parse()

	items := strings.Split(*itemsFlag, ",")
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	strength := make(map[string]int, len(items))
	for i, it := range items {
		strength[it] = len(items) - i
	}
	rng := rand.New(rand.NewSource(*seed))

	client := &http.Client{}
	post := func(path string, body, out interface{}) error {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		req, err := http.NewRequest("POST", *apiURL+path, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Judge-ID", *judgeID)
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			return fmt.Errorf("POST %s: status %d", path, resp.StatusCode)
		}
		if out != nil {
			return json.NewDecoder(resp.Body).Decode(out)
		}
		return nil
	}
	get := func(path string, out interface{}) error {
		req, err := http.NewRequest("GET", *apiURL+path, nil)
		if err != nil {
			return err
		}
		req.Header.Set("X-Judge-ID", *judgeID)
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}

	var created struct {
		ID         string `json:"session_id"`
		TotalPairs int    `json:"total_pairs"`
	}
	err := post("/api/v1/sessions", map[string]interface{}{
		"name":  "simulation",
		"items": items,
	}, &created)
	if err != nil {
		log.Fatalf("create session: %v", err)
	}
	log.Printf("session %s created: %d items, %d pairs", created.ID, len(items), created.TotalPairs)

	base := "/api/v1/sessions/" + created.ID
	judged := 0
	for {
		var next nextResponse
		if err := get(fmt.Sprintf("%s/next?count=%d", base, *batch), &next); err != nil {
			log.Fatalf("next matches: %v", err)
		}
		if next.Complete || len(next.Matches) == 0 {
			break
		}
		for _, m := range next.Matches {
			winner, loser := m.A, m.B
			if strength[m.B] > strength[m.A] {
				winner, loser = m.B, m.A
			}
			if rng.Float64() < *upset {
				winner, loser = loser, winner
			}
			err := post(base+"/comparisons", map[string]string{
				"winner": winner,
				"loser":  loser,
			}, nil)
			if err != nil {
				log.Fatalf("submit comparison: %v", err)
			}
			judged++
		}
	}
	log.Printf("session complete after %d comparisons", judged)

	var rankings []rankingRow
	if err := get(base+"/rankings", &rankings); err != nil {
		log.Fatalf("fetch rankings: %v", err)
	}
	for _, row := range rankings {
		fmt.Printf("%2d. %-20s score=%.3f confidence=%.2f\n", row.Rank, row.Item, row.Score, row.Confidence)
	}
}
